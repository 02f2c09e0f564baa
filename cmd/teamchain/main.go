package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/chainrpc"
	"xdao.co/teamchain/cidutil"
	"xdao.co/teamchain/internal/config"
	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/kv/sqlite"
	"xdao.co/teamchain/model"
	"xdao.co/teamchain/storage"
	"xdao.co/teamchain/storage/localfs"
	"xdao.co/teamchain/team"
	"xdao.co/teamchain/teamsync"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 2
	}

	switch args[0] {
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "key":
		return cmdKey(cfg, args[1:], out, errOut)
	case "sync":
		return cmdSync(cfg, args[1:], out, errOut)
	case "team":
		return cmdTeam(cfg, args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "teamchain: team hash-chain client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  teamchain key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  teamchain key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  teamchain key list")
	fmt.Fprintln(w, "  teamchain key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  teamchain team create --name <team name> (--seed-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>)")
	fmt.Fprintln(w, "  teamchain team show --team <id>")
	fmt.Fprintln(w, "  teamchain team set-policy --team <id> [--approval-seconds <n>]")
	fmt.Fprintln(w, "  teamchain team set-info --team <id> --name <team name>")
	fmt.Fprintln(w, "  teamchain team add-member --team <id> --member-key <b64> --email <addr> [--ssh-key <b64>] [--pgp-key <b64>]")
	fmt.Fprintln(w, "  teamchain team remove-member --team <id> --member-key <b64>")
	fmt.Fprintln(w, "  teamchain sync (--team <id> | --team-key <b64> [--team <id>])")
	fmt.Fprintln(w, "  teamchain verify --team-key <b64> --blocks <response.json> [--cursor <b64>]")
	fmt.Fprintln(w, "  teamchain hash <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TEAMCHAIN_DB            local state database (default ~/.xdao/teamchain/state.db)")
	fmt.Fprintln(w, "  TEAMCHAIN_KEYS_DIR      key store directory (default ~/.xdao/teamchain/keys)")
	fmt.Fprintln(w, "  TEAMCHAIN_TARGET        chain service address (default 127.0.0.1:7777)")
	fmt.Fprintln(w, "  TEAMCHAIN_ARCHIVE_DIR   archive verified payloads under this directory")
	fmt.Fprintln(w, "  TEAMCHAIN_DIAL_TIMEOUT  TEAMCHAIN_RPC_TIMEOUT  TEAMCHAIN_VERBOSE")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - team create stores the team keypair locally; later writes are signed with it")
	fmt.Fprintln(w, "  - verify works offline on a saved service response")
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: teamchain hash <file>")
		return 2
	}
	path := fs.Arg(0)
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return 1
	}
	h := chain.HashPayload(string(b))
	id, err := cidutil.BlockCID(h)
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Block-Hash: %s\n", h)
	fmt.Fprintf(out, "CID: %s\n", id)
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var teamKey string
	var blocksPath string
	var cursor string

	fs.StringVar(&teamKey, "team-key", "", "Team public key (base64)")
	fs.StringVar(&blocksPath, "blocks", "", "Service response JSON holding the blocks")
	fs.StringVar(&cursor, "cursor", "", "Hash (base64) of the last block already verified; omit to start at genesis")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if teamKey == "" {
		fmt.Fprintln(errOut, "missing --team-key")
		return 2
	}
	if blocksPath == "" {
		fmt.Fprintln(errOut, "missing --blocks")
		return 2
	}
	pub, err := parsePublicKey(teamKey)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --team-key: %v\n", err)
		return 2
	}
	state := chain.State{Team: model.Team{PublicKey: pub, Policy: model.DefaultPolicy()}}
	if cursor != "" {
		h, err := parseHash(cursor)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --cursor: %v\n", err)
			return 2
		}
		state.LastBlockHash = &h
	}

	body, err := os.ReadFile(blocksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --blocks: %v\n", err)
		return 1
	}
	blocks, err := chain.DecodeResponse(body)
	if err != nil {
		fmt.Fprintf(errOut, "invalid response: %v\n", err)
		return 1
	}
	next, err := chain.VerifyAndDigest(blocks, state)
	if err != nil {
		fmt.Fprintf(errOut, "invalid: %v (%s %s)\n", err, chain.KindOf(err), chain.RuleID(err))
		return 1
	}
	fmt.Fprintf(out, "Blocks: %d\n", len(blocks))
	if cursor == "" {
		fmt.Fprintf(out, "Team-Name: %s\n", next.Team.Info.Name)
	}
	fmt.Fprintf(out, "Approval-Seconds: %d\n", next.Team.Policy.ApprovalSeconds())
	fmt.Fprintf(out, "Last-Block-Hash: %s\n", next.LastBlockHash)
	return 0
}

func cmdSync(cfg config.Client, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var id string
	var teamKey string
	fs.StringVar(&id, "team", "", "Local team id")
	fs.StringVar(&teamKey, "team-key", "", "Team public key (base64), to follow a team not yet stored locally")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == "" && teamKey == "" {
		fmt.Fprintln(errOut, "missing --team or --team-key")
		return 2
	}

	ctx := context.Background()
	s, err := openSession(cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "open: %v\n", err)
		return 1
	}
	defer s.Close()

	var t model.Team
	if teamKey != "" {
		pub, err := parsePublicKey(teamKey)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --team-key: %v\n", err)
			return 2
		}
		t = model.NewTeam("", pub)
		if id != "" {
			t.ID = id
		}
	} else {
		st, err := s.store.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(errOut, "load team: %v\n", err)
			return 1
		}
		t = st.Team
	}

	if err := s.connect(ctx, t, nil); err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	st, err := s.syncer.Sync(ctx, t)
	if err != nil {
		fmt.Fprintf(errOut, "sync: %v\n", err)
		return 1
	}
	printState(out, st)
	return 0
}

func printState(w io.Writer, st chain.State) {
	fmt.Fprintf(w, "Team-ID: %s\n", st.Team.ID)
	fmt.Fprintf(w, "Team-Name: %s\n", st.Team.Info.Name)
	fmt.Fprintf(w, "Team-Key: %s\n", st.Team.PublicKey)
	fmt.Fprintf(w, "Approval-Seconds: %d\n", st.Team.Policy.ApprovalSeconds())
	if st.LastBlockHash != nil {
		fmt.Fprintf(w, "Last-Block-Hash: %s\n", st.LastBlockHash)
	}
}

// session bundles the local state database with an optional connection to
// the chain service.
type session struct {
	cfg    config.Client
	errOut io.Writer
	db     *sqlite.Store
	store  *team.Store
	client *chainrpc.Client
	syncer *teamsync.Syncer
}

func openSession(cfg config.Client, errOut io.Writer) (*session, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return nil, err
	}
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, errOut: errOut, db: db, store: team.New(db)}, nil
}

// connect dials the chain service. Read requests are signed by reader, by the
// stored admin key for t, or by a throwaway key, in that order.
func (s *session) connect(ctx context.Context, t model.Team, reader keys.Signer) error {
	syncer := &teamsync.Syncer{Store: s.store}
	if s.cfg.Verbose {
		syncer.Logger = log.New(s.errOut, "teamchain: ", log.LstdFlags)
	}
	if s.cfg.ArchiveDir != "" {
		cas, err := localfs.New(s.cfg.ArchiveDir)
		if err != nil {
			return err
		}
		syncer.Archive = &storage.Archive{CAS: cas}
	}
	if reader == nil {
		if admin, err := syncer.AdminSigner(ctx, t); err == nil {
			reader = admin
		}
	}
	if reader == nil {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return err
		}
		if reader, err = keys.NewEd25519Signer(priv); err != nil {
			return err
		}
	}
	client, err := chainrpc.Dial(s.cfg.Target, reader, chainrpc.DialOptions{Timeout: s.cfg.DialTimeout})
	if err != nil {
		return err
	}
	client.Timeout = s.cfg.RPCTimeout
	syncer.Remote = client
	s.client = client
	s.syncer = syncer
	return nil
}

func (s *session) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
	_ = s.db.Close()
}

func parsePublicKey(s string) (model.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty key")
	}
	return model.PublicKey(b), nil
}

func parseHash(s string) (model.Hash, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return model.Hash{}, err
	}
	return model.ParseHash(b)
}
