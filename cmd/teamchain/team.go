package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/internal/config"
	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/model"
)

func cmdTeam(cfg config.Client, args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: teamchain team <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: create, show, set-policy, set-info, add-member, remove-member")
		return 2
	}
	switch args[0] {
	case "create":
		return cmdTeamCreate(cfg, args[1:], out, errOut)
	case "show":
		return cmdTeamShow(cfg, args[1:], out, errOut)
	case "set-policy", "set-info", "add-member", "remove-member":
		return cmdTeamAppend(cfg, args[0], args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown team subcommand: %s\n", args[0])
		return 2
	}
}

func cmdTeamCreate(cfg config.Client, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("team create", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var signerName string
	var signerRole string
	var keyFile string

	fs.StringVar(&name, "name", "", "Team name")
	fs.StringVar(&seedHex, "seed-hex", "", "Team key as an ed25519 seed (64 hex chars)")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name (from 'teamchain key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a seed file (hex) created by 'teamchain key init/derive'")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if seedHex == "" && signerName == "" && keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return 2
	}
	if seedHex != "" && (signerName != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return 2
	}
	if signerName != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return 2
	}

	ks, err := keys.OpenKeyStore(cfg.KeysDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	seed, err := ks.LoadSeed(seedHex, signerName, signerRole, keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return 2
	}
	signer, err := keys.Ed25519SignerFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return 2
	}

	ctx := context.Background()
	s, err := openSession(cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "open: %v\n", err)
		return 1
	}
	defer s.Close()
	if err := s.connect(ctx, model.Team{PublicKey: signer.PublicKey()}, signer); err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	st, err := s.syncer.Create(ctx, name, signer)
	if err != nil {
		fmt.Fprintf(errOut, "create: %v\n", err)
		return 1
	}
	printState(out, st)
	return 0
}

func cmdTeamShow(cfg config.Client, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("team show", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var id string
	fs.StringVar(&id, "team", "", "Local team id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == "" {
		fmt.Fprintln(errOut, "missing --team")
		return 2
	}

	ctx := context.Background()
	s, err := openSession(cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "open: %v\n", err)
		return 1
	}
	defer s.Close()

	st, err := s.store.Load(ctx, id)
	if err != nil {
		fmt.Fprintf(errOut, "load team: %v\n", err)
		return 1
	}
	admin, err := s.store.IsAdmin(ctx, st.Team)
	if err != nil {
		fmt.Fprintf(errOut, "load team: %v\n", err)
		return 1
	}
	printState(out, st)
	fmt.Fprintf(out, "Admin: %t\n", admin)
	return 0
}

// cmdTeamAppend signs one operation with the stored admin key, appends it to
// the chain and syncs.
func cmdTeamAppend(cfg config.Client, sub string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("team "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)

	var id string
	var name string
	var approvalSeconds int64
	var memberKey string
	var email string
	var sshKey string
	var pgpKey string

	fs.StringVar(&id, "team", "", "Local team id")
	switch sub {
	case "set-policy":
		fs.Int64Var(&approvalSeconds, "approval-seconds", -1, "Temporary approval window in seconds; omit to reset to the default")
	case "set-info":
		fs.StringVar(&name, "name", "", "New team name")
	case "add-member":
		fs.StringVar(&memberKey, "member-key", "", "Member public key (base64)")
		fs.StringVar(&email, "email", "", "Member email")
		fs.StringVar(&sshKey, "ssh-key", "", "Member SSH public key (base64)")
		fs.StringVar(&pgpKey, "pgp-key", "", "Member PGP public key (base64)")
	case "remove-member":
		fs.StringVar(&memberKey, "member-key", "", "Member public key (base64)")
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == "" {
		fmt.Fprintln(errOut, "missing --team")
		return 2
	}

	var op chain.Operation
	switch sub {
	case "set-policy":
		var p model.PolicySettings
		if approvalSeconds >= 0 {
			v := uint64(approvalSeconds)
			p.TemporaryApprovalSeconds = &v
		}
		op = &chain.SetPolicy{Policy: p}
	case "set-info":
		if name == "" {
			fmt.Fprintln(errOut, "missing --name")
			return 2
		}
		op = &chain.SetTeamInfo{Info: model.Info{Name: name}}
	case "add-member", "remove-member":
		if memberKey == "" {
			fmt.Fprintln(errOut, "missing --member-key")
			return 2
		}
		pub, err := parsePublicKey(memberKey)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --member-key: %v\n", err)
			return 2
		}
		if sub == "remove-member" {
			op = &chain.RemoveMember{PublicKey: pub}
			break
		}
		if email == "" {
			fmt.Fprintln(errOut, "missing --email")
			return 2
		}
		m := model.MemberIdentity{PublicKey: pub, Email: email}
		if m.SSHPublicKey, err = base64.StdEncoding.DecodeString(sshKey); err != nil {
			fmt.Fprintf(errOut, "invalid --ssh-key: %v\n", err)
			return 2
		}
		if m.PGPPublicKey, err = base64.StdEncoding.DecodeString(pgpKey); err != nil {
			fmt.Fprintf(errOut, "invalid --pgp-key: %v\n", err)
			return 2
		}
		op = &chain.AddMember{Member: m}
	}

	ctx := context.Background()
	s, err := openSession(cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "open: %v\n", err)
		return 1
	}
	defer s.Close()

	st, err := s.store.Load(ctx, id)
	if err != nil {
		fmt.Fprintf(errOut, "load team: %v\n", err)
		return 1
	}
	if err := s.connect(ctx, st.Team, nil); err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	signer, err := s.syncer.AdminSigner(ctx, st.Team)
	if err != nil {
		fmt.Fprintf(errOut, "team %s has no local admin key: %v\n", id, err)
		return 1
	}
	next, err := s.syncer.Append(ctx, st.Team, signer, op)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", sub, err)
		return 1
	}
	printState(out, next)
	return 0
}
