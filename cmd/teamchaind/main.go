package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"google.golang.org/grpc"

	"xdao.co/teamchain/chainrpc"
	"xdao.co/teamchain/internal/config"
	"xdao.co/teamchain/ledger"
	"xdao.co/teamchain/storage"
	"xdao.co/teamchain/storage/localfs"
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	cfg, err := config.LoadDaemon()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("teamchaind", flag.ExitOnError)
	listen := fs.String("listen", cfg.Listen, "listen address")
	var archiveDirs stringList
	fs.Var(&archiveDirs, "archive-dir", "Archive accepted payloads under this directory (repeatable; copies are mirrored)")
	maxSkew := fs.Duration("max-skew", cfg.MaxSkew, "Maximum clock skew accepted on read requests; 0 disables the check")
	_ = fs.Parse(os.Args[1:])
	if len(archiveDirs) == 0 {
		archiveDirs = cfg.ArchiveDirs
	}

	logger := log.New(os.Stderr, "teamchaind: ", log.LstdFlags)

	l := ledger.New()
	if len(archiveDirs) > 0 {
		var mirror storage.Mirror
		for _, dir := range archiveDirs {
			cas, err := localfs.New(dir)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			mirror.Backends = append(mirror.Backends, cas)
		}
		l.Archive = &storage.Archive{CAS: mirror}
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	chainrpc.RegisterChainServer(s, &chainrpc.Server{Ledger: l, MaxSkew: *maxSkew, Logger: logger})

	logger.Printf("listening on %s (archive=%s)", lis.Addr().String(), archiveDirs.String())
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
