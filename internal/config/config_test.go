package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadClientDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"TEAMCHAIN_DB", "TEAMCHAIN_TARGET", "TEAMCHAIN_DIAL_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.Target != "127.0.0.1:7777" {
		t.Fatalf("expected default target, got %q", cfg.Target)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Fatalf("expected 5s dial timeout, got %s", cfg.DialTimeout)
	}
	if want := filepath.Join(home, ".xdao", "teamchain", "state.db"); cfg.DBPath != want {
		t.Fatalf("expected db %q, got %q", want, cfg.DBPath)
	}
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("TEAMCHAIN_DB", "/tmp/x.db")
	t.Setenv("TEAMCHAIN_TARGET", "example:1234")
	t.Setenv("TEAMCHAIN_RPC_TIMEOUT", "750ms")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.DBPath != "/tmp/x.db" || cfg.Target != "example:1234" || cfg.RPCTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadDaemonArchiveDirs(t *testing.T) {
	t.Setenv("TEAMCHAIN_ARCHIVE_DIR", "/a,/b")

	cfg, err := LoadDaemon()
	if err != nil {
		t.Fatalf("LoadDaemon: %v", err)
	}
	if len(cfg.ArchiveDirs) != 2 || cfg.ArchiveDirs[0] != "/a" || cfg.ArchiveDirs[1] != "/b" {
		t.Fatalf("unexpected archive dirs: %v", cfg.ArchiveDirs)
	}
}

func TestLoadDaemonError(t *testing.T) {
	t.Setenv("TEAMCHAIN_MAX_SKEW", "soon")

	_, err := LoadDaemon()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
