package keys

import (
	"strings"
	"testing"
)

func TestKeyStore_InitDeriveExport(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed, err := ParseSeedHex("0x" + strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}

	pub, _, err := ks.InitRoot("alice", seed, false)
	if err != nil {
		t.Fatalf("InitRoot: %v", err)
	}
	if _, _, err := ks.InitRoot("alice", seed, false); err == nil {
		t.Fatalf("expected InitRoot without overwrite to fail on existing key")
	}
	rolePub, _, err := ks.DeriveRole("alice", "team-acme", false)
	if err != nil {
		t.Fatalf("DeriveRole: %v", err)
	}
	if rolePub == pub {
		t.Fatalf("role key must differ from root key")
	}

	exported, err := ks.Export("alice", "team-acme")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported != rolePub {
		t.Fatalf("Export mismatch: got %s want %s", exported, rolePub)
	}

	signer, err := ks.Signer("alice", "")
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if signer.PublicKey().String() != pub {
		t.Fatalf("Signer public key mismatch")
	}

	list, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "alice" || len(list[0].Roles) != 1 || list[0].Roles[0] != "team-acme" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestKeyStore_LoadSeedRequiresSource(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	if _, err := ks.LoadSeed("", "", "", ""); err == nil {
		t.Fatalf("expected error when no signer is provided")
	}
	if _, err := ks.LoadSeed("zz", "", "", ""); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}
