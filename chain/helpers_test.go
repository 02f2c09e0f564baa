package chain

import (
	"crypto/ed25519"
	"testing"

	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/model"
)

func mustSigner(t *testing.T, seedByte byte) *keys.Ed25519Signer {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	s, err := keys.Ed25519SignerFromSeed(seed)
	if err != nil {
		t.Fatalf("Ed25519SignerFromSeed: %v", err)
	}
	return s
}

func mustGenesis(t *testing.T, name string, signer keys.Signer) Block {
	t.Helper()
	b, err := NewCreateChainBlock(model.Info{Name: name}, signer)
	if err != nil {
		t.Fatalf("NewCreateChainBlock: %v", err)
	}
	return b
}

func mustAppend(t *testing.T, last model.Hash, op Operation, signer keys.Signer) Block {
	t.Helper()
	b, err := NewAppendBlock(last, op, signer)
	if err != nil {
		t.Fatalf("NewAppendBlock: %v", err)
	}
	return b
}

func freshState(signer keys.Signer) State {
	return State{Team: model.Team{
		ID:        "team-1",
		PublicKey: signer.PublicKey(),
		Policy:    model.DefaultPolicy(),
	}}
}

func u64(v uint64) *uint64 { return &v }

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !IsKind(err, kind) {
		t.Fatalf("expected %s, got %s (%v)", kind, KindOf(err), err)
	}
	e, _ := err.(*Error)
	return e
}
