package keys

import (
	"crypto/ed25519"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func seededSigner(t *testing.T, b byte) *Ed25519Signer {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	s, err := Ed25519SignerFromSeed(seed)
	if err != nil {
		t.Fatalf("Ed25519SignerFromSeed: %v", err)
	}
	return s
}

func TestEd25519Signer_Verifies(t *testing.T) {
	s := seededSigner(t, 7)
	msg := []byte("hello")
	sig, err := s.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(s.PublicKey(), msg, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify(s.PublicKey(), []byte("hellO"), sig); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature for altered message, got %v", err)
	}
	other := seededSigner(t, 8)
	if err := Verify(other.PublicKey(), msg, sig); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature for other key, got %v", err)
	}
}

func TestEd25519Signer_SecretKeyRoundTrip(t *testing.T) {
	s := seededSigner(t, 9)
	again, err := NewEd25519Signer(s.SecretKey())
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}
	if !again.PublicKey().Equal(s.PublicKey()) {
		t.Fatalf("public key changed after secret key round trip")
	}
}

func TestDilithium3Signer_Verifies(t *testing.T) {
	s, err := GenerateDilithium3Signer(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateDilithium3Signer: %v", err)
	}
	if len(s.PublicKey()) != mode3.PublicKeySize {
		t.Fatalf("unexpected public key size %d", len(s.PublicKey()))
	}
	msg := []byte("hello")
	sig, err := s.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != mode3.SignatureSize {
		t.Fatalf("unexpected signature size: got %d want %d", len(sig), mode3.SignatureSize)
	}
	if err := Verify(s.PublicKey(), msg, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify(s.PublicKey(), []byte("bye"), sig); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_RejectsMalformedInputs(t *testing.T) {
	s := seededSigner(t, 1)
	sig, _ := s.Sign([]byte("m"))
	if err := Verify(s.PublicKey()[:10], []byte("m"), sig); err == nil {
		t.Fatalf("expected error for unsupported key length")
	}
	if err := Verify(s.PublicKey(), []byte("m"), sig[:10]); err == nil {
		t.Fatalf("expected error for short signature")
	}
}
