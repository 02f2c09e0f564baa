package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"xdao.co/teamchain/model"
)

// Signer produces detached signatures over block payloads.
type Signer interface {
	PublicKey() model.PublicKey
	Sign(message []byte) (model.Signature, error)
}

// Ed25519Signer signs the raw message bytes with an Ed25519 key.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519Signer wraps an Ed25519 private key.
func NewEd25519Signer(priv ed25519.PrivateKey) (*Ed25519Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	return &Ed25519Signer{key: priv}, nil
}

// Ed25519SignerFromSeed derives the signing key from a 32-byte seed.
func Ed25519SignerFromSeed(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) PublicKey() model.PublicKey {
	return model.PublicKey(s.key.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) Sign(message []byte) (model.Signature, error) {
	return model.Signature(ed25519.Sign(s.key, message)), nil
}

// SecretKey returns the private key bytes, for persisting an admin keypair.
func (s *Ed25519Signer) SecretKey() []byte {
	return append([]byte(nil), s.key...)
}

// Dilithium3Signer signs sha3-256(message) with a Dilithium3 key.
type Dilithium3Signer struct {
	pub  *mode3.PublicKey
	priv *mode3.PrivateKey
}

// GenerateDilithium3Signer returns a signer over a fresh Dilithium3 keypair.
func GenerateDilithium3Signer(rand io.Reader) (*Dilithium3Signer, error) {
	pk, sk, err := mode3.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return &Dilithium3Signer{pub: pk, priv: sk}, nil
}

func (s *Dilithium3Signer) PublicKey() model.PublicKey {
	b, err := s.pub.MarshalBinary()
	if err != nil {
		return nil
	}
	return model.PublicKey(b)
}

func (s *Dilithium3Signer) Sign(message []byte) (model.Signature, error) {
	if s.priv == nil {
		return nil, errors.New("missing private key")
	}
	digest := sha3.Sum256(message)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest[:], sig)
	return model.Signature(sig), nil
}
