package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"xdao.co/teamchain/model"
)

// ErrInvalidSignature is returned when a well-formed signature does not
// verify for the given key and message.
var ErrInvalidSignature = errors.New("keys: signature invalid")

// Verify checks sig over message under pub.
//
// The scheme is selected by key length: Ed25519 keys verify the raw message,
// Dilithium3 keys verify sha3-256(message). Any other key length fails.
func Verify(pub model.PublicKey, message []byte, sig model.Signature) error {
	switch len(pub) {
	case ed25519.PublicKeySize:
		if len(sig) != ed25519.SignatureSize {
			return fmt.Errorf("keys: invalid ed25519 signature length %d", len(sig))
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), message, sig) {
			return ErrInvalidSignature
		}
		return nil
	case mode3.PublicKeySize:
		if len(sig) != mode3.SignatureSize {
			return fmt.Errorf("keys: invalid dilithium3 signature length %d", len(sig))
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return fmt.Errorf("keys: invalid dilithium3 public key: %w", err)
		}
		digest := sha3.Sum256(message)
		if !mode3.Verify(&pk, digest[:], sig) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("keys: unsupported public key length %d", len(pub))
	}
}
