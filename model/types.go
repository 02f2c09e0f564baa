package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// HashSize is the length in bytes of a block hash.
const HashSize = sha256.Size

// PublicKey is a signer public key. Its length depends on the signature scheme.
type PublicKey []byte

// Equal reports whether k and other hold the same bytes.
func (k PublicKey) Equal(other PublicKey) bool { return bytes.Equal(k, other) }

func (k PublicKey) String() string { return base64.StdEncoding.EncodeToString(k) }

// Signature is a detached signature over a block payload.
type Signature []byte

func (s Signature) String() string { return base64.StdEncoding.EncodeToString(s) }

// Hash is the SHA-256 digest of a block's payload bytes.
type Hash [HashSize]byte

// ParseHash copies b into a Hash. b must be exactly HashSize bytes.
func ParseHash(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns a copy of the digest.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

func (h Hash) String() string { return base64.StdEncoding.EncodeToString(h[:]) }

// HashPtrEqual compares two optional hashes. Two nil hashes are equal.
func HashPtrEqual(a, b *Hash) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
