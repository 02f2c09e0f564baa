// Package storage archives verified block payloads by content address.
//
// The archive is keyed by CIDv1 (raw + sha2-256). Because a block's chain hash
// is the sha2-256 digest of its payload, the CID of an archived payload is
// derived directly from the chain hash (see cidutil.BlockCID).
package storage

import "github.com/ipfs/go-cid"

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
