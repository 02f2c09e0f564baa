// Package cidutil maps chain hashes to content identifiers.
//
// A block hash is the sha2-256 digest of the payload bytes, so the CIDv1
// (raw codec, sha2-256 multihash) of a payload can be built from the hash
// alone without touching the payload.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/teamchain/model"
)

// BlockCID returns the CIDv1 (raw + sha2-256) addressing the payload whose
// chain hash is h.
func BlockCID(h model.Hash) (cid.Cid, error) {
	mh, err := multihash.Encode(h[:], multihash.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// HashFromCID extracts the chain hash from a CIDv1 raw + sha2-256 identifier.
func HashFromCID(id cid.Cid) (model.Hash, error) {
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return model.Hash{}, err
	}
	if dec.Code != multihash.SHA2_256 {
		return model.Hash{}, multihash.ErrUnknownCode
	}
	return model.ParseHash(dec.Digest)
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
