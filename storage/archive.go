package storage

import (
	"fmt"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/cidutil"
	"xdao.co/teamchain/model"
)

// Archive stores block payloads in a CAS and looks them up by chain hash.
//
// Only payload bytes are archived. Signatures are not, so archived payloads
// are a read cache of verified content, not a source of new blocks.
type Archive struct {
	CAS CAS
}

// PutPayload archives payload text and returns its chain hash.
func (a Archive) PutPayload(payload string) (model.Hash, error) {
	if a.CAS == nil {
		return model.Hash{}, fmt.Errorf("storage: archive has no CAS")
	}
	h := chain.HashPayload(payload)
	want, err := cidutil.BlockCID(h)
	if err != nil {
		return model.Hash{}, err
	}
	got, err := a.CAS.Put([]byte(payload))
	if err != nil {
		return model.Hash{}, err
	}
	if got != want {
		return model.Hash{}, ErrCIDMismatch
	}
	return h, nil
}

// PutBlocks archives the payloads of blocks in order.
func (a Archive) PutBlocks(blocks []chain.Block) error {
	for i, b := range blocks {
		if _, err := a.PutPayload(b.Payload); err != nil {
			return fmt.Errorf("archive block %d: %w", i, err)
		}
	}
	return nil
}

// Payload returns the archived payload text for h.
func (a Archive) Payload(h model.Hash) (string, error) {
	if a.CAS == nil {
		return "", ErrNotFound
	}
	id, err := cidutil.BlockCID(h)
	if err != nil {
		return "", err
	}
	b, err := a.CAS.Get(id)
	if err != nil {
		return "", err
	}
	if chain.HashPayload(string(b)) != h {
		return "", ErrCIDMismatch
	}
	return string(b), nil
}

// Has reports whether the payload for h is archived.
func (a Archive) Has(h model.Hash) bool {
	if a.CAS == nil {
		return false
	}
	id, err := cidutil.BlockCID(h)
	if err != nil {
		return false
	}
	return a.CAS.Has(id)
}
