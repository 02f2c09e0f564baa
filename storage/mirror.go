package storage

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/teamchain/cidutil"
)

// Mirror keeps the same objects in several CAS backends, for example one
// archive directory per disk.
//
// Put writes to every backend in order and fails on the first error or on any
// backend returning a CID other than the one computed from the bytes. Get and
// Has consult backends in order and return the first hit.
type Mirror struct {
	Backends []CAS
}

var _ CAS = Mirror{}

func (m Mirror) Put(b []byte) (cid.Cid, error) {
	want, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}
	if len(m.Backends) == 0 {
		return cid.Undef, errors.New("storage: mirror has no backends")
	}
	for i, backend := range m.Backends {
		got, err := backend.Put(b)
		if err != nil {
			return cid.Undef, fmt.Errorf("mirror backend %d: %w", i, err)
		}
		if got != want {
			return cid.Undef, ErrCIDMismatch
		}
	}
	return want, nil
}

// Get returns ErrNotFound only if every backend reports it. Other backend
// errors are returned immediately.
func (m Mirror) Get(id cid.Cid) ([]byte, error) {
	for _, backend := range m.Backends {
		b, err := backend.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (m Mirror) Has(id cid.Cid) bool {
	for _, backend := range m.Backends {
		if backend.Has(id) {
			return true
		}
	}
	return false
}
