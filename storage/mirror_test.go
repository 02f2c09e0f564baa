package storage_test

import (
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/teamchain/storage"
	"xdao.co/teamchain/storage/testkit"
)

func TestMirror_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return storage.Mirror{Backends: []storage.CAS{storage.NewMemoryCAS(), storage.NewMemoryCAS()}}
	})
}

func TestMirror_WritesEveryBackendAndFallsBack(t *testing.T) {
	a, b := storage.NewMemoryCAS(), storage.NewMemoryCAS()
	m := storage.Mirror{Backends: []storage.CAS{a, b}}

	id, err := m.Put([]byte("payload"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatalf("expected object in every backend")
	}

	only, err := storage.NewMemoryCAS().Put([]byte("second"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := b.Put([]byte("second")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Get(only)
	if err != nil || string(got) != "second" {
		t.Fatalf("expected fallback read from second backend, got %q %v", got, err)
	}
}

type brokenCAS struct{ storage.CAS }

var errBroken = errors.New("disk failure")

func (brokenCAS) Put([]byte) (cid.Cid, error) { return cid.Undef, errBroken }
func (brokenCAS) Get(cid.Cid) ([]byte, error) { return nil, errBroken }

func TestMirror_PropagatesBackendErrors(t *testing.T) {
	m := storage.Mirror{Backends: []storage.CAS{storage.NewMemoryCAS(), brokenCAS{storage.NewMemoryCAS()}}}
	if _, err := m.Put([]byte("x")); !errors.Is(err, errBroken) {
		t.Fatalf("expected backend error, got %v", err)
	}

	m = storage.Mirror{Backends: []storage.CAS{brokenCAS{storage.NewMemoryCAS()}, storage.NewMemoryCAS()}}
	id, _ := storage.NewMemoryCAS().Put([]byte("y"))
	if _, err := m.Get(id); !errors.Is(err, errBroken) {
		t.Fatalf("expected backend error, got %v", err)
	}

	if _, err := (storage.Mirror{}).Put([]byte("z")); err == nil {
		t.Fatalf("expected error for mirror without backends")
	}
}
