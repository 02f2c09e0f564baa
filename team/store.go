// Package team persists verified team state in a kv.Store.
//
// Every key is namespaced per team as team_<id>_<publicKeyB64>. The cursor
// (last_block_hash) and the team snapshot are only ever written together by
// Commit, which compares the stored cursor against the one the fold started
// from.
package team

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/kv"
	"xdao.co/teamchain/model"
)

var (
	// ErrNotFound is returned by strict accessors when a value is absent.
	ErrNotFound = errors.New("team: not found")
	// ErrCursorConflict is returned by Commit when the stored cursor moved
	// since the fold being committed started.
	ErrCursorConflict = errors.New("team: cursor changed since fold started")
)

// StoreError wraps a failure of the underlying kv.Store so callers can tell
// it apart from absence.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("team store %s %s: %v", e.Op, e.Key, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

const (
	keyLastBlockHash  = "last_block_hash"
	keyAdminPublicKey = "admin_public_key"
	keyAdminSecretKey = "admin_secret_key"
	keySnapshot       = "snapshot"
	indexPrefix       = "teams/"
)

// Namespace returns the key prefix for t.
func Namespace(t model.Team) string {
	return "team_" + t.ID + "_" + base64.StdEncoding.EncodeToString(t.PublicKey)
}

func key(t model.Team, name string) string { return Namespace(t) + "/" + name }

// AdminKeyPair is the locally held signing credential for a team chain.
type AdminKeyPair struct {
	PublicKey model.PublicKey
	SecretKey []byte
}

// Store is the team-scoped view over a kv.Store.
type Store struct {
	KV kv.Store
}

// New wraps s.
func New(s kv.Store) *Store { return &Store{KV: s} }

func (s *Store) get(ctx context.Context, k string) ([]byte, error) {
	b, err := s.KV.Get(ctx, k)
	if kv.IsNotFound(err) {
		return nil, fmt.Errorf("%s: %w", k, ErrNotFound)
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Key: k, Err: err}
	}
	return b, nil
}

func (s *Store) set(ctx context.Context, k string, v []byte) error {
	if err := s.KV.Set(ctx, k, v); err != nil {
		return &StoreError{Op: "set", Key: k, Err: err}
	}
	return nil
}

// LastBlockHash returns the stored cursor, or ErrNotFound if the chain has
// never been created locally.
func (s *Store) LastBlockHash(ctx context.Context, t model.Team) (model.Hash, error) {
	b, err := s.get(ctx, key(t, keyLastBlockHash))
	if err != nil {
		return model.Hash{}, err
	}
	h, err := model.ParseHash(b)
	if err != nil {
		return model.Hash{}, &StoreError{Op: "decode", Key: key(t, keyLastBlockHash), Err: err}
	}
	return h, nil
}

// Cursor is the probing form of LastBlockHash: absence yields (nil, nil).
func (s *Store) Cursor(ctx context.Context, t model.Team) (*model.Hash, error) {
	h, err := s.LastBlockHash(ctx, t)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SetLastBlockHash overwrites the cursor. Prefer Commit, which guards against
// concurrent folds.
func (s *Store) SetLastBlockHash(ctx context.Context, t model.Team, h model.Hash) error {
	return s.set(ctx, key(t, keyLastBlockHash), h.Bytes())
}

// AdminKeyPair returns the stored admin keypair, or ErrNotFound.
func (s *Store) AdminKeyPair(ctx context.Context, t model.Team) (AdminKeyPair, error) {
	pub, err := s.get(ctx, key(t, keyAdminPublicKey))
	if err != nil {
		return AdminKeyPair{}, err
	}
	sec, err := s.get(ctx, key(t, keyAdminSecretKey))
	if err != nil {
		return AdminKeyPair{}, err
	}
	return AdminKeyPair{PublicKey: pub, SecretKey: sec}, nil
}

// SetAdminKeyPair stores both halves of the admin keypair atomically.
func (s *Store) SetAdminKeyPair(ctx context.Context, t model.Team, kp AdminKeyPair) error {
	err := s.KV.Update(ctx, func(tx kv.Tx) error {
		if err := tx.Set(key(t, keyAdminPublicKey), kp.PublicKey); err != nil {
			return err
		}
		return tx.Set(key(t, keyAdminSecretKey), kp.SecretKey)
	})
	if err != nil {
		return &StoreError{Op: "update", Key: Namespace(t), Err: err}
	}
	return nil
}

// IsAdmin reports whether this client holds the team's signing key.
func (s *Store) IsAdmin(ctx context.Context, t model.Team) (bool, error) {
	kp, err := s.AdminKeyPair(ctx, t)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return kp.PublicKey.Equal(t.PublicKey), nil
}

// Save records t's snapshot and id index without touching the cursor. It is
// used when a team is first created locally.
func (s *Store) Save(ctx context.Context, t model.Team) error {
	snap, err := json.Marshal(t)
	if err != nil {
		return err
	}
	err = s.KV.Update(ctx, func(tx kv.Tx) error {
		if err := tx.Set(indexPrefix+t.ID, t.PublicKey); err != nil {
			return err
		}
		return tx.Set(key(t, keySnapshot), snap)
	})
	if err != nil {
		return &StoreError{Op: "update", Key: Namespace(t), Err: err}
	}
	return nil
}

// Load reconstructs the team with the given id along with its cursor.
func (s *Store) Load(ctx context.Context, id string) (chain.State, error) {
	pub, err := s.get(ctx, indexPrefix+id)
	if err != nil {
		return chain.State{}, err
	}
	probe := model.Team{ID: id, PublicKey: pub}
	b, err := s.get(ctx, key(probe, keySnapshot))
	if err != nil {
		return chain.State{}, err
	}
	var t model.Team
	if err := json.Unmarshal(b, &t); err != nil {
		return chain.State{}, &StoreError{Op: "decode", Key: key(probe, keySnapshot), Err: err}
	}
	cursor, err := s.Cursor(ctx, t)
	if err != nil {
		return chain.State{}, err
	}
	return chain.State{Team: t, LastBlockHash: cursor}, nil
}

// Commit persists next's team snapshot and cursor in one transaction, but
// only if the stored cursor still equals prev (nil meaning "no cursor").
// Otherwise it returns ErrCursorConflict and writes nothing.
func (s *Store) Commit(ctx context.Context, prev *model.Hash, next chain.State) error {
	if next.LastBlockHash == nil {
		return errors.New("team: refusing to commit a state without a cursor")
	}
	t := next.Team
	snap, err := json.Marshal(t)
	if err != nil {
		return err
	}
	err = s.KV.Update(ctx, func(tx kv.Tx) error {
		var current *model.Hash
		b, err := tx.Get(key(t, keyLastBlockHash))
		switch {
		case kv.IsNotFound(err):
		case err != nil:
			return err
		default:
			h, perr := model.ParseHash(b)
			if perr != nil {
				return perr
			}
			current = &h
		}
		if !model.HashPtrEqual(current, prev) {
			return ErrCursorConflict
		}
		if err := tx.Set(indexPrefix+t.ID, t.PublicKey); err != nil {
			return err
		}
		if err := tx.Set(key(t, keySnapshot), snap); err != nil {
			return err
		}
		return tx.Set(key(t, keyLastBlockHash), next.LastBlockHash.Bytes())
	})
	if errors.Is(err, ErrCursorConflict) {
		return ErrCursorConflict
	}
	if err != nil {
		return &StoreError{Op: "commit", Key: Namespace(t), Err: err}
	}
	return nil
}
