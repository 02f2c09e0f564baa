// Package kvtest is the shared contract test suite for kv.Store implementations.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/teamchain/kv"
)

// NewStore constructs a fresh, empty store for one subtest.
type NewStore func(t *testing.T) kv.Store

// Run exercises the kv.Store contract.
func Run(t *testing.T, newStore NewStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "absent")
		require.True(t, kv.IsNotFound(err), "got %v", err)
	})

	t.Run("SetGet", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", []byte("v1")))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("v1"), got)

		require.NoError(t, s.Set(ctx, "k", []byte("v2")))
		got, err = s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("v2"), got)
	})

	t.Run("EmptyValueIsPresent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", []byte{}))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("UpdateCommits", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", []byte("1")))
		err := s.Update(ctx, func(tx kv.Tx) error {
			v, err := tx.Get("a")
			if err != nil {
				return err
			}
			if err := tx.Set("b", append(v, '2')); err != nil {
				return err
			}
			// Reads inside the transaction see its own writes.
			got, err := tx.Get("b")
			if err != nil {
				return err
			}
			if string(got) != "12" {
				return errors.New("read-your-writes violated")
			}
			return tx.Delete("a")
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, []byte("12"), got)
		_, err = s.Get(ctx, "a")
		require.True(t, kv.IsNotFound(err))
	})

	t.Run("UpdateRollsBack", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", []byte("orig")))
		boom := errors.New("boom")
		err := s.Update(ctx, func(tx kv.Tx) error {
			if err := tx.Set("a", []byte("changed")); err != nil {
				return err
			}
			if err := tx.Set("b", []byte("new")); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, []byte("orig"), got)
		_, err = s.Get(ctx, "b")
		require.True(t, kv.IsNotFound(err))
	})
}
