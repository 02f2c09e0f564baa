// Package teamsync drives the client side of a team chain: fetch blocks after
// the local cursor, fold them, and commit the result.
package teamsync

import (
	"context"
	"errors"
	"fmt"
	"log"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/model"
	"xdao.co/teamchain/storage"
	"xdao.co/teamchain/team"
)

// Fetcher returns the blocks of teamKey's chain after the given hash, or the
// whole chain when after is nil.
type Fetcher interface {
	FetchBlocks(ctx context.Context, teamKey model.PublicKey, after *model.Hash) ([]chain.Block, error)
}

// Submitter appends a signed block to teamKey's chain.
type Submitter interface {
	Submit(ctx context.Context, teamKey model.PublicKey, b chain.Block) (model.Hash, error)
}

type Remote interface {
	Fetcher
	Submitter
}

// Syncer keeps a team.Store in step with a remote chain.
//
// A cursor conflict (another fold committed first) is returned to the caller
// as team.ErrCursorConflict; Syncer never retries.
type Syncer struct {
	Store  *team.Store
	Remote Remote

	// Archive, when set, receives every verified payload.
	Archive *storage.Archive
	// Logger is optional.
	Logger *log.Logger
}

func (s *Syncer) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// State returns the locally committed state of t. A team that was never
// stored yields t itself with no cursor.
func (s *Syncer) State(ctx context.Context, t model.Team) (chain.State, error) {
	st, err := s.Store.Load(ctx, t.ID)
	if errors.Is(err, team.ErrNotFound) {
		return chain.State{Team: t}, nil
	}
	if err != nil {
		return chain.State{}, err
	}
	if !st.Team.PublicKey.Equal(t.PublicKey) {
		return chain.State{}, fmt.Errorf("teamsync: team %s is stored under a different public key", t.ID)
	}
	return st, nil
}

// Sync fetches the blocks after the local cursor, verifies and folds them,
// and commits the new state if the cursor has not moved meanwhile.
func (s *Syncer) Sync(ctx context.Context, t model.Team) (chain.State, error) {
	st, err := s.State(ctx, t)
	if err != nil {
		return chain.State{}, err
	}
	prev := st.LastBlockHash

	blocks, err := s.Remote.FetchBlocks(ctx, t.PublicKey, prev)
	if err != nil {
		return chain.State{}, fmt.Errorf("fetch blocks: %w", err)
	}
	if prev != nil && len(blocks) == 0 {
		return st, nil
	}

	next, err := chain.VerifyAndDigest(blocks, st)
	if err != nil {
		return chain.State{}, err
	}
	if s.Archive != nil {
		if err := s.Archive.PutBlocks(blocks); err != nil {
			s.logf("team %s: archive: %v", t.ID, err)
		}
	}
	if err := s.Store.Commit(ctx, prev, next); err != nil {
		return chain.State{}, err
	}
	s.logf("team %s: folded %d blocks, head %s", t.ID, len(blocks), next.LastBlockHash)
	return next, nil
}

// Create starts a new chain for a team named name owned by signer, submits
// its genesis block and syncs it locally. When the signer can export its
// secret key, the keypair is stored as the team's admin credential.
func (s *Syncer) Create(ctx context.Context, name string, signer keys.Signer) (chain.State, error) {
	t := model.NewTeam(name, signer.PublicKey())
	genesis, err := chain.NewCreateChainBlock(t.Info, signer)
	if err != nil {
		return chain.State{}, err
	}
	if err := s.Store.Save(ctx, t); err != nil {
		return chain.State{}, err
	}
	if exp, ok := signer.(interface{ SecretKey() []byte }); ok {
		kp := team.AdminKeyPair{PublicKey: signer.PublicKey(), SecretKey: exp.SecretKey()}
		if err := s.Store.SetAdminKeyPair(ctx, t, kp); err != nil {
			return chain.State{}, err
		}
	}
	if _, err := s.Remote.Submit(ctx, t.PublicKey, genesis); err != nil {
		return chain.State{}, fmt.Errorf("submit genesis: %w", err)
	}
	return s.Sync(ctx, t)
}

// Append syncs t, signs op on top of the resulting head, submits it and syncs
// again so the returned state includes the new block.
func (s *Syncer) Append(ctx context.Context, t model.Team, signer keys.Signer, op chain.Operation) (chain.State, error) {
	st, err := s.Sync(ctx, t)
	if err != nil {
		return chain.State{}, err
	}
	b, err := chain.NewAppendBlock(*st.LastBlockHash, op, signer)
	if err != nil {
		return chain.State{}, err
	}
	if _, err := s.Remote.Submit(ctx, t.PublicKey, b); err != nil {
		return chain.State{}, fmt.Errorf("submit block: %w", err)
	}
	return s.Sync(ctx, st.Team)
}

// AdminSigner returns a signer for the admin keypair stored for t.
func (s *Syncer) AdminSigner(ctx context.Context, t model.Team) (keys.Signer, error) {
	kp, err := s.Store.AdminKeyPair(ctx, t)
	if err != nil {
		return nil, err
	}
	if !kp.PublicKey.Equal(t.PublicKey) {
		return nil, fmt.Errorf("teamsync: stored admin key does not match team %s", t.ID)
	}
	signer, err := keys.NewEd25519Signer(kp.SecretKey)
	if err != nil {
		return nil, err
	}
	return signer, nil
}
