// Package ledger is the reference remote side of a team chain: an in-memory
// block log per team that only accepts blocks chain.VerifyAndDigest accepts.
package ledger

import (
	"encoding/base64"
	"errors"
	"sync"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/model"
	"xdao.co/teamchain/storage"
)

var (
	ErrUnknownTeam  = errors.New("ledger: unknown team")
	ErrUnknownBlock = errors.New("ledger: unknown block hash")
)

type blockLog struct {
	state  chain.State
	blocks []chain.Block
	index  map[model.Hash]int
}

// Ledger holds one block log per team public key. It is safe for concurrent
// use.
type Ledger struct {
	mu     sync.RWMutex
	chains map[string]*blockLog

	// Archive, when set, receives the payload of every accepted block before
	// it becomes visible to readers.
	Archive *storage.Archive
}

func New() *Ledger {
	return &Ledger{chains: make(map[string]*blockLog)}
}

func chainKey(pub model.PublicKey) string { return base64.StdEncoding.EncodeToString(pub) }

// Append validates b against the current head of teamKey's chain and appends
// it. The first block of an unknown team must be its create_chain block.
// Validation failures are returned as *chain.Error with the log untouched.
func (l *Ledger) Append(teamKey model.PublicKey, b chain.Block) (model.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chains == nil {
		l.chains = make(map[string]*blockLog)
	}
	k := chainKey(teamKey)
	c := l.chains[k]
	state := chain.State{Team: model.Team{PublicKey: teamKey, Policy: model.DefaultPolicy()}}
	if c != nil {
		state = c.state
	}

	next, err := chain.VerifyAndDigest([]chain.Block{b}, state)
	if err != nil {
		return model.Hash{}, err
	}
	if l.Archive != nil {
		if _, err := l.Archive.PutPayload(b.Payload); err != nil {
			return model.Hash{}, err
		}
	}

	if c == nil {
		c = &blockLog{index: make(map[model.Hash]int)}
		l.chains[k] = c
	}
	h := *next.LastBlockHash
	c.state = next
	c.index[h] = len(c.blocks)
	c.blocks = append(c.blocks, b)
	return h, nil
}

// Since returns the blocks of teamKey's chain after the block hashed after,
// or the whole chain when after is nil. The result is empty when after is the
// current head.
func (l *Ledger) Since(teamKey model.PublicKey, after *model.Hash) ([]chain.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c := l.chains[chainKey(teamKey)]
	if c == nil {
		return nil, ErrUnknownTeam
	}
	start := 0
	if after != nil {
		i, ok := c.index[*after]
		if !ok {
			return nil, ErrUnknownBlock
		}
		start = i + 1
	}
	return append([]chain.Block(nil), c.blocks[start:]...), nil
}

// Head returns the folded state of teamKey's chain.
func (l *Ledger) Head(teamKey model.PublicKey) (chain.State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c := l.chains[chainKey(teamKey)]
	if c == nil {
		return chain.State{}, ErrUnknownTeam
	}
	return c.state.Clone(), nil
}

// Len returns the number of blocks in teamKey's chain.
func (l *Ledger) Len(teamKey model.PublicKey) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if c := l.chains[chainKey(teamKey)]; c != nil {
		return len(c.blocks)
	}
	return 0
}
