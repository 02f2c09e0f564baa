package chain

import "xdao.co/teamchain/model"

// State is the verified view of a team: its snapshot and the hash of the last
// block folded into it. A nil LastBlockHash means the chain has never been
// created locally.
type State struct {
	Team          model.Team
	LastBlockHash *model.Hash
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Team: s.Team.Clone()}
	if s.LastBlockHash != nil {
		h := *s.LastBlockHash
		out.LastBlockHash = &h
	}
	return out
}

// VerifyAndDigest validates blocks in order against state and returns the
// resulting state.
//
// Without a cursor the first block must be the chain's create_chain block;
// with one, every block must be an append_block linked to its predecessor.
// Every block must be signed by state.Team.PublicKey. The first invalid block
// aborts the batch and its *Error carries the block's index. The input state
// is never modified.
//
// Only set_policy changes team state. The remaining operations are verified
// and linked but intentionally not applied.
func VerifyAndDigest(blocks []Block, state State) (State, error) {
	work := state.Clone()
	pub := work.Team.PublicKey

	start := 0
	if work.LastBlockHash == nil {
		if len(blocks) == 0 {
			return State{}, newError(KindMissingCreateChain, "CHAIN-GEN-001", "no cursor and no blocks to create the chain")
		}
		cc, err := blocks[0].VerifyCreateChain(pub)
		if err != nil {
			return State{}, atBlock(err, 0)
		}
		work.Team.Info = cc.TeamInfo
		h := blocks[0].Hash()
		work.LastBlockHash = &h
		start = 1
	}

	cursor := *work.LastBlockHash
	for i := start; i < len(blocks); i++ {
		ab, err := blocks[i].VerifyAppendBlock(pub, cursor)
		if err != nil {
			return State{}, atBlock(err, i)
		}
		apply(&work.Team, ab.Operation)
		cursor = blocks[i].Hash()
	}
	work.LastBlockHash = &cursor
	return work, nil
}

func apply(t *model.Team, op Operation) {
	switch v := op.(type) {
	case *SetPolicy:
		t.Policy = v.Policy
	case *InviteMember, *CancelInvite, *AcceptInvite, *AddMember, *RemoveMember, *SetTeamInfo:
		// Verified and linked; membership and info changes are not folded.
	}
}
