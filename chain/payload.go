package chain

import "xdao.co/teamchain/model"

// Payload is the closed set of block payloads: *CreateChain, *ReadBlock and
// *AppendBlock.
type Payload interface {
	payloadTag() string
}

// CreateChain marks the genesis of a team chain.
type CreateChain struct {
	TeamPublicKey model.PublicKey
	TeamInfo      model.Info
}

// ReadBlock is a signed read request. It is decoded for completeness and
// never folded into team state.
type ReadBlock struct {
	TeamPublicKey model.PublicKey
	Nonce         []byte
	UnixSeconds   uint64
	LastBlockHash *model.Hash
}

// AppendBlock extends a chain. LastBlockHash is the link to the previous block.
type AppendBlock struct {
	LastBlockHash model.Hash
	Operation     Operation
}

const (
	tagCreateChain = "create_chain"
	tagReadBlock   = "read_block"
	tagAppendBlock = "append_block"
)

func (*CreateChain) payloadTag() string { return tagCreateChain }
func (*ReadBlock) payloadTag() string   { return tagReadBlock }
func (*AppendBlock) payloadTag() string { return tagAppendBlock }

// Operation is the closed set of team mutations an AppendBlock can carry.
type Operation interface {
	operationTag() string
}

type InviteMember struct{ NoncePublicKey model.PublicKey }
type CancelInvite struct{ NoncePublicKey model.PublicKey }
type AcceptInvite struct{ Member model.MemberIdentity }
type AddMember struct{ Member model.MemberIdentity }
type RemoveMember struct{ PublicKey model.PublicKey }
type SetPolicy struct{ Policy model.PolicySettings }
type SetTeamInfo struct{ Info model.Info }

const (
	tagInviteMember = "invite_member"
	tagCancelInvite = "cancel_invite"
	tagAcceptInvite = "accept_invite"
	tagAddMember    = "add_member"
	tagRemoveMember = "remove_member"
	tagSetPolicy    = "set_policy"
	tagSetTeamInfo  = "set_team_info"
)

func (*InviteMember) operationTag() string { return tagInviteMember }
func (*CancelInvite) operationTag() string { return tagCancelInvite }
func (*AcceptInvite) operationTag() string { return tagAcceptInvite }
func (*AddMember) operationTag() string    { return tagAddMember }
func (*RemoveMember) operationTag() string { return tagRemoveMember }
func (*SetPolicy) operationTag() string    { return tagSetPolicy }
func (*SetTeamInfo) operationTag() string  { return tagSetTeamInfo }

// PayloadTag returns the wire tag of p ("create_chain", "read_block" or "append_block").
func PayloadTag(p Payload) string { return p.payloadTag() }

// OperationTag returns the wire tag of op (e.g. "set_policy").
func OperationTag(op Operation) string { return op.operationTag() }
