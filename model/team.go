package model

import (
	"github.com/google/uuid"
)

// DefaultTemporaryApprovalSeconds applies when a policy leaves the
// temporary approval window unset.
const DefaultTemporaryApprovalSeconds uint64 = 3 * 60 * 60

// Info is the human-facing description of a team.
type Info struct {
	Name string `json:"name"`
}

// PolicySettings are the team-wide settings members are expected to enforce.
type PolicySettings struct {
	TemporaryApprovalSeconds *uint64 `json:"temporary_approval_seconds,omitempty"`
}

// DefaultPolicy returns the policy a freshly created team starts with.
func DefaultPolicy() PolicySettings {
	s := DefaultTemporaryApprovalSeconds
	return PolicySettings{TemporaryApprovalSeconds: &s}
}

// ApprovalSeconds returns the effective temporary approval window.
func (p PolicySettings) ApprovalSeconds() uint64 {
	if p.TemporaryApprovalSeconds == nil {
		return DefaultTemporaryApprovalSeconds
	}
	return *p.TemporaryApprovalSeconds
}

// Equal compares policies by effective field values, not pointer identity.
func (p PolicySettings) Equal(other PolicySettings) bool {
	if p.TemporaryApprovalSeconds == nil || other.TemporaryApprovalSeconds == nil {
		return p.TemporaryApprovalSeconds == nil && other.TemporaryApprovalSeconds == nil
	}
	return *p.TemporaryApprovalSeconds == *other.TemporaryApprovalSeconds
}

// MemberIdentity is the identity a member publishes when joining a team.
type MemberIdentity struct {
	PublicKey    PublicKey
	Email        string
	SSHPublicKey []byte
	PGPPublicKey []byte
}

// Team is a snapshot of a team's verified state.
//
// PublicKey is fixed for the lifetime of the team: every block of the team's
// chain must be signed by it. ID is assigned locally and never appears on the
// chain.
type Team struct {
	ID        string         `json:"id"`
	Info      Info           `json:"info"`
	PublicKey PublicKey      `json:"public_key"`
	Policy    PolicySettings `json:"policy"`
}

// NewTeam creates a team with a random local id and the default policy.
func NewTeam(name string, publicKey PublicKey) Team {
	return Team{
		ID:        uuid.NewString(),
		Info:      Info{Name: name},
		PublicKey: append(PublicKey(nil), publicKey...),
		Policy:    DefaultPolicy(),
	}
}

// Clone returns a deep copy of t.
func (t Team) Clone() Team {
	out := t
	out.PublicKey = append(PublicKey(nil), t.PublicKey...)
	if t.Policy.TemporaryApprovalSeconds != nil {
		s := *t.Policy.TemporaryApprovalSeconds
		out.Policy.TemporaryApprovalSeconds = &s
	}
	return out
}
