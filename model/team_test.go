package model

import (
	"encoding/json"
	"testing"
)

func TestPolicyDefaults(t *testing.T) {
	var p PolicySettings
	if got := p.ApprovalSeconds(); got != DefaultTemporaryApprovalSeconds {
		t.Fatalf("unset policy: got %d, want %d", got, DefaultTemporaryApprovalSeconds)
	}
	if got := DefaultPolicy().ApprovalSeconds(); got != 10800 {
		t.Fatalf("default policy: got %d", got)
	}
	zero := uint64(0)
	if got := (PolicySettings{TemporaryApprovalSeconds: &zero}).ApprovalSeconds(); got != 0 {
		t.Fatalf("explicit zero must be kept, got %d", got)
	}
}

func TestPolicyEqual(t *testing.T) {
	a, b := uint64(5), uint64(5)
	c := uint64(6)
	cases := []struct {
		x, y PolicySettings
		want bool
	}{
		{PolicySettings{}, PolicySettings{}, true},
		{PolicySettings{TemporaryApprovalSeconds: &a}, PolicySettings{TemporaryApprovalSeconds: &b}, true},
		{PolicySettings{TemporaryApprovalSeconds: &a}, PolicySettings{TemporaryApprovalSeconds: &c}, false},
		{PolicySettings{TemporaryApprovalSeconds: &a}, PolicySettings{}, false},
	}
	for i, tc := range cases {
		if got := tc.x.Equal(tc.y); got != tc.want {
			t.Fatalf("case %d: got %v want %v", i, got, tc.want)
		}
	}
}

func TestTeamClone_IsDeep(t *testing.T) {
	tm := NewTeam("Acme", PublicKey{1, 2, 3})
	if tm.ID == "" {
		t.Fatalf("expected generated id")
	}
	cp := tm.Clone()
	cp.PublicKey[0] = 9
	*cp.Policy.TemporaryApprovalSeconds = 1
	if tm.PublicKey[0] != 1 || tm.Policy.ApprovalSeconds() != DefaultTemporaryApprovalSeconds {
		t.Fatalf("clone shares memory with original")
	}
}

func TestTeamSnapshotJSON(t *testing.T) {
	tm := NewTeam("Acme", PublicKey{1, 2, 3})
	b, err := json.Marshal(tm)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Team
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != tm.ID || got.Info != tm.Info || !got.PublicKey.Equal(tm.PublicKey) || !got.Policy.Equal(tm.Policy) {
		t.Fatalf("snapshot mismatch: %+v vs %+v", got, tm)
	}
}

func TestHashHelpers(t *testing.T) {
	if _, err := ParseHash(make([]byte, HashSize-1)); err == nil {
		t.Fatalf("expected short hash to fail")
	}
	raw := make([]byte, HashSize)
	raw[0] = 7
	h, err := ParseHash(raw)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	raw[0] = 8
	if h.Bytes()[0] != 7 {
		t.Fatalf("ParseHash must copy its input")
	}
	h2 := h
	if !HashPtrEqual(nil, nil) || HashPtrEqual(&h, nil) || !HashPtrEqual(&h, &h2) {
		t.Fatalf("HashPtrEqual mismatch")
	}
}
