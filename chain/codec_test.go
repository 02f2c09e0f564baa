package chain

import (
	"reflect"
	"testing"

	"xdao.co/teamchain/model"
)

func sampleMember() model.MemberIdentity {
	return model.MemberIdentity{
		PublicKey:    model.PublicKey{1, 2, 3, 4},
		Email:        "dev@example.com",
		SSHPublicKey: []byte("ssh-ed25519 AAAA"),
		PGPPublicKey: []byte{0x99, 0x01, 0x0d},
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	last := HashPayload("previous")
	cases := []Payload{
		&CreateChain{TeamPublicKey: model.PublicKey{9, 8, 7}, TeamInfo: model.Info{Name: "Acme"}},
		&ReadBlock{TeamPublicKey: model.PublicKey{1}, Nonce: []byte{5, 5}, UnixSeconds: 1700000000},
		&ReadBlock{TeamPublicKey: model.PublicKey{1}, Nonce: []byte{5, 5}, UnixSeconds: 1, LastBlockHash: &last},
		&AppendBlock{LastBlockHash: last, Operation: &InviteMember{NoncePublicKey: model.PublicKey{4, 4}}},
		&AppendBlock{LastBlockHash: last, Operation: &CancelInvite{NoncePublicKey: model.PublicKey{4, 5}}},
		&AppendBlock{LastBlockHash: last, Operation: &AcceptInvite{Member: sampleMember()}},
		&AppendBlock{LastBlockHash: last, Operation: &AddMember{Member: sampleMember()}},
		&AppendBlock{LastBlockHash: last, Operation: &RemoveMember{PublicKey: model.PublicKey{3, 3, 3}}},
		&AppendBlock{LastBlockHash: last, Operation: &SetPolicy{Policy: model.PolicySettings{TemporaryApprovalSeconds: u64(3600)}}},
		&AppendBlock{LastBlockHash: last, Operation: &SetPolicy{}},
		&AppendBlock{LastBlockHash: last, Operation: &SetTeamInfo{Info: model.Info{Name: "Renamed"}}},
	}
	for _, want := range cases {
		text, err := EncodePayload(want)
		if err != nil {
			t.Fatalf("EncodePayload(%T): %v", want, err)
		}
		got, err := DecodePayload(text)
		if err != nil {
			t.Fatalf("DecodePayload(%s): %v", text, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch for %s:\n got %#v\nwant %#v", text, got, want)
		}
	}
}

func TestEncodePayloadWireShape(t *testing.T) {
	text, err := EncodePayload(&CreateChain{TeamPublicKey: model.PublicKey{0xff}, TeamInfo: model.Info{Name: "Acme"}})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	want := `{"create_chain":{"team_public_key":"/w==","team_info":{"name":"Acme"}}}`
	if text != want {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", text, want)
	}

	op, err := EncodeOperation(&RemoveMember{PublicKey: model.PublicKey{0xff}})
	if err != nil {
		t.Fatalf("EncodeOperation: %v", err)
	}
	if op != `{"remove_member":"/w=="}` {
		t.Fatalf("unexpected remove_member encoding: %s", op)
	}

	policy, err := EncodeOperation(&SetPolicy{})
	if err != nil {
		t.Fatalf("EncodeOperation: %v", err)
	}
	if policy != `{"set_policy":{}}` {
		t.Fatalf("unexpected empty set_policy encoding: %s", policy)
	}
}

func TestDecodePayload_TagPriority(t *testing.T) {
	last := HashPayload("x").String()
	// Both tags present and valid: create_chain has priority.
	text := `{"append_block":{"last_block_hash":"` + last + `","operation":{"set_policy":{}}},` +
		`"create_chain":{"team_public_key":"AQ==","team_info":{"name":"Acme"}}}`
	p, err := DecodePayload(text)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if _, ok := p.(*CreateChain); !ok {
		t.Fatalf("expected create_chain to win, got %T", p)
	}

	// A higher-priority tag that fails to decode yields to a valid lower one.
	text = `{"create_chain":{"team_public_key":7},` +
		`"append_block":{"last_block_hash":"` + last + `","operation":{"set_policy":{}}}}`
	p, err = DecodePayload(text)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if _, ok := p.(*AppendBlock); !ok {
		t.Fatalf("expected append_block, got %T", p)
	}

	// Null tags are treated as absent.
	p, err = DecodePayload(`{"create_chain":null,"read_block":{"team_public_key":"AQ==","nonce":"AQ==","unix_seconds":5}}`)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if _, ok := p.(*ReadBlock); !ok {
		t.Fatalf("expected read_block, got %T", p)
	}
}

func TestDecodeOperation_TagPriority(t *testing.T) {
	op, err := DecodeOperation(`{"set_team_info":{"name":"n"},"add_member":{"public_key":"AQ==","email":"e","ssh_public_key":"AQ==","pgp_public_key":"AQ=="}}`)
	if err != nil {
		t.Fatalf("DecodeOperation: %v", err)
	}
	if _, ok := op.(*AddMember); !ok {
		t.Fatalf("expected add_member to win over set_team_info, got %T", op)
	}
}

func TestDecodeErrors(t *testing.T) {
	last := HashPayload("x").String()
	cases := []struct {
		name   string
		text   string
		kind   Kind
		ruleID string
	}{
		{"not json", `hello`, KindBadPayload, "CHAIN-PAY-003"},
		{"array", `[1,2]`, KindBadPayload, "CHAIN-PAY-003"},
		{"no known tag", `{"mystery":{}}`, KindBadPayload, "CHAIN-PAY-001"},
		{"empty object", `{}`, KindBadPayload, "CHAIN-PAY-001"},
		{"missing field", `{"create_chain":{"team_info":{"name":"a"}}}`, KindBadPayload, "CHAIN-PAY-002"},
		{"bad base64", `{"create_chain":{"team_public_key":"!!!","team_info":{"name":"a"}}}`, KindBadEncoding, "CHAIN-ENC-001"},
		{"short hash", `{"append_block":{"last_block_hash":"AQID","operation":{"set_policy":{}}}}`, KindBadEncoding, "CHAIN-ENC-002"},
		{"unknown operation", `{"append_block":{"last_block_hash":"` + last + `","operation":{"promote":{}}}}`, KindBadOperation, "CHAIN-OP-001"},
		{"operation not object", `{"append_block":{"last_block_hash":"` + last + `","operation":3}}`, KindBadOperation, "CHAIN-OP-003"},
		{"malformed operation", `{"append_block":{"last_block_hash":"` + last + `","operation":{"set_team_info":{}}}}`, KindBadOperation, "CHAIN-OP-002"},
		{"operation bad base64", `{"append_block":{"last_block_hash":"` + last + `","operation":{"remove_member":"%%"}}}`, KindBadEncoding, "CHAIN-ENC-001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePayload(tc.text)
			requireKind(t, err, tc.kind)
			if got := RuleID(err); got != tc.ruleID {
				t.Fatalf("expected RuleID %s, got %s (%v)", tc.ruleID, got, err)
			}
		})
	}
}

func TestDecodeBase64AcceptsUnpadded(t *testing.T) {
	op, err := DecodeOperation(`{"remove_member":"AQI"}`)
	if err != nil {
		t.Fatalf("DecodeOperation: %v", err)
	}
	rm := op.(*RemoveMember)
	if !rm.PublicKey.Equal(model.PublicKey{1, 2}) {
		t.Fatalf("unexpected key %v", rm.PublicKey)
	}
}
