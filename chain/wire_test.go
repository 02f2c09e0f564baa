package chain

import (
	"encoding/json"
	"testing"

	"xdao.co/teamchain/model"
)

func TestDecodeResponse_SignatureUnderPublicKeyLabel(t *testing.T) {
	team := mustSigner(t, 1)
	genesis := mustGenesis(t, "Acme", team)

	raw, err := EncodeResponse([]Block{genesis})
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	var shape map[string][]map[string]string
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := shape["blocks"][0]["public_key"]; got != genesis.Signature.String() {
		t.Fatalf("signature must travel under public_key, got %q", got)
	}

	blocks, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Payload != genesis.Payload || string(blocks[0].Signature) != string(genesis.Signature) {
		t.Fatalf("response round trip mismatch")
	}
	if _, err := VerifyAndDigest(blocks, freshState(team)); err != nil {
		t.Fatalf("decoded blocks must verify: %v", err)
	}
}

func TestDecodeResponse_PreservesPayloadBytes(t *testing.T) {
	// Payload whitespace and key order must survive decoding untouched.
	payload := `{ "create_chain" : {"team_info":{"name":"a"},"team_public_key":"AQ=="} }`
	raw, err := json.Marshal(map[string]any{"blocks": []map[string]string{{"public_key": "AAAA", "payload": payload}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	blocks, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if blocks[0].Payload != payload {
		t.Fatalf("payload text was altered")
	}
	if blocks[0].Hash() != HashPayload(payload) {
		t.Fatalf("hash must be taken over received payload")
	}
}

func TestDecodeResponse_Errors(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"blocks":`))
	requireKind(t, err, KindBadEncoding)

	_, err = DecodeResponse([]byte(`{"blocks":[{"public_key":"AAAA","payload":"x"},{"public_key":"***","payload":"y"}]}`))
	e := requireKind(t, err, KindBadEncoding)
	if e.Block != 1 {
		t.Fatalf("expected error at block 1, got %d", e.Block)
	}
}

func TestRequest_MarshalAndVerify(t *testing.T) {
	member := mustSigner(t, 3)
	team := mustSigner(t, 1)
	last := HashPayload("genesis")

	req, err := NewReadRequest(team.PublicKey(), []byte{1, 2, 3}, 1700000000, &last, member)
	if err != nil {
		t.Fatalf("NewReadRequest: %v", err)
	}
	if err := req.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	raw, err := req.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var shape map[string]string
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"public_key", "payload", "signature"} {
		if _, ok := shape[k]; !ok {
			t.Fatalf("request missing %q: %s", k, raw)
		}
	}

	back, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	p, err := DecodePayload(back.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	rb, ok := p.(*ReadBlock)
	if !ok {
		t.Fatalf("expected read_block, got %T", p)
	}
	if !rb.TeamPublicKey.Equal(team.PublicKey()) || rb.LastBlockHash == nil || *rb.LastBlockHash != last {
		t.Fatalf("unexpected read block %+v", rb)
	}

	back.Payload += " "
	requireKind(t, back.Verify(), KindBadSignature)
}

func TestBlockRequest(t *testing.T) {
	team := mustSigner(t, 1)
	g := mustGenesis(t, "Acme", team)
	req := BlockRequest(team.PublicKey(), g)
	if req.Block().Hash() != g.Hash() {
		t.Fatalf("block request must carry the block payload verbatim")
	}
	if err := req.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !model.PublicKey(req.PublicKey).Equal(team.PublicKey()) {
		t.Fatalf("unexpected public key")
	}
}
