package chain

import (
	"encoding/json"

	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/model"
)

// wireBlock is the block shape used in service responses. The signature
// travels under the key "public_key"; the label is historical and the field
// is treated as a signature everywhere.
type wireBlock struct {
	Signature string `json:"public_key"`
	Payload   string `json:"payload"`
}

type wireResponse struct {
	Blocks []wireBlock `json:"blocks"`
}

type wireRequest struct {
	PublicKey string `json:"public_key"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Request is an outbound submission: payload text signed by PublicKey.
type Request struct {
	PublicKey model.PublicKey
	Payload   string
	Signature model.Signature
}

// NewRequest signs p with signer and wraps it in a Request.
func NewRequest(p Payload, signer keys.Signer) (Request, error) {
	b, err := NewBlock(p, signer)
	if err != nil {
		return Request{}, err
	}
	return Request{PublicKey: signer.PublicKey(), Payload: b.Payload, Signature: b.Signature}, nil
}

// BlockRequest wraps an already signed block for submission by the team key.
func BlockRequest(teamKey model.PublicKey, b Block) Request {
	return Request{PublicKey: teamKey, Payload: b.Payload, Signature: b.Signature}
}

// Block returns the payload and signature of r as a Block.
func (r Request) Block() Block {
	return Block{Payload: r.Payload, Signature: r.Signature}
}

// Verify checks that r is signed by its own PublicKey.
func (r Request) Verify() error {
	return r.Block().verifySignature(r.PublicKey)
}

// Marshal encodes r in the service's JSON shape.
func (r Request) Marshal() ([]byte, error) {
	return json.Marshal(wireRequest{
		PublicKey: encodeBase64(r.PublicKey),
		Payload:   r.Payload,
		Signature: encodeBase64(r.Signature),
	})
}

// DecodeRequest parses a Request. The service side uses it; clients only
// ever write requests.
func DecodeRequest(data []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return Request{}, wrapError(KindBadEncoding, "CHAIN-ENC-003", "malformed request", err)
	}
	pub, err := decodeBase64("public_key", w.PublicKey)
	if err != nil {
		return Request{}, err
	}
	sig, err := decodeBase64("signature", w.Signature)
	if err != nil {
		return Request{}, err
	}
	return Request{PublicKey: pub, Payload: w.Payload, Signature: sig}, nil
}

// DecodeResponse parses a service response into its ordered blocks. Payload
// text is kept verbatim so block hashes match what was signed.
func DecodeResponse(data []byte) ([]Block, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, wrapError(KindBadEncoding, "CHAIN-ENC-003", "malformed response", err)
	}
	out := make([]Block, 0, len(w.Blocks))
	for i, wb := range w.Blocks {
		sig, err := decodeBase64("block signature", wb.Signature)
		if err != nil {
			return nil, atBlock(err, i)
		}
		out = append(out, Block{Payload: wb.Payload, Signature: sig})
	}
	return out, nil
}

// EncodeResponse is the inverse of DecodeResponse.
func EncodeResponse(blocks []Block) ([]byte, error) {
	w := wireResponse{Blocks: make([]wireBlock, 0, len(blocks))}
	for _, b := range blocks {
		w.Blocks = append(w.Blocks, wireBlock{Signature: encodeBase64(b.Signature), Payload: b.Payload})
	}
	return json.Marshal(w)
}

// NewReadRequest builds a signed read_block request for teamKey's chain,
// asking for blocks after lastHash (all blocks when nil).
func NewReadRequest(teamKey model.PublicKey, nonce []byte, unixSeconds uint64, lastHash *model.Hash, signer keys.Signer) (Request, error) {
	return NewRequest(&ReadBlock{
		TeamPublicKey: teamKey,
		Nonce:         nonce,
		UnixSeconds:   unixSeconds,
		LastBlockHash: lastHash,
	}, signer)
}
