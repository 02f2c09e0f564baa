package chain

import (
	"crypto/sha256"

	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/model"
)

// Block is a single signed unit of a chain. Payload holds the exact text that
// was signed; it is never re-serialized.
type Block struct {
	Payload   string
	Signature model.Signature
}

// HashPayload returns the digest of the payload's UTF-8 bytes.
func HashPayload(payload string) model.Hash {
	return model.Hash(sha256.Sum256([]byte(payload)))
}

// Hash returns the content hash of the block: the digest of its payload bytes
// exactly as received.
func (b Block) Hash() model.Hash { return HashPayload(b.Payload) }

func (b Block) verifySignature(pub model.PublicKey) error {
	if err := keys.Verify(pub, []byte(b.Payload), b.Signature); err != nil {
		return wrapError(KindBadSignature, "CHAIN-SIG-001", "signature does not verify under team key", err)
	}
	return nil
}

// VerifyCreateChain validates b as the genesis block of the chain owned by pub.
//
// Checks run in order and stop at the first failure: signature
// (BadSignature), payload tag (MissingCreateChain) and embedded team key
// (TeamPublicKeyMismatch). Payloads that decode to no variant at all fail with
// the decoder's error.
func (b Block) VerifyCreateChain(pub model.PublicKey) (*CreateChain, error) {
	if err := b.verifySignature(pub); err != nil {
		return nil, err
	}
	p, err := DecodePayload(b.Payload)
	if err != nil {
		return nil, err
	}
	cc, ok := p.(*CreateChain)
	if !ok {
		return nil, newError(KindMissingCreateChain, "CHAIN-GEN-002", "first block is "+p.payloadTag()+", want "+tagCreateChain)
	}
	if !cc.TeamPublicKey.Equal(pub) {
		return nil, newError(KindTeamPublicKeyMismatch, "CHAIN-GEN-003", "create_chain team key does not match team public key")
	}
	return cc, nil
}

// VerifyAppendBlock validates b as a non-genesis block following lastHash.
//
// It is the only entry point for non-genesis validation: the signature is
// checked under pub (BadSignature), the payload must decode to an AppendBlock
// (UnexpectedBlock) and its LastBlockHash must equal lastHash (BadBlockHash).
func (b Block) VerifyAppendBlock(pub model.PublicKey, lastHash model.Hash) (*AppendBlock, error) {
	if err := b.verifySignature(pub); err != nil {
		return nil, err
	}
	p, err := DecodePayload(b.Payload)
	if err != nil {
		return nil, err
	}
	ab, ok := p.(*AppendBlock)
	if !ok {
		return nil, newError(KindUnexpectedBlock, "CHAIN-SEQ-001", "expected "+tagAppendBlock+", got "+p.payloadTag())
	}
	if ab.LastBlockHash != lastHash {
		return nil, newError(KindBadBlockHash, "CHAIN-LINK-001", "last_block_hash does not match the previous block")
	}
	return ab, nil
}

// NewBlock encodes p and signs the resulting payload text.
func NewBlock(p Payload, signer keys.Signer) (Block, error) {
	text, err := EncodePayload(p)
	if err != nil {
		return Block{}, err
	}
	return SignPayload(text, signer)
}

// SignPayload signs already-encoded payload text.
func SignPayload(text string, signer keys.Signer) (Block, error) {
	sig, err := signer.Sign([]byte(text))
	if err != nil {
		return Block{}, err
	}
	return Block{Payload: text, Signature: sig}, nil
}

// NewCreateChainBlock builds the genesis block for a team signed by signer.
func NewCreateChainBlock(info model.Info, signer keys.Signer) (Block, error) {
	return NewBlock(&CreateChain{TeamPublicKey: signer.PublicKey(), TeamInfo: info}, signer)
}

// NewAppendBlock builds a block carrying op, linked to lastHash.
func NewAppendBlock(lastHash model.Hash, op Operation, signer keys.Signer) (Block, error) {
	return NewBlock(&AppendBlock{LastBlockHash: lastHash, Operation: op}, signer)
}
