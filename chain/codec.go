package chain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"xdao.co/teamchain/model"
)

// Tag priority. When an object carries more than one known tag, the earliest
// tag in these lists that decodes cleanly wins.
var (
	payloadTags = []string{tagCreateChain, tagReadBlock, tagAppendBlock}

	operationTags = []string{
		tagInviteMember,
		tagCancelInvite,
		tagAcceptInvite,
		tagAddMember,
		tagRemoveMember,
		tagSetPolicy,
		tagSetTeamInfo,
	}
)

type wireInfo struct {
	Name *string `json:"name"`
}

type wireCreateChain struct {
	TeamPublicKey *string   `json:"team_public_key"`
	TeamInfo      *wireInfo `json:"team_info"`
}

type wireReadBlock struct {
	TeamPublicKey *string `json:"team_public_key"`
	Nonce         *string `json:"nonce"`
	UnixSeconds   *uint64 `json:"unix_seconds"`
	LastBlockHash *string `json:"last_block_hash,omitempty"`
}

type wireAppendBlock struct {
	LastBlockHash *string         `json:"last_block_hash"`
	Operation     json.RawMessage `json:"operation"`
}

type wireNonce struct {
	NoncePublicKey *string `json:"nonce_public_key"`
}

type wireMember struct {
	PublicKey    *string `json:"public_key"`
	Email        *string `json:"email"`
	SSHPublicKey *string `json:"ssh_public_key"`
	PGPPublicKey *string `json:"pgp_public_key"`
}

type wirePolicy struct {
	TemporaryApprovalSeconds *uint64 `json:"temporary_approval_seconds,omitempty"`
}

// decodeTagged resolves a single-tag union. Tags are tried in order; the first
// present, non-null tag that decodes wins. If present tags all fail, the error
// of the highest-priority one is returned. If no known tag is present, none()
// is returned.
func decodeTagged[T any](raw []byte, tags []string, decode func(tag string, v json.RawMessage) (T, error), none func(cause error) error) (T, error) {
	var zero T
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		if err == nil {
			err = errors.New("not a JSON object")
		}
		return zero, none(err)
	}
	var firstErr error
	for _, tag := range tags {
		v, ok := obj[tag]
		if !ok || isNull(v) {
			continue
		}
		out, err := decode(tag, v)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return zero, firstErr
	}
	return zero, none(nil)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// DecodePayload decodes block payload text into exactly one Payload variant.
func DecodePayload(text string) (Payload, error) {
	return decodeTagged([]byte(text), payloadTags, decodePayloadTag, func(cause error) error {
		if cause != nil {
			return wrapError(KindBadPayload, "CHAIN-PAY-003", "payload is not a JSON object", cause)
		}
		return newError(KindBadPayload, "CHAIN-PAY-001", "payload matches no known tag")
	})
}

func decodePayloadTag(tag string, v json.RawMessage) (Payload, error) {
	switch tag {
	case tagCreateChain:
		var w wireCreateChain
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badPayload(tag, err)
		}
		if w.TeamPublicKey == nil || w.TeamInfo == nil || w.TeamInfo.Name == nil {
			return nil, badPayload(tag, errMissingField)
		}
		pub, err := decodeBase64("team_public_key", *w.TeamPublicKey)
		if err != nil {
			return nil, err
		}
		return &CreateChain{TeamPublicKey: pub, TeamInfo: model.Info{Name: *w.TeamInfo.Name}}, nil
	case tagReadBlock:
		var w wireReadBlock
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badPayload(tag, err)
		}
		if w.TeamPublicKey == nil || w.Nonce == nil || w.UnixSeconds == nil {
			return nil, badPayload(tag, errMissingField)
		}
		pub, err := decodeBase64("team_public_key", *w.TeamPublicKey)
		if err != nil {
			return nil, err
		}
		nonce, err := decodeBase64("nonce", *w.Nonce)
		if err != nil {
			return nil, err
		}
		rb := &ReadBlock{TeamPublicKey: pub, Nonce: nonce, UnixSeconds: *w.UnixSeconds}
		if w.LastBlockHash != nil {
			h, err := decodeHash("last_block_hash", *w.LastBlockHash)
			if err != nil {
				return nil, err
			}
			rb.LastBlockHash = &h
		}
		return rb, nil
	case tagAppendBlock:
		var w wireAppendBlock
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badPayload(tag, err)
		}
		if w.LastBlockHash == nil || len(w.Operation) == 0 {
			return nil, badPayload(tag, errMissingField)
		}
		h, err := decodeHash("last_block_hash", *w.LastBlockHash)
		if err != nil {
			return nil, err
		}
		op, err := decodeOperation(w.Operation)
		if err != nil {
			return nil, err
		}
		return &AppendBlock{LastBlockHash: h, Operation: op}, nil
	}
	return nil, newError(KindBadPayload, "CHAIN-PAY-001", "payload matches no known tag")
}

// DecodeOperation decodes an operation object into exactly one Operation variant.
func DecodeOperation(text string) (Operation, error) {
	return decodeOperation([]byte(text))
}

func decodeOperation(raw []byte) (Operation, error) {
	return decodeTagged(raw, operationTags, decodeOperationTag, func(cause error) error {
		if cause != nil {
			return wrapError(KindBadOperation, "CHAIN-OP-003", "operation is not a JSON object", cause)
		}
		return newError(KindBadOperation, "CHAIN-OP-001", "operation matches no known tag")
	})
}

func decodeOperationTag(tag string, v json.RawMessage) (Operation, error) {
	switch tag {
	case tagInviteMember, tagCancelInvite:
		var w wireNonce
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badOperation(tag, err)
		}
		if w.NoncePublicKey == nil {
			return nil, badOperation(tag, errMissingField)
		}
		key, err := decodeBase64("nonce_public_key", *w.NoncePublicKey)
		if err != nil {
			return nil, err
		}
		if tag == tagInviteMember {
			return &InviteMember{NoncePublicKey: key}, nil
		}
		return &CancelInvite{NoncePublicKey: key}, nil
	case tagAcceptInvite, tagAddMember:
		var w wireMember
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badOperation(tag, err)
		}
		m, err := w.decode(tag)
		if err != nil {
			return nil, err
		}
		if tag == tagAcceptInvite {
			return &AcceptInvite{Member: m}, nil
		}
		return &AddMember{Member: m}, nil
	case tagRemoveMember:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, badOperation(tag, err)
		}
		key, err := decodeBase64("remove_member", s)
		if err != nil {
			return nil, err
		}
		return &RemoveMember{PublicKey: key}, nil
	case tagSetPolicy:
		var w wirePolicy
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badOperation(tag, err)
		}
		return &SetPolicy{Policy: model.PolicySettings{TemporaryApprovalSeconds: w.TemporaryApprovalSeconds}}, nil
	case tagSetTeamInfo:
		var w wireInfo
		if err := json.Unmarshal(v, &w); err != nil {
			return nil, badOperation(tag, err)
		}
		if w.Name == nil {
			return nil, badOperation(tag, errMissingField)
		}
		return &SetTeamInfo{Info: model.Info{Name: *w.Name}}, nil
	}
	return nil, newError(KindBadOperation, "CHAIN-OP-001", "operation matches no known tag")
}

func (w wireMember) decode(tag string) (model.MemberIdentity, error) {
	var m model.MemberIdentity
	if w.PublicKey == nil || w.Email == nil || w.SSHPublicKey == nil || w.PGPPublicKey == nil {
		return m, badOperation(tag, errMissingField)
	}
	var err error
	if m.PublicKey, err = decodeBase64("public_key", *w.PublicKey); err != nil {
		return m, err
	}
	if m.SSHPublicKey, err = decodeBase64("ssh_public_key", *w.SSHPublicKey); err != nil {
		return m, err
	}
	if m.PGPPublicKey, err = decodeBase64("pgp_public_key", *w.PGPPublicKey); err != nil {
		return m, err
	}
	m.Email = *w.Email
	return m, nil
}

var errMissingField = errors.New("missing required field")

func badPayload(tag string, cause error) error {
	return wrapError(KindBadPayload, "CHAIN-PAY-002", "malformed "+tag, cause)
}

func badOperation(tag string, cause error) error {
	return wrapError(KindBadOperation, "CHAIN-OP-002", "malformed "+tag, cause)
}

func decodeBase64(field, s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, wrapError(KindBadEncoding, "CHAIN-ENC-001", "invalid base64 in "+field, err)
	}
	return b, nil
}

func decodeHash(field, s string) (model.Hash, error) {
	b, err := decodeBase64(field, s)
	if err != nil {
		return model.Hash{}, err
	}
	h, err := model.ParseHash(b)
	if err != nil {
		return model.Hash{}, wrapError(KindBadEncoding, "CHAIN-ENC-002", "invalid "+field, err)
	}
	return h, nil
}

func encodeBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func strPtr(s string) *string { return &s }

// EncodePayload serializes p to payload text. The output is deterministic for
// a given value; it is not guaranteed to be byte-identical to text that was
// decoded into p, which is why hashes are always taken over received bytes.
func EncodePayload(p Payload) (string, error) {
	var body any
	switch v := p.(type) {
	case *CreateChain:
		body = wireCreateChain{
			TeamPublicKey: strPtr(encodeBase64(v.TeamPublicKey)),
			TeamInfo:      &wireInfo{Name: strPtr(v.TeamInfo.Name)},
		}
	case *ReadBlock:
		w := wireReadBlock{
			TeamPublicKey: strPtr(encodeBase64(v.TeamPublicKey)),
			Nonce:         strPtr(encodeBase64(v.Nonce)),
			UnixSeconds:   &v.UnixSeconds,
		}
		if v.LastBlockHash != nil {
			w.LastBlockHash = strPtr(v.LastBlockHash.String())
		}
		body = w
	case *AppendBlock:
		op, err := encodeOperation(v.Operation)
		if err != nil {
			return "", err
		}
		body = wireAppendBlock{LastBlockHash: strPtr(v.LastBlockHash.String()), Operation: op}
	default:
		return "", newError(KindBadPayload, "CHAIN-PAY-004", fmt.Sprintf("cannot encode payload %T", p))
	}
	b, err := json.Marshal(map[string]any{p.payloadTag(): body})
	if err != nil {
		return "", wrapError(KindBadPayload, "CHAIN-PAY-004", "encode payload", err)
	}
	return string(b), nil
}

// EncodeOperation serializes op to its tagged JSON object.
func EncodeOperation(op Operation) (string, error) {
	b, err := encodeOperation(op)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeOperation(op Operation) (json.RawMessage, error) {
	var body any
	switch v := op.(type) {
	case *InviteMember:
		body = wireNonce{NoncePublicKey: strPtr(encodeBase64(v.NoncePublicKey))}
	case *CancelInvite:
		body = wireNonce{NoncePublicKey: strPtr(encodeBase64(v.NoncePublicKey))}
	case *AcceptInvite:
		body = encodeMember(v.Member)
	case *AddMember:
		body = encodeMember(v.Member)
	case *RemoveMember:
		body = encodeBase64(v.PublicKey)
	case *SetPolicy:
		body = wirePolicy{TemporaryApprovalSeconds: v.Policy.TemporaryApprovalSeconds}
	case *SetTeamInfo:
		body = wireInfo{Name: strPtr(v.Info.Name)}
	default:
		return nil, newError(KindBadOperation, "CHAIN-OP-004", fmt.Sprintf("cannot encode operation %T", op))
	}
	b, err := json.Marshal(map[string]any{op.operationTag(): body})
	if err != nil {
		return nil, wrapError(KindBadOperation, "CHAIN-OP-004", "encode operation", err)
	}
	return b, nil
}

func encodeMember(m model.MemberIdentity) wireMember {
	return wireMember{
		PublicKey:    strPtr(encodeBase64(m.PublicKey)),
		Email:        strPtr(m.Email),
		SSHPublicKey: strPtr(encodeBase64(m.SSHPublicKey)),
		PGPPublicKey: strPtr(encodeBase64(m.PGPPublicKey)),
	}
}
