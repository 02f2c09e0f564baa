package chain

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind (or RuleID) rather than matching error strings.
type Kind string

const (
	KindBadSignature          Kind = "BadSignature"
	KindBadPayload            Kind = "BadPayload"
	KindBadOperation          Kind = "BadOperation"
	KindBadEncoding           Kind = "BadEncoding"
	KindBadBlockHash          Kind = "BadBlockHash"
	KindMissingCreateChain    Kind = "MissingCreateChain"
	KindUnexpectedBlock       Kind = "UnexpectedBlock"
	KindTeamPublicKeyMismatch Kind = "TeamPublicKeyMismatch"
)

// Error is the package's structured error type.
//
// RuleID names the violated check (e.g. CHAIN-SIG-001). Block is the index of
// the offending block within the batch passed to VerifyAndDigest, or -1 when
// the error is not tied to a position.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Block   int
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Block >= 0 {
		msg = fmt.Sprintf("block %d: %s", e.Block, msg)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) *Error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Block: -1}
}

func wrapError(kind Kind, ruleID, msg string, cause error) *Error {
	e := newError(kind, ruleID, msg)
	e.Cause = cause
	return e
}

// atBlock tags err with a batch position. Non-chain errors are wrapped as-is.
func atBlock(err error, index int) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	out := *e
	out.Block = index
	return &out
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
