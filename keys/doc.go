// Package keys provides the signature primitives consumed by the chain
// verifier and a small filesystem key store for team signing keys.
//
// API stability:
//
// Stable:
//   - Verify, the Signer implementations and seed derivation. These define
//     which blocks a client will accept and must not change behavior.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore). It is a local convenience and
//     not part of the chain protocol.
package keys
