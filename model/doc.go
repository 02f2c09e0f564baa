// Package model defines the team aggregate and the primitive values shared by
// the chain verifier, the stores and the transport.
//
// Values in this package are plain data. Keys, signatures and hashes are
// opaque byte buffers compared by byte equality; nothing here interprets them.
package model
