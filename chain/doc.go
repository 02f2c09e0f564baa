// Package chain verifies and folds a team's hash chain.
//
// A chain is an ordered list of signed blocks. The first block carries a
// create_chain payload naming the team's public key; every later block carries
// an append_block payload whose last_block_hash is the hash of its
// predecessor's payload bytes. Every block must be signed by the team key.
//
// VerifyAndDigest validates a batch of blocks against a State (team snapshot
// plus the last verified block hash) and returns the next State. Validation is
// all-or-nothing: the first invalid block aborts the batch and nothing is
// returned. Persisting the result is the caller's job.
//
// Payloads and operations are closed sum types decoded from JSON objects keyed
// by a single tag. Decoding tries tags in a fixed priority order (see
// payloadTags and operationTags) and the first tag that is present and decodes
// cleanly wins.
package chain
