// Package webauth implements the core cryptographic engine of a web
// single-sign-on infrastructure.
//
// A front-end authentication service and a centralized key-distribution
// service exchange short-lived, symmetrically encrypted, authenticated
// binary tokens carrying identity, session, credential, and authorization
// state between web origins. This module is the in-process library both
// sides embed: it owns the keyring (a time-versioned set of symmetric keys
// persisted as a single versioned file) and the tokens themselves (typed,
// attribute-bearing, authenticated-encrypted blobs with a fixed wire
// format).
//
// The root package holds the pieces shared by every subsystem: the status
// code taxonomy ([Code], [Error]) and the pluggable wall clock
// ([TimeProvider]). The subsystems live in subpackages:
//
//   - attrs: the self-describing attribute-stream codec used inside token
//     payloads and the keyring file.
//   - crypto: symmetric keys and the authenticated-encryption envelope.
//   - keyring: key lifecycle, best-key selection, persistence, rotation.
//   - token: typed token records, validation, and the encode/decode
//     pipelines tying the other packages together.
//
// # Getting Started
//
// Load or create a keyring and round-trip a token:
//
//	ring, status, err := keyring.AutoUpdate("keyring", true, 30*24*time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if status.WriteErr != nil {
//	    log.Printf("keyring updated in memory but not rewritten: %v", status.WriteErr)
//	}
//
//	enc, err := token.Encode(&token.IDToken{
//	    Subject:    "alice",
//	    Auth:       "webkdc",
//	    Expiration: time.Now().Add(time.Hour).Unix(),
//	}, ring)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	decoded, err := token.Decode(enc, token.ID, ring)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// All operations are synchronous and run to completion on the calling
// goroutine. Keys are immutable after construction and safe to share;
// a Keyring mutated by Add, Remove, or AutoUpdate must not be used
// concurrently from other goroutines without external synchronization.
package webauth
