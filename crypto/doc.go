// Package crypto implements the symmetric keys and authenticated
// encryption used by WebAuth tokens.
//
// This package provides the cryptographic foundation of the module:
// AES key objects with secure generation and wiping, and the fixed
// encrypt-then-MAC token envelope shared by every WebAuth implementation.
//
// # Keys
//
// A [Key] holds immutable AES key material of 128, 192, or 256 bits.
// Keys are created from existing material or from the system CSPRNG:
//
//	key, err := crypto.NewKey(crypto.KeyTypeAES, material)
//	key, err := crypto.RandomKey(crypto.KeyTypeAES, crypto.AES128)
//	defer crypto.WipeKey(key) // Secure cleanup
//
// Key material is exposed only through [Key.Material], which exists for
// persistence and encryption; it must never be logged or transmitted.
//
// # The token envelope
//
// [Encrypt] seals a payload as:
//
//	[ key hint (4) | nonce (16) | AES-CBC ciphertext | HMAC-SHA1 (20) ]
//
// The key hint is the truncated SHA-256 digest of the key material; it is
// advisory and lets a decoder try the likeliest key first. The HMAC is
// computed over everything before the tag with a key derived from the AES
// key via HKDF, so the two primitives never share raw key material.
// [Decrypt] verifies the tag in constant time before touching the
// ciphertext; any bit flip anywhere in the envelope makes it fail.
package crypto
