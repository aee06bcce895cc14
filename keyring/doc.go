// Package keyring manages the time-versioned set of symmetric keys used
// to seal and open WebAuth tokens.
//
// A keyring is an ordered sequence of entries, each a key plus its
// creation and valid-after timestamps. The encrypting and decrypting
// parties share the ring through a single versioned file and select keys
// from it independently, so rotation needs no out-of-band coordination:
//
//   - For encryption, [Keyring.BestKey] picks the most recently activated
//     mature key, so fresh tokens are always sealed with the newest
//     material after a rotation.
//   - For decryption, the caller passes the token's creation time as a
//     hint and gets back the key that was newest at that moment. Rotation
//     only appends keys, so old keys stay on the ring until removed with
//     [Keyring.Remove] and tokens sealed before a rotation remain readable.
//
// [AutoUpdate] ties the lifecycle together: it reads the ring from disk,
// creates it with a fresh random key when missing, and appends a new key
// once the newest one has aged past the configured lifetime. Writes go
// through a temporary file and an atomic rename, so a crash leaves either
// the old ring or the new one, never a torn file.
package keyring
