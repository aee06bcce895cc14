package keyring

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/webauth"
	"github.com/opd-ai/webauth/crypto"
)

// Entry is one key on a keyring together with its lifecycle timestamps,
// both in seconds since the epoch.
type Entry struct {
	Creation   int64
	ValidAfter int64
	Key        *crypto.Key
}

// Keyring is an ordered collection of keys. Insertion order is
// preserved and duplicate entries may coexist. A Keyring is not safe for
// concurrent mutation; see the module documentation.
type Keyring struct {
	entries []Entry
}

// KeyUsage says which direction a key is selected for.
type KeyUsage int

const (
	// UsageEncrypt selects a key for sealing new tokens.
	UsageEncrypt KeyUsage = iota
	// UsageDecrypt selects a key for opening an existing token.
	UsageDecrypt
)

// New creates an empty keyring with the suggested initial capacity.
func New(capacity int) *Keyring {
	if capacity < 1 {
		capacity = 1
	}
	return &Keyring{entries: make([]Entry, 0, capacity)}
}

// FromKey wraps a single key in a fresh keyring, with both timestamps
// set to the current time.
func FromKey(key *crypto.Key) *Keyring {
	ring := New(1)
	ring.Add(0, 0, key)
	return ring
}

// Add appends a copy of key with the given creation and valid-after
// times. Either timestamp may be zero, meaning the current time.
func (r *Keyring) Add(creation, validAfter int64, key *crypto.Key) {
	now := webauth.NowUnix()
	if creation == 0 {
		creation = now
	}
	if validAfter == 0 {
		validAfter = now
	}
	r.entries = append(r.entries, Entry{
		Creation:   creation,
		ValidAfter: validAfter,
		Key:        key.Copy(),
	})
}

// Remove deletes the entry at position n, shifting later entries down.
func (r *Keyring) Remove(n int) error {
	if n < 0 || n >= len(r.entries) {
		return webauth.New(webauth.CodeNotFound, "keyring index %d out of range", n)
	}
	r.entries = append(r.entries[:n], r.entries[n+1:]...)
	return nil
}

// Len returns the number of entries on the ring.
func (r *Keyring) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entries returns the ring's entries in insertion order. The slice and
// the keys it references are shared with the ring and must be treated as
// read-only.
func (r *Keyring) Entries() []Entry {
	return r.entries
}

// BestKey returns the most appropriate key for the given usage.
//
// For encryption the hint is ignored and the mature key (valid_after at
// or before now) with the greatest valid-after time wins. For decryption
// the hint is the creation time of the token being opened, and the mature
// key with the greatest valid-after time not exceeding the hint wins: the
// key that was newest when the token was made. In both directions a tie
// on valid-after goes to the later entry.
func (r *Keyring) BestKey(usage KeyUsage, hint int64) (*crypto.Key, error) {
	now := webauth.NowUnix()
	var best *Entry
	for i := range r.entries {
		entry := &r.entries[i]
		valid := entry.ValidAfter
		if valid > now {
			continue
		}
		if usage == UsageEncrypt {
			if best == nil || valid >= best.ValidAfter {
				best = entry
			}
		} else {
			if hint >= valid && (best == nil || valid >= best.ValidAfter) {
				best = entry
			}
		}
	}
	if best == nil {
		logrus.WithFields(logrus.Fields{
			"function": "BestKey",
			"package":  "keyring",
			"entries":  len(r.entries),
			"usage":    int(usage),
		}).Debug("no valid keys found")
		return nil, webauth.New(webauth.CodeNotFound, "no valid keys found")
	}
	return best.Key, nil
}
