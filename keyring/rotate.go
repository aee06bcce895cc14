package keyring

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/webauth"
	"github.com/opd-ai/webauth/crypto"
)

// Outcome reports what AutoUpdate did to the keyring file.
type Outcome int

const (
	// OutcomeNone means the existing ring was fresh enough.
	OutcomeNone Outcome = iota
	// OutcomeCreate means no file existed and a new ring was created.
	OutcomeCreate
	// OutcomeUpdate means a new key was appended to an aging ring.
	OutcomeUpdate
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCreate:
		return "create"
	case OutcomeUpdate:
		return "update"
	}
	return "unknown"
}

// Status is the secondary result of AutoUpdate: what happened, and
// whether a rotation rewrite failed. A rewrite failure does not fail the
// call, since the in-memory ring is still usable; callers that need the
// file current must check WriteErr.
type Status struct {
	Outcome  Outcome
	WriteErr error
}

// AutoUpdate reads the keyring at path, bringing it into existence or up
// to date as needed.
//
// If the file is missing and createMissing is set, a new ring holding a
// single random AES-128 key is created and written. If the file exists
// and its newest key's valid-after time is lifetime or more in the past,
// a random AES-128 key is appended and the file rewritten. The returned
// ring always reflects the in-memory result of these steps, even when
// the rotation rewrite fails.
func AutoUpdate(path string, createMissing bool, lifetime time.Duration) (*Keyring, Status, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "AutoUpdate",
		"package":  "keyring",
		"path":     path,
	})

	ring, err := Read(path)
	if err != nil {
		if webauth.CodeOf(err) != webauth.CodeFileNotFound || !createMissing {
			return nil, Status{}, err
		}
		ring, err = createRing(path)
		if err != nil {
			// The in-memory ring is returned even when the write failed;
			// a caller may choose to proceed without the file.
			logger.WithField("error", err.Error()).Error("cannot create keyring")
			return ring, Status{Outcome: OutcomeCreate}, err
		}
		logger.Info("created new keyring")
		return ring, Status{Outcome: OutcomeCreate}, nil
	}

	var newest int64
	for _, entry := range ring.Entries() {
		if entry.ValidAfter > newest {
			newest = entry.ValidAfter
		}
	}
	now := webauth.NowUnix()
	if now-newest < int64(lifetime/time.Second) {
		return ring, Status{Outcome: OutcomeNone}, nil
	}

	key, err := crypto.RandomKey(crypto.KeyTypeAES, crypto.AES128)
	if err != nil {
		return nil, Status{}, err
	}
	ring.Add(now, now, key)
	logger.WithField("entries", ring.Len()).Info("rotated keyring")

	status := Status{Outcome: OutcomeUpdate}
	if err := ring.Write(path); err != nil {
		// The rewrite failure must not mask the in-memory rotation.
		logger.WithField("error", err.Error()).Warn("keyring rotated in memory but not rewritten")
		status.WriteErr = err
	}
	return ring, status, nil
}

// createRing builds a fresh single-key ring and writes it to path. The
// ring is returned even when the write fails.
func createRing(path string) (*Keyring, error) {
	key, err := crypto.RandomKey(crypto.KeyTypeAES, crypto.AES128)
	if err != nil {
		return nil, err
	}
	now := webauth.NowUnix()
	ring := New(1)
	ring.Add(now, now, key)
	return ring, ring.Write(path)
}
