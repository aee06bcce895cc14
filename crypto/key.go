package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/webauth"
)

// KeyType identifies the algorithm a key is used with. The only type
// currently defined is AES.
type KeyType uint32

// KeyTypeAES is the key type stored in keyring files for AES keys.
const KeyTypeAES KeyType = 1

// Valid AES key lengths in bytes.
const (
	AES128 = 16
	AES192 = 24
	AES256 = 32
)

// HintSize is the length of the advisory key fingerprint embedded in the
// token envelope.
const HintSize = 4

// Key is an immutable symmetric key. The key material is private to this
// module; it can be read through Material for persistence and encryption
// but is never logged.
type Key struct {
	typ      KeyType
	material []byte
}

// NewKey creates a key of the given type from existing material. The
// material is copied; the caller keeps ownership of its slice. The
// material length selects the AES variant and must be 16, 24, or 32
// bytes.
func NewKey(typ KeyType, material []byte) (*Key, error) {
	if typ != KeyTypeAES {
		return nil, webauth.New(webauth.CodeBadKey, "unsupported key type %d", typ)
	}
	switch len(material) {
	case AES128, AES192, AES256:
	default:
		return nil, webauth.New(webauth.CodeBadKey,
			"invalid AES key length %d", len(material))
	}
	return &Key{typ: typ, material: append([]byte(nil), material...)}, nil
}

// RandomKey generates a fresh key of the given type and length from the
// system CSPRNG.
func RandomKey(typ KeyType, length int) (*Key, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function":   "RandomKey",
		"package":    "crypto",
		"key_length": length,
	})
	logger.Debug("generating random key")

	if typ != KeyTypeAES {
		return nil, webauth.New(webauth.CodeBadKey, "unsupported key type %d", typ)
	}
	switch length {
	case AES128, AES192, AES256:
	default:
		return nil, webauth.New(webauth.CodeBadKey, "invalid AES key length %d", length)
	}
	material := make([]byte, length)
	if _, err := rand.Read(material); err != nil {
		logger.WithField("error", err.Error()).Error("CSPRNG unavailable")
		return nil, webauth.Wrap(err, webauth.CodeRandFailure,
			"generating %d random key bytes", length)
	}
	return &Key{typ: typ, material: material}, nil
}

// Type returns the key's algorithm type.
func (k *Key) Type() KeyType { return k.typ }

// Length returns the key length in bytes.
func (k *Key) Length() int { return len(k.material) }

// Material returns the raw key material. It exists for persistence and
// encryption; callers must not modify, log, or transmit it.
func (k *Key) Material() []byte { return k.material }

// Copy returns an independent copy of the key.
func (k *Key) Copy() *Key {
	return &Key{typ: k.typ, material: append([]byte(nil), k.material...)}
}

// Equal reports whether two keys have the same type and material. The
// material comparison is constant time.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.typ != other.typ || len(k.material) != len(other.material) {
		return false
	}
	return subtle.ConstantTimeCompare(k.material, other.material) == 1
}

// valid reports whether the key can be used for encryption.
func (k *Key) valid() bool {
	if k == nil || k.typ != KeyTypeAES {
		return false
	}
	switch len(k.material) {
	case AES128, AES192, AES256:
		return true
	}
	return false
}

// Hint returns the advisory fingerprint of the key embedded in token
// envelopes: the first 4 bytes of the SHA-256 digest of the material.
// It is a one-way function of the key and safe to expose.
func (k *Key) Hint() [HintSize]byte {
	var hint [HintSize]byte
	digest := sha256.Sum256(k.material)
	copy(hint[:], digest[:HintSize])
	return hint
}
