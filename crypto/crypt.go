package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/hkdf"

	"github.com/opd-ai/webauth"
)

const (
	nonceSize = 16
	macSize   = sha1.Size
	// minEnvelope is the smallest well-formed envelope: hint, nonce, one
	// cipher block, and the tag.
	minEnvelope = HintSize + nonceSize + aes.BlockSize + macSize
)

// hmacInfo is the HKDF info string separating the MAC key from the
// encryption key.
var hmacInfo = []byte("webauth token hmac key")

// hmacKeyFor derives the HMAC-SHA1 key from the AES key material. The
// derivation is deterministic so both parties compute the same MAC key,
// and distinct from the AES key so the material is never used by two
// primitives.
func hmacKeyFor(k *Key) []byte {
	mk := make([]byte, macSize)
	r := hkdf.New(sha256.New, k.material, nil, hmacInfo)
	if _, err := io.ReadFull(r, mk); err != nil {
		// HKDF over SHA-256 cannot fail for a 20-byte request.
		panic(err)
	}
	return mk
}

// Encrypt seals plaintext under key using the WebAuth token envelope:
// key hint, random nonce, AES-CBC ciphertext with PKCS#7 padding, and an
// HMAC-SHA1 tag over all preceding bytes.
func Encrypt(key *Key, plaintext []byte) ([]byte, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function":       "Encrypt",
		"package":        "crypto",
		"plaintext_size": len(plaintext),
	})
	logger.Debug("sealing payload")

	if !key.valid() {
		logger.WithField("error_type", "validation_failed").Error("invalid encryption key")
		return nil, webauth.New(webauth.CodeBadKey, "invalid key for encryption")
	}

	block, err := aes.NewCipher(key.material)
	if err != nil {
		return nil, webauth.Wrap(err, webauth.CodeBadKey, "creating AES cipher")
	}

	padded := pad(plaintext)
	out := make([]byte, HintSize+nonceSize+len(padded)+macSize)

	hint := key.Hint()
	copy(out[:HintSize], hint[:])

	nonce := out[HintSize : HintSize+nonceSize]
	if _, err := rand.Read(nonce); err != nil {
		logger.WithField("error", err.Error()).Error("CSPRNG unavailable")
		return nil, webauth.Wrap(err, webauth.CodeRandFailure, "generating nonce")
	}

	body := out[HintSize+nonceSize : HintSize+nonceSize+len(padded)]
	cipher.NewCBCEncrypter(block, nonce).CryptBlocks(body, padded)

	mk := hmacKeyFor(key)
	defer ZeroBytes(mk)
	mac := hmac.New(sha1.New, mk)
	mac.Write(out[:HintSize+nonceSize+len(padded)])
	copy(out[HintSize+nonceSize+len(padded):], mac.Sum(nil))

	logger.WithFields(logrus.Fields{
		"envelope_size": len(out),
	}).Debug("payload sealed")
	return out, nil
}

// Decrypt opens a token envelope sealed with Encrypt. The HMAC tag is
// verified in constant time before any decryption happens. Structural
// problems report CodeCorrupt; an authentication failure, including any
// single flipped bit, reports CodeBadHMAC.
func Decrypt(key *Key, data []byte) ([]byte, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function":      "Decrypt",
		"package":       "crypto",
		"envelope_size": len(data),
	})
	logger.Debug("opening envelope")

	if !key.valid() {
		return nil, webauth.New(webauth.CodeBadKey, "invalid key for decryption")
	}
	if len(data) < minEnvelope {
		return nil, webauth.New(webauth.CodeCorrupt,
			"envelope too short: %d bytes", len(data))
	}
	body := data[HintSize+nonceSize : len(data)-macSize]
	if len(body)%aes.BlockSize != 0 {
		return nil, webauth.New(webauth.CodeCorrupt,
			"ciphertext length %d is not a multiple of the cipher block size", len(body))
	}

	mk := hmacKeyFor(key)
	defer ZeroBytes(mk)
	mac := hmac.New(sha1.New, mk)
	mac.Write(data[:len(data)-macSize])
	if !hmac.Equal(mac.Sum(nil), data[len(data)-macSize:]) {
		logger.Debug("HMAC verification failed")
		return nil, webauth.New(webauth.CodeBadHMAC, "token HMAC verification failed")
	}

	block, err := aes.NewCipher(key.material)
	if err != nil {
		return nil, webauth.Wrap(err, webauth.CodeBadKey, "creating AES cipher")
	}
	nonce := data[HintSize : HintSize+nonceSize]
	padded := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, nonce).CryptBlocks(padded, body)

	plaintext, err := unpad(padded)
	if err != nil {
		return nil, err
	}
	logger.WithField("plaintext_size", len(plaintext)).Debug("envelope opened")
	return plaintext, nil
}

// pad applies PKCS#7 padding to a full block multiple.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpad strips PKCS#7 padding. The envelope MAC has already been
// verified when this runs, so a padding error means real corruption, not
// an attacker-controlled oracle.
func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, webauth.New(webauth.CodeCorrupt, "empty padded plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, webauth.New(webauth.CodeCorrupt, "invalid padding length %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, webauth.New(webauth.CodeCorrupt, "inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
