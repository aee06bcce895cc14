package token

import (
	"encoding/base64"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/webauth"
	"github.com/opd-ai/webauth/attrs"
	"github.com/opd-ai/webauth/crypto"
	"github.com/opd-ai/webauth/keyring"
)

// typeAttr carries the token kind inside the attribute stream. It is
// kept separate from the per-kind records so decoders can determine the
// kind before choosing a record type.
type typeAttr struct {
	Type string `attr:"t"`
}

// EncodeRaw validates tok, serializes it, and seals it with the newest
// mature key on ring, returning the binary token envelope. A zero
// creation time on the record is replaced with the current time.
func EncodeRaw(tok Token, ring *keyring.Keyring) ([]byte, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "EncodeRaw",
		"package":  "token",
	})

	if ring.Len() == 0 {
		return nil, webauth.New(webauth.CodeBadKey,
			"keyring is nil or empty while encoding token")
	}
	if tok == nil {
		return nil, webauth.New(webauth.CodeInvalid, "cannot encode nil token")
	}
	kind := tok.Kind()
	logger = logger.WithField("kind", kind.String())

	if err := tok.check(modeEncode); err != nil {
		logger.WithField("error", err.Error()).Debug("token failed validation")
		return nil, err
	}

	tok.stamp(webauth.NowUnix())
	head, err := attrs.Marshal(typeAttr{Type: kind.String()})
	if err != nil {
		return nil, err
	}
	body, err := attrs.Marshal(tok)
	if err != nil {
		return nil, err
	}

	key, err := ring.BestKey(keyring.UsageEncrypt, 0)
	if err != nil {
		return nil, err
	}
	sealed, err := crypto.Encrypt(key, append(head, body...))
	if err != nil {
		return nil, err
	}
	logger.WithField("token_size", len(sealed)).Debug("token encoded")
	return sealed, nil
}

// Encode is EncodeRaw plus base64 wrapping for contexts that need
// printable ASCII, such as cookies and URLs.
func Encode(tok Token, ring *keyring.Keyring) (string, error) {
	raw, err := EncodeRaw(tok, ring)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeRaw opens a binary token envelope, checks it against the
// expected kind (which may be Any), and validates the decoded record,
// rejecting expired tokens.
func DecodeRaw(data []byte, expect Type, ring *keyring.Keyring) (Token, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "DecodeRaw",
		"package":  "token",
		"expect":   expect.String(),
	})

	if expect != Any && typeNames[expect] == "" {
		return nil, webauth.New(webauth.CodeInvalid, "unknown token type %d", int(expect))
	}

	plaintext, err := decrypt(data, ring)
	if err != nil {
		return nil, err
	}

	var head typeAttr
	if err := attrs.Unmarshal(plaintext, &head); err != nil {
		return nil, err
	}
	kind := ParseType(head.Type)
	tok := newToken(kind)
	if tok == nil {
		return nil, webauth.New(webauth.CodeCorrupt,
			"unknown token type %q in token", head.Type)
	}
	if err := attrs.Unmarshal(plaintext, tok); err != nil {
		return nil, err
	}

	if expect != Any && kind != expect {
		logger.WithField("kind", kind.String()).Debug("token type mismatch")
		return nil, webauth.New(webauth.CodeCorrupt,
			"wrong token type %s, expected %s", kind, expect)
	}
	if err := tok.check(modeDecode); err != nil {
		return nil, err
	}
	logger.WithField("kind", kind.String()).Debug("token decoded")
	return tok, nil
}

// Decode unwraps a base64 token and decodes it. Trailing whitespace is
// tolerated and stripped; anything else must be valid RFC 4648 base64.
func Decode(encoded string, expect Type, ring *keyring.Keyring) (Token, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimRight(encoded, " \t\r\n"))
	if err != nil {
		return nil, webauth.Wrap(err, webauth.CodeCorrupt, "invalid base64 in token")
	}
	return DecodeRaw(raw, expect, ring)
}

// decrypt opens the envelope with the keyring: the entry whose key hint
// matches the envelope is tried first, then every other entry in order.
// Only when every key fails authentication is the failure reported, as
// CodeBadHMAC. The hint is advisory; valid-after times may have been set
// laxly, so no key is skipped outright.
func decrypt(data []byte, ring *keyring.Keyring) ([]byte, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "decrypt",
		"package":  "token",
		"entries":  ring.Len(),
	})

	if ring.Len() == 0 {
		return nil, webauth.New(webauth.CodeBadKey,
			"keyring is nil or empty while decoding token")
	}
	if len(data) < crypto.HintSize {
		return nil, webauth.New(webauth.CodeCorrupt,
			"token too short: %d bytes", len(data))
	}
	var hint [crypto.HintSize]byte
	copy(hint[:], data[:crypto.HintSize])

	entries := ring.Entries()
	order := make([]*crypto.Key, 0, len(entries))
	for i := range entries {
		if entries[i].Key.Hint() == hint {
			order = append(order, entries[i].Key)
		}
	}
	hinted := len(order)
	for i := range entries {
		if entries[i].Key.Hint() != hint {
			order = append(order, entries[i].Key)
		}
	}

	for i, key := range order {
		plaintext, err := crypto.Decrypt(key, data)
		if err == nil {
			if i >= hinted {
				logger.Debug("token decrypted by a key other than the hinted one")
			}
			return plaintext, nil
		}
		// Structural damage looks the same under every key.
		if webauth.CodeOf(err) == webauth.CodeCorrupt {
			return nil, err
		}
	}
	logger.Debug("no key on the ring authenticates the token")
	return nil, webauth.New(webauth.CodeBadHMAC,
		"token could not be decrypted with any key on the ring")
}
