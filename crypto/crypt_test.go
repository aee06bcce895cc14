package crypto

import (
	"bytes"
	"crypto/aes"
	"testing"

	"github.com/opd-ai/webauth"
)

func testKey(t *testing.T, length int) *Key {
	t.Helper()
	key, err := RandomKey(KeyTypeAES, length)
	if err != nil {
		t.Fatalf("RandomKey() error: %v", err)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		keyLength int
		plaintext []byte
	}{
		{"empty payload AES-128", AES128, nil},
		{"short payload AES-128", AES128, []byte("hello")},
		{"block-aligned payload", AES128, bytes.Repeat([]byte{0x5A}, 32)},
		{"large payload AES-192", AES192, bytes.Repeat([]byte("attr=value;"), 500)},
		{"binary payload AES-256", AES256, []byte{0, 1, 2, ';', '\\', 0xFF}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key := testKey(t, tc.keyLength)
			sealed, err := Encrypt(key, tc.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}

			wantLen := HintSize + nonceSize + macSize +
				(len(tc.plaintext)/aes.BlockSize+1)*aes.BlockSize
			if len(sealed) != wantLen {
				t.Errorf("Encrypt() envelope length = %d, want %d", len(sealed), wantLen)
			}

			hint := key.Hint()
			if !bytes.Equal(sealed[:HintSize], hint[:]) {
				t.Error("Encrypt() envelope does not start with the key hint")
			}

			opened, err := Decrypt(key, sealed)
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if !bytes.Equal(opened, tc.plaintext) {
				t.Errorf("round trip mismatch: got %q, want %q", opened, tc.plaintext)
			}
		})
	}
}

func TestEncryptFreshNonce(t *testing.T) {
	t.Parallel()

	key := testKey(t, AES128)
	a, err := Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	b, err := Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Equal(a[HintSize:HintSize+nonceSize], b[HintSize:HintSize+nonceSize]) {
		t.Error("two Encrypt() calls reused a nonce")
	}
	if bytes.Equal(a, b) {
		t.Error("two Encrypt() calls produced identical envelopes")
	}
}

func TestDecryptRejectsEveryBitFlip(t *testing.T) {
	t.Parallel()

	key := testKey(t, AES128)
	sealed, err := Encrypt(key, []byte("integrity matters"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	for i := 0; i < len(sealed)*8; i++ {
		flipped := append([]byte(nil), sealed...)
		flipped[i/8] ^= 1 << (i % 8)
		if _, err := Decrypt(key, flipped); err == nil {
			t.Fatalf("Decrypt() accepted envelope with bit %d flipped", i)
		} else if code := webauth.CodeOf(err); code != webauth.CodeBadHMAC && code != webauth.CodeCorrupt {
			t.Fatalf("Decrypt() with bit %d flipped: code = %v, want CodeBadHMAC or CodeCorrupt", i, code)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	t.Parallel()

	key := testKey(t, AES128)
	sealed, err := Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	other := testKey(t, AES128)
	if _, err := Decrypt(other, sealed); webauth.CodeOf(err) != webauth.CodeBadHMAC {
		t.Errorf("Decrypt() with wrong key code = %v, want CodeBadHMAC", webauth.CodeOf(err))
	}
}

func TestDecryptStructurallyMalformed(t *testing.T) {
	t.Parallel()

	key := testKey(t, AES128)
	sealed, err := Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"just a hint", sealed[:HintSize]},
		{"below minimum", sealed[:minEnvelope-1]},
		{"partial block", append(append([]byte(nil), sealed...), 0x00)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decrypt(key, tc.data); webauth.CodeOf(err) != webauth.CodeCorrupt {
				t.Errorf("Decrypt() code = %v, want CodeCorrupt", webauth.CodeOf(err))
			}
		})
	}
}

func TestDecryptRightHintWrongMAC(t *testing.T) {
	t.Parallel()

	key := testKey(t, AES128)
	sealed, err := Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	// Corrupt only the tag; the hint still names the right key.
	sealed[len(sealed)-1] ^= 0xFF
	if _, err := Decrypt(key, sealed); webauth.CodeOf(err) != webauth.CodeBadHMAC {
		t.Errorf("Decrypt() code = %v, want CodeBadHMAC", webauth.CodeOf(err))
	}
}

func TestEncryptInvalidKey(t *testing.T) {
	t.Parallel()

	if _, err := Encrypt(nil, []byte("x")); webauth.CodeOf(err) != webauth.CodeBadKey {
		t.Errorf("Encrypt(nil key) code = %v, want CodeBadKey", webauth.CodeOf(err))
	}
	if _, err := Decrypt(nil, []byte("x")); webauth.CodeOf(err) != webauth.CodeBadKey {
		t.Errorf("Decrypt(nil key) code = %v, want CodeBadKey", webauth.CodeOf(err))
	}
}

func TestHMACKeyDistinctFromAESKey(t *testing.T) {
	t.Parallel()

	key := testKey(t, AES128)
	mk := hmacKeyFor(key)
	if bytes.Equal(mk, key.Material()) || bytes.Contains(key.Material(), mk) {
		t.Error("HMAC key is not distinct from the AES key material")
	}
	if !bytes.Equal(mk, hmacKeyFor(key.Copy())) {
		t.Error("HMAC key derivation is not deterministic")
	}
}
