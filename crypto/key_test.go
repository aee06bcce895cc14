package crypto

import (
	"bytes"
	"testing"

	"github.com/opd-ai/webauth"
)

func TestNewKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		typ       KeyType
		length    int
		wantError bool
	}{
		{"AES-128", KeyTypeAES, 16, false},
		{"AES-192", KeyTypeAES, 24, false},
		{"AES-256", KeyTypeAES, 32, false},
		{"too short", KeyTypeAES, 15, true},
		{"too long", KeyTypeAES, 33, true},
		{"empty", KeyTypeAES, 0, true},
		{"unknown type", KeyType(9), 16, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			material := bytes.Repeat([]byte{0xAB}, tc.length)
			key, err := NewKey(tc.typ, material)

			if tc.wantError {
				if err == nil {
					t.Fatal("NewKey() expected error but got nil")
				}
				if code := webauth.CodeOf(err); code != webauth.CodeBadKey {
					t.Errorf("NewKey() code = %v, want CodeBadKey", code)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewKey() unexpected error: %v", err)
			}
			if key.Type() != KeyTypeAES || key.Length() != tc.length {
				t.Errorf("NewKey() type/length = %d/%d, want %d/%d",
					key.Type(), key.Length(), KeyTypeAES, tc.length)
			}

			// The material must be copied, not aliased.
			material[0] ^= 0xFF
			if key.Material()[0] == material[0] {
				t.Error("NewKey() aliased the caller's material slice")
			}
		})
	}
}

func TestRandomKey(t *testing.T) {
	t.Parallel()

	key, err := RandomKey(KeyTypeAES, AES128)
	if err != nil {
		t.Fatalf("RandomKey() error: %v", err)
	}
	if key.Length() != AES128 {
		t.Errorf("RandomKey() length = %d, want %d", key.Length(), AES128)
	}
	if bytes.Equal(key.Material(), make([]byte, AES128)) {
		t.Error("RandomKey() returned zero key material")
	}

	key2, err := RandomKey(KeyTypeAES, AES128)
	if err != nil {
		t.Fatalf("RandomKey() error: %v", err)
	}
	if key.Equal(key2) {
		t.Error("two RandomKey() calls produced identical keys")
	}

	if _, err := RandomKey(KeyTypeAES, 17); webauth.CodeOf(err) != webauth.CodeBadKey {
		t.Errorf("RandomKey(17) code = %v, want CodeBadKey", webauth.CodeOf(err))
	}
}

func TestKeyEqualAndCopy(t *testing.T) {
	t.Parallel()

	key, err := RandomKey(KeyTypeAES, AES256)
	if err != nil {
		t.Fatalf("RandomKey() error: %v", err)
	}
	dup := key.Copy()
	if !key.Equal(dup) {
		t.Error("Copy() is not Equal() to the original")
	}

	dup.material[0] ^= 0x01
	if key.Equal(dup) {
		t.Error("Equal() true for different material")
	}

	var nilKey *Key
	if key.Equal(nilKey) || nilKey.Equal(key) {
		t.Error("Equal() true against nil key")
	}
	if !nilKey.Equal(nil) {
		t.Error("nil keys should compare equal")
	}
}

func TestKeyHint(t *testing.T) {
	t.Parallel()

	key, err := NewKey(KeyTypeAES, bytes.Repeat([]byte{0x42}, 16))
	if err != nil {
		t.Fatalf("NewKey() error: %v", err)
	}

	// Deterministic for the same material.
	if key.Hint() != key.Copy().Hint() {
		t.Error("Hint() differs between identical keys")
	}

	other, err := NewKey(KeyTypeAES, bytes.Repeat([]byte{0x43}, 16))
	if err != nil {
		t.Fatalf("NewKey() error: %v", err)
	}
	if key.Hint() == other.Hint() {
		t.Error("Hint() identical for different keys")
	}

	// The hint must not be a prefix of the material.
	hint := key.Hint()
	if bytes.Equal(hint[:], key.Material()[:HintSize]) {
		t.Error("Hint() leaks raw key material")
	}
}

func TestWipeKey(t *testing.T) {
	t.Parallel()

	key, err := RandomKey(KeyTypeAES, AES128)
	if err != nil {
		t.Fatalf("RandomKey() error: %v", err)
	}
	if err := WipeKey(key); err != nil {
		t.Fatalf("WipeKey() error: %v", err)
	}
	if !bytes.Equal(key.Material(), make([]byte, AES128)) {
		t.Error("WipeKey() left key material intact")
	}

	if err := WipeKey(nil); err == nil {
		t.Error("WipeKey(nil) expected error")
	}
	if err := SecureWipe(nil); err == nil {
		t.Error("SecureWipe(nil) expected error")
	}
}
