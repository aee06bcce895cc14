package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe attempts to securely erase the contents of a byte slice
// containing sensitive data. It returns an error if the byte slice is nil.
//
// This function uses subtle.XORBytes to perform a constant-time XOR
// operation that the compiler cannot optimize away. XORing data with
// itself (x XOR x = 0) securely zeros the data.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}
	subtle.XORBytes(data, data, data)

	// Prevent compiler from optimizing out the zeroing
	runtime.KeepAlive(data)

	return nil
}

// ZeroBytes erases the contents of a byte slice containing sensitive data.
// This is a convenience function that ignores the error from SecureWipe.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}

// WipeKey securely erases a key's material. The key must not be used
// afterwards; call it when a key falls out of a keyring or goes out of
// scope.
func WipeKey(k *Key) error {
	if k == nil {
		return errors.New("cannot wipe nil Key")
	}
	return SecureWipe(k.material)
}
