package credstore

import "errors"

// Sentinel errors returned by the Credential Store, matched with
// errors.Is at the service and API boundaries.
var (
	ErrNotFound  = errors.New("credstore: model not found")
	ErrConflict  = errors.New("credstore: model name already configured for user")
)

// CryptoError wraps a sealing or unsealing failure. It never embeds
// the plaintext or ciphertext it failed on.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string { return "credstore: " + e.Op + ": " + e.Err.Error() }
func (e *CryptoError) Unwrap() error { return e.Err }
