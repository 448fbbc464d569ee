package credstore

// Protector is the Credential Store's narrow sealing boundary. The
// store depends only on this interface; it never imports a concrete
// crypto library directly. See ageseal for the production
// implementation.
type Protector interface {
	Seal(plaintext string) (string, error)
	Unseal(sealed string) (string, error)
}
