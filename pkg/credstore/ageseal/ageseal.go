// Package ageseal is the production credstore.Protector: it seals
// plaintext API keys behind an X25519 identity using filippo.io/age,
// following the same key-file layout and ENC[age:...] envelope the
// secrets manager in the wider example pack uses.
package ageseal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

const (
	encPrefix = "ENC[age:"
	encSuffix = "]"
)

// Protector seals/unseals credential-store secrets with a single
// X25519 identity held in memory.
type Protector struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// GenerateIdentityFile creates an X25519 key pair at path with 0o600
// permissions. It is idempotent: if the file already exists, it is
// left untouched.
func GenerateIdentityFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generate age identity: %w", err)
	}

	content := fmt.Sprintf("# created by deliberate\n# public key: %s\n%s\n",
		identity.Recipient().String(), identity.String())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write age key: %w", err)
	}
	return nil
}

// LoadFromFile reads an age identity from path and returns a Protector
// bound to it.
func LoadFromFile(path string) (*Protector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open age key: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse age identities: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", path)
	}
	id, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("unexpected identity type in %s", path)
	}
	return &Protector{identity: id, recipient: id.Recipient()}, nil
}

// Seal encrypts plaintext for this Protector's own recipient and
// returns a self-describing ENC[age:...] blob.
func (p *Protector) Seal(plaintext string) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, p.recipient)
	if err != nil {
		return "", fmt.Errorf("age encrypt init: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("age encrypt write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("age encrypt close: %w", err)
	}
	return encPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()) + encSuffix, nil
}

// Unseal decrypts an ENC[age:...] blob produced by Seal.
func (p *Protector) Unseal(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", fmt.Errorf("not an age-sealed blob")
	}
	encoded := sealed[len(encPrefix) : len(sealed)-len(encSuffix)]
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), p.identity)
	if err != nil {
		return "", fmt.Errorf("age decrypt: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read decrypted: %w", err)
	}
	return string(plain), nil
}

// IsSealed reports whether s looks like an ENC[age:...] blob.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, encPrefix) && strings.HasSuffix(s, encSuffix)
}
