package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies the wire dialect a ConfiguredModel speaks.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAzure     Provider = "azure"
	ProviderXAI       Provider = "xai"
	ProviderGoogle    Provider = "google"
	ProviderAnthropic Provider = "anthropic"
)

// IsImplemented reports whether a Provider Adapter exists for this tag.
func (p Provider) IsImplemented() bool {
	switch p {
	case ProviderOpenAI, ProviderAzure, ProviderXAI:
		return true
	default:
		return false
	}
}

// ConfiguredModel is a user's endpoint+key binding for a model name.
// EncryptedKey is the sealed form; the unsealed key exists only in the
// transient credstore.Resolved value returned by Store.Resolve and is
// never persisted.
type ConfiguredModel struct {
	ID           uuid.UUID `json:"id"`
	UserEmail    string    `json:"userEmail"`
	ModelName    string    `json:"modelName"`
	DisplayName  string    `json:"displayName,omitempty"`
	Endpoint     string    `json:"endpoint"`
	Provider     Provider  `json:"provider"`
	EncryptedKey string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSettings is a thin per-user preference row.
type UserSettings struct {
	UserID             string  `json:"userId"`
	NativeAgentModelID *string `json:"nativeAgentModelId,omitempty"`
}
