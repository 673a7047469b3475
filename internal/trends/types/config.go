package types

type ProviderID string

const (
	ProviderGoogle ProviderID = "google"
	ProviderRelay  ProviderID = "relay"
)

// ProviderConfig represents trend provider configuration
type ProviderConfig struct {
	ID   ProviderID `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`

	// API settings
	APIHost string `json:"api_host" yaml:"api_host"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Google widget API settings
	HL string `json:"hl,omitempty" yaml:"hl,omitempty"` // UI language, e.g. "en-US"
	TZ int    `json:"tz,omitempty" yaml:"tz,omitempty"` // timezone offset in minutes

	// Optional settings
	Timeout    int `json:"timeout,omitempty" yaml:"timeout,omitempty"`         // seconds
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"` // default: 3
}

// Validate validates the provider configuration
func (c *ProviderConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidProviderID
	}
	if c.Name == "" {
		return ErrInvalidProviderName
	}
	if c.APIHost == "" {
		return ErrInvalidAPIHost
	}

	// Provider-specific validation
	switch c.ID {
	case ProviderRelay:
		// Relay endpoints are key-protected
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	default:
		// Google widget API is anonymous
	}

	return nil
}
