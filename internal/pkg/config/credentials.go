package config

import (
	"strings"

	"github.com/spf13/viper"
)

// APIKeyEnv is the environment variable holding the OpenTopography API key.
const APIKeyEnv = "OPENTOPOGRAPHY_API_KEY"

// Credentials reads the elevation API key from the environment on every call,
// so a key exported after startup (or removed) is picked up by the next
// download attempt.
type Credentials struct {
	v *viper.Viper
}

// NewCredentials binds the API key to OPENTOPOGRAPHY_API_KEY, falling back to
// DEMFETCH_API_KEY.
func NewCredentials() *Credentials {
	v := viper.New()
	_ = v.BindEnv("api_key", APIKeyEnv, "DEMFETCH_API_KEY")
	return &Credentials{v: v}
}

// APIKey returns the trimmed key, or "" when unset.
func (c *Credentials) APIKey() string {
	return strings.TrimSpace(c.v.GetString("api_key"))
}
