package main

import (
	"crypto/sha256"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-sweetshop"
)

// AppConfig is loaded by go-config. Empty values fall back to the defaults
// in applyDefaults.
type AppConfig struct {
	Debug       bool               `json:"debug" koanf:"debug"`
	Client      sweetshop.Settings `json:"client" koanf:"client"`
	Server      ServerConfig       `json:"server" koanf:"server"`
	Credentials string             `json:"credentials" koanf:"credentials"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Address     string `json:"address" koanf:"address"`
	CSRFSecret  string `json:"csrf_secret" koanf:"csrf_secret"`
	ViewsDir    string `json:"views_dir" koanf:"views_dir"`
	ReloadViews bool   `json:"reload_views" koanf:"reload_views"`
}

const defaultAddress = ":8572"

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Client: sweetshop.DefaultSettings(),
		Server: ServerConfig{Address: defaultAddress},
	}
}

func (c AppConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Client, validation.By(func(value any) error {
			settings, _ := value.(sweetshop.Settings)
			return validateAPIURL(settings.GetAPIBaseURL())
		})),
		validation.Field(&c.Server),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required),
		validation.Field(&s.CSRFSecret, validation.Length(16, 0)),
	)
}

func (c *AppConfig) applyDefaults() {
	def := DefaultConfig()

	c.Client.APIBaseURL = strings.TrimSpace(c.Client.APIBaseURL)
	if c.Client.APIBaseURL == "" {
		c.Client.APIBaseURL = def.Client.APIBaseURL
	}
	if c.Client.RequestTimeout == "" {
		c.Client.RequestTimeout = def.Client.RequestTimeout
	}
	if c.Client.CookieDuration == "" {
		c.Client.CookieDuration = def.Client.CookieDuration
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
}

func validateAPIURL(raw string) error {
	return validation.Validate(raw, validation.Required, is.URL)
}

// csrfKey derives the 32 byte CSRF signing key. An empty secret yields nil,
// letting the middleware generate a per process key.
func (s ServerConfig) csrfKey() []byte {
	if s.CSRFSecret == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(s.CSRFSecret))
	return sum[:]
}
