package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is built once at startup and shared read only by the gateway and
// the poller. Routes maps a microservice name (or a microservice name
// concatenated with a resource name) to the path appended to Address.
type Config struct {
	Address        string            `validate:"required,url"`
	Routes         map[string]string `validate:"required,min=1"`
	PendingMarker  string
	StatusSuffix   string
	PollInterval   time.Duration `validate:"gt=0"`
	PollTimeout    time.Duration `validate:"gte=0"`
	RequestTimeout time.Duration `validate:"gte=0"`
	ConnTimeout    time.Duration `validate:"gte=0"`
	Token          string
}

func (c *Config) Validate() error {
	if c == nil {
		return NewError(KindConfiguration, "validate", "", fmt.Errorf("config must not be nil"))
	}
	if err := validate.Struct(c); err != nil {
		return NewError(KindConfiguration, "validate", "", err)
	}

	return nil
}

// Route resolves the configured path for key. Keys loaded through viper are
// lower cased, so a case-insensitive match is tried after the exact one.
func (c *Config) Route(key string) (string, error) {
	if route, ok := c.Routes[key]; ok {
		return route, nil
	}
	if route, ok := c.Routes[strings.ToLower(key)]; ok {
		return route, nil
	}

	return "", NewError(KindConfiguration, "route", key, fmt.Errorf("no route configured for %q", key))
}

// Pending reports whether a result message ends with the pending marker. An
// empty marker never matches.
func (c *Config) Pending(message string) bool {
	return pending(message, c.PendingMarker)
}

func pending(message string, marker string) bool {
	return marker != "" && strings.HasSuffix(message, marker)
}
