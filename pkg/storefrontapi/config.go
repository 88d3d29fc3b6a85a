package storefrontapi

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5001/api"

// Config represents the configuration for the storefront API client
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5001/api
	BaseURL string

	// Timeout bounds every request. Zero means 15s.
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL has no host", ErrInvalidConfig)
	}
	return nil
}

// Origin returns scheme://host of the base URL. Relative image paths
// served by the API are resolved against it.
func (c *Config) Origin() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func (c *Config) endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
