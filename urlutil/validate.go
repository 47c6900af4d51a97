package urlutil

import (
	"fmt"
	neturl "net/url"
	"strings"
)

const (
	// MaxURLLength is the RFC 2616 practical limit for URL length
	MaxURLLength = 2048
)

// Validate checks that rawURL is an absolute http:// or https:// URL with a
// host, at most MaxURLLength characters long.
func Validate(rawURL string) error {
	_, err := parse(rawURL)
	return err
}

func parse(rawURL string) (*neturl.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return nil, fmt.Errorf("url exceeds maximum length of %d characters", MaxURLLength)
	}

	parsed, err := neturl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		if parsed.Scheme == "" {
			return nil, fmt.Errorf("url must use http:// or https://")
		}
		return nil, fmt.Errorf("url must use http:// or https://, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("url missing host/domain")
	}
	return parsed, nil
}

// ValidateHTTPSOnly enforces HTTPS. Plain HTTP is allowed for localhost
// (127.0.0.1, ::1, localhost) so that local registries keep working.
func ValidateHTTPSOnly(rawURL string) error {
	parsed, err := parse(rawURL)
	if err != nil {
		return err
	}
	if parsed.Scheme == "https" || isLocalhost(parsed.Hostname()) {
		return nil
	}
	return fmt.Errorf("url must use https:// (http:// only allowed for localhost)")
}

// ValidateRegistry checks an npm registry URL: HTTPS (or localhost HTTP) with
// no embedded credentials, query or fragment. Credentials belong in .npmrc,
// not on a command line that is logged.
func ValidateRegistry(rawURL string) error {
	if err := ValidateHTTPSOnly(rawURL); err != nil {
		return err
	}
	parsed, _ := neturl.Parse(strings.TrimSpace(rawURL))
	if parsed.User != nil {
		return fmt.Errorf("registry url must not embed credentials")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("registry url must not have a query or fragment")
	}
	return nil
}

// isLocalhost checks if the hostname is a localhost address
func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1"
}
