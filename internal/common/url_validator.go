package common

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateTargetURL checks that a stored target URL is absolute http(s)
// with a host. Relative paths are rejected; they break when reports
// are consumed outside the forum's own domain.
func ValidateTargetURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("target url %q: %w", raw, ErrInvalidInput)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("target url %q must be absolute http(s): %w", raw, ErrInvalidInput)
	}
	return nil
}
