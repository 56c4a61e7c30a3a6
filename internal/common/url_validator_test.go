package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTargetURL(t *testing.T) {
	valid := []string{
		"https://example.org/guides/alpha",
		"http://forum.example.org/q/42",
		"  https://example.org  ",
	}
	for _, raw := range valid {
		assert.NoError(t, ValidateTargetURL(raw), raw)
	}

	invalid := []string{
		"",
		"/guides/alpha",
		"example.org/guides",
		"ftp://example.org/file",
		"https://",
	}
	for _, raw := range invalid {
		assert.ErrorIs(t, ValidateTargetURL(raw), ErrInvalidInput, raw)
	}
}
