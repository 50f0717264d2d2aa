// internal/utils/helpers.go - shared helper functions
package utils

import (
	"fmt"
	"strings"
)

// MaskToken masks an auth token for log output
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "***" + token[len(token)-4:]
}

// MaskSensitiveURL masks the token query parameter embedded in a URL
func MaskSensitiveURL(url, token string) string {
	if len(token) > 10 {
		masked := MaskToken(token)
		if len(url) > 80 {
			return fmt.Sprintf("URL: %s... (token: %s)", url[:80], masked)
		}
		return fmt.Sprintf("URL: %s (token: %s)", url, masked)
	}
	if len(url) > 80 {
		return url[:80] + "..."
	}
	return url
}
