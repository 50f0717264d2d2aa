package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "****", MaskToken("abcd"), "short tokens fully masked")
	assert.Equal(t, "abcd***wxyz", MaskToken("abcdefgstuvwxyz"))
	assert.NotContains(t, MaskToken("tok-1234567890-secret"), "1234567890")
}

func TestMaskSensitiveURL(t *testing.T) {
	masked := MaskSensitiveURL("https://api.passbi.sn/user", "tok-1234567890")
	assert.Contains(t, masked, "https://api.passbi.sn/user")
	assert.NotContains(t, masked, "tok-1234567890")

	long := "https://api.passbi.sn/" + strings.Repeat("x", 100)
	assert.LessOrEqual(t, len(MaskSensitiveURL(long, "")), 84)
}
