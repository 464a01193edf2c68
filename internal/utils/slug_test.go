package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":              "hello-world",
		"  Go: The Good Parts!  ":  "go-the-good-parts",
		"already-slugged":          "already-slugged",
		"Multiple   Spaces":        "multiple-spaces",
		"Ümlauts änd Áccents":      "ümlauts-änd-áccents",
		"100% JWT & Sessions":      "100-jwt-sessions",
		"":                         "",
		"!!!":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestRandomUsername(t *testing.T) {
	a, err := RandomUsername()
	require.NoError(t, err)
	b, err := RandomUsername()
	require.NoError(t, err)

	assert.Len(t, a, len("user_")+8)
	assert.NotEqual(t, a, b)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("validpass1", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "validpass1"))
	assert.False(t, VerifyPassword(hash, "wrongpass"))
}
