package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec(Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err)
	return c
}

func TestNewCodec_MissingSecret(t *testing.T) {
	_, err := NewCodec(Config{AccessSecret: []byte("a")})
	assert.ErrorIs(t, err, ErrNoSigningKey)

	_, err = NewCodec(Config{RefreshSecret: []byte("r")})
	assert.ErrorIs(t, err, ErrNoSigningKey)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := testCodec(t, time.Minute, time.Hour)

	for _, p := range []Purpose{PurposeAccess, PurposeRefresh} {
		tok, exp, err := c.Issue(42, p)
		require.NoError(t, err)
		assert.True(t, exp.After(time.Now()))

		sub, err := c.Verify(tok, p)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), sub)
	}
}

func TestVerify_Expired(t *testing.T) {
	c := testCodec(t, -time.Second, time.Hour)

	tok, _, err := c.Issue(7, PurposeAccess)
	require.NoError(t, err)

	_, err = c.Verify(tok, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_PurposeIsolation(t *testing.T) {
	c := testCodec(t, time.Minute, time.Hour)

	access, _, err := c.Issue(1, PurposeAccess)
	require.NoError(t, err)
	refresh, _, err := c.Issue(1, PurposeRefresh)
	require.NoError(t, err)

	// A refresh token never passes where an access token is expected,
	// and vice versa.
	_, err = c.Verify(refresh, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = c.Verify(access, PurposeRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	c := testCodec(t, time.Minute, time.Hour)
	other, err := NewCodec(Config{
		AccessSecret:  []byte("different"),
		RefreshSecret: []byte("also-different"),
	})
	require.NoError(t, err)

	tok, _, err := c.Issue(9, PurposeAccess)
	require.NoError(t, err)

	_, err = other.Verify(tok, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	c := testCodec(t, time.Minute, time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := c.Verify(tok, PurposeAccess)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}
