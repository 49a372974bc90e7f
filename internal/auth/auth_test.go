package auth

import (
	"encoding/base64"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	userJSON := `{"id":"u-1","username":"octocat","provider":"github","providerId":"583231"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(userJSON))

	req := httptest.NewRequest("GET",
		"/auth/callback?token=tok-123&user="+url.QueryEscape(encoded), nil)

	res, err := parseCallback(req)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)
	assert.Equal(t, "octocat", res.User.Username)
	assert.Equal(t, "583231", res.User.ProviderID)
}

func TestParseCallback_URLSafeBase64(t *testing.T) {
	userJSON := `{"username":"octocat"}`
	encoded := base64.URLEncoding.EncodeToString([]byte(userJSON))

	req := httptest.NewRequest("GET",
		"/auth/callback?token=tok-123&user="+url.QueryEscape(encoded), nil)

	res, err := parseCallback(req)
	require.NoError(t, err)
	assert.Equal(t, "octocat", res.User.Username)
}

func TestParseCallback_MissingParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/auth/callback?user=eyJ9", nil)
	_, err := parseCallback(req)
	assert.Error(t, err, "missing token is rejected")

	req = httptest.NewRequest("GET", "/auth/callback?token=tok-123", nil)
	_, err = parseCallback(req)
	assert.Error(t, err, "missing user is rejected")
}

func TestParseCallback_BadUserPayload(t *testing.T) {
	req := httptest.NewRequest("GET", "/auth/callback?token=tok-123&user=%2Agarbage%2A", nil)
	_, err := parseCallback(req)
	assert.Error(t, err)
}

func TestTokenFromEnv(t *testing.T) {
	t.Setenv(EnvToken, "")
	tok, ok := TokenFromEnv()
	assert.False(t, ok)
	assert.Empty(t, tok)

	t.Setenv(EnvToken, "tok-env")
	tok, ok = TokenFromEnv()
	assert.True(t, ok)
	assert.Equal(t, "tok-env", tok)
}
