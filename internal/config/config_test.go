package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-newsletter/internal/config"
)

var envKeys = []string{
	"OAUTH_GOOGLE_CLIENT_ID",
	"OAUTH_GOOGLE_CLIENT_SECRET",
	"DATABASE_URL",
	"OAUTH_TOKEN_FILE",
	"OAUTH_REDIRECT_URL",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "id")
	t.Setenv("OAUTH_GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		OAuthClientID:     "id",
		OAuthClientSecret: "secret",
		DatabaseURL:       "newsletter.db",
		TokenFile:         "./data/token.json",
	}, cfg)
}

func TestLoadRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "id")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAUTH_GOOGLE_CLIENT_SECRET")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://from-env/db")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"OAUTH_GOOGLE_CLIENT_ID=file-id\n"+
			"OAUTH_GOOGLE_CLIENT_SECRET=file-secret\n"+
			"DATABASE_URL=from-file.db\n"+
			"OAUTH_REDIRECT_URL=https://news.example.com/oauth\n",
	), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-id", cfg.OAuthClientID)
	assert.Equal(t, "file-secret", cfg.OAuthClientSecret)
	assert.Equal(t, "postgres://from-env/db", cfg.DatabaseURL, "environment wins over the file")
	assert.Equal(t, "https://news.example.com/oauth", cfg.RedirectURL)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "godotenv.Load failed")
}

func TestOAuth(t *testing.T) {
	cfg := config.Config{OAuthClientID: "id", OAuthClientSecret: "secret"}

	oc := cfg.OAuth("localhost:8080")
	assert.Equal(t, "http://localhost:8080/oauth", oc.RedirectURL)
	assert.Equal(t, []string{gmail.GmailSendScope}, oc.Scopes)
	assert.Equal(t, "id", oc.ClientID)

	cfg.RedirectURL = "https://news.example.com/oauth"
	assert.Equal(t, "https://news.example.com/oauth", cfg.OAuth("localhost:8080").RedirectURL)
}
