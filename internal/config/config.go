// Package config loads process configuration from the environment and an
// optional dotenv file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// Config is the process configuration.
type Config struct {
	OAuthClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID,required,notEmpty"`
	OAuthClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET,required,notEmpty"`
	// DatabaseURL selects Postgres for postgres:// URLs, SQLite otherwise.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"newsletter.db"`
	// TokenFile holds the Gmail credential, empty keeps it in memory only.
	TokenFile   string `env:"OAUTH_TOKEN_FILE" envDefault:"./data/token.json"`
	RedirectURL string `env:"OAUTH_REDIRECT_URL"`
}

// Load reads envFile into the environment when set, then parses Config.
// Variables already present in the environment take precedence over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env.Parse failed: %w", err)
	}

	return cfg, nil
}

// OAuth returns the Google OAuth2 config requesting the Gmail send scope.
// The redirect URL defaults to the /oauth endpoint on listenAddr.
func (c Config) OAuth(listenAddr string) *oauth2.Config {
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = fmt.Sprintf("http://%s/oauth", listenAddr)
	}

	return &oauth2.Config{
		ClientID:     c.OAuthClientID,
		ClientSecret: c.OAuthClientSecret,
		RedirectURL:  redirect,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
}
