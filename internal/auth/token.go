// Package auth handles the delegated Gmail authorization: the stored
// credential, the OAuth2 connect/disconnect flow, and the readiness gate.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrTokenNotSet indicates no credential is stored.
var ErrTokenNotSet = errors.New("no token defined")

// Credential is the single process-wide delegated-authorization token.
type Credential struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// OAuthToken converts the credential for use with an oauth2 token source.
func (c Credential) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// HasScope reports whether scope is among the space-separated granted scopes.
func (c Credential) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// Store keeps the credential in memory and writes it through to a JSON file.
type Store struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	cred        *Credential
	persistPath string
	stateStore  map[string]time.Time
}

// NewStore creates a credential store, loading the token file if it exists.
func NewStore(cfg *oauth2.Config, persistPath string) (*Store, error) {
	s := &Store{
		cfg:         cfg,
		persistPath: persistPath,
		stateStore:  make(map[string]time.Time),
	}
	if persistPath == "" {
		return s, nil
	}

	f, err := os.Open(persistPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("token file doesn't exist yet, connect Gmail to create it", "path", persistPath)
			return s, nil
		}
		return nil, fmt.Errorf("os.Open failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	cred := &Credential{}
	if err := json.NewDecoder(f).Decode(cred); err != nil {
		return nil, fmt.Errorf("json.NewDecoder.Decode failed: %w", err)
	}
	s.cred = cred

	return s, nil
}

// AuthURL generates the consent URL with a random single-use state.
func (s *Store) AuthURL() (string, error) {
	state, err := s.generateState()
	if err != nil {
		return "", fmt.Errorf("generateState failed: %w", err)
	}

	return s.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (s *Store) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.stateStore[state] = now.Add(5 * time.Minute)

	for st, exp := range s.stateStore {
		if exp.Before(now) {
			delete(s.stateStore, st)
		}
	}

	return state, nil
}

func (s *Store) validateState(state string) bool {
	if state == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.stateStore[state]
	if !exists {
		return false
	}

	delete(s.stateStore, state)

	return !time.Now().After(expiry)
}

// AuthorizeCode exchanges an authorization code for a credential after validating state.
func (s *Store) AuthorizeCode(ctx context.Context, code string, state string) error {
	if !s.validateState(state) {
		return errors.New("invalid or expired state parameter")
	}

	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	scope, _ := tok.Extra("scope").(string)
	if scope == "" {
		scope = strings.Join(s.cfg.Scopes, " ")
	}

	return s.Save(Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        scope,
		Expiry:       tok.Expiry,
	})
}

// Read returns a copy of the stored credential.
func (s *Store) Read() (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil {
		return Credential{}, ErrTokenNotSet
	}

	return *s.cred, nil
}

// Save replaces the stored credential and writes it to disk.
func (s *Store) Save(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(c); err != nil {
		return err
	}
	s.cred = &c

	return nil
}

// Delete forgets the credential and removes the token file.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = nil
	if s.persistPath == "" {
		return nil
	}

	if err := os.Remove(s.persistPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove failed: %w", err)
	}

	return nil
}

func (s *Store) persist(c Credential) error {
	if s.persistPath == "" {
		return nil
	}

	if dir := filepath.Dir(s.persistPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("os.MkdirAll failed: %w", err)
		}
	}

	f, err := os.OpenFile(s.persistPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("json.NewEncoder.Encode failed: %w", err)
	}

	return nil
}
