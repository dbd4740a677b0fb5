package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected indicates no usable Gmail credential is available.
var ErrNotConnected = errors.New("gmail is not connected")

type credentialReader interface {
	Read() (Credential, error)
}

// Gate reports whether the stored credential can be used to send mail.
// It never modifies the store.
type Gate struct {
	store         credentialReader
	requiredScope string
	now           func() time.Time
}

// NewGate creates a gate that requires requiredScope to be granted.
// An empty requiredScope disables the scope check.
func NewGate(store credentialReader, requiredScope string) *Gate {
	return &Gate{
		store:         store,
		requiredScope: requiredScope,
		now:           time.Now,
	}
}

// IsReady reports whether Acquire would succeed.
func (g *Gate) IsReady(ctx context.Context) bool {
	_, err := g.Acquire(ctx)
	return err == nil
}

// Acquire returns the stored credential, or an error wrapping ErrNotConnected
// when it is missing, lacks the required scope, or is expired without a refresh token.
// The result depends only on the stored credential, never on ctx cancellation.
func (g *Gate) Acquire(_ context.Context) (Credential, error) {
	c, err := g.store.Read()
	if errors.Is(err, ErrTokenNotSet) {
		return Credential{}, fmt.Errorf("%w: connect Gmail first", ErrNotConnected)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}

	if c.AccessToken == "" && c.RefreshToken == "" {
		return Credential{}, fmt.Errorf("%w: empty token", ErrNotConnected)
	}
	if g.requiredScope != "" && !c.HasScope(g.requiredScope) {
		return Credential{}, fmt.Errorf("%w: scope %s not granted", ErrNotConnected, g.requiredScope)
	}
	if c.RefreshToken == "" && (c.AccessToken == "" || g.expired(c)) {
		return Credential{}, fmt.Errorf("%w: token expired", ErrNotConnected)
	}

	return c, nil
}

func (g *Gate) expired(c Credential) bool {
	return !c.Expiry.IsZero() && !c.Expiry.After(g.now())
}
