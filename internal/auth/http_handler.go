package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type tokenFlow interface {
	AuthorizeCode(context.Context, string, string) error
	AuthURL() (string, error)
	Read() (Credential, error)
	Delete() error
}

// HTTPHandler handles the OAuth2 connect flow via HTTP.
type HTTPHandler struct {
	tok tokenFlow
}

// NewHTTPHandler creates an HTTP handler for the OAuth2 flow.
func NewHTTPHandler(tok tokenFlow) *HTTPHandler {
	return &HTTPHandler{tok: tok}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("redirect") != "" {
		authURL, err := h.tok.AuthURL()
		if err != nil {
			slog.Error("h.tok.AuthURL failed", "err", err)
			http.Error(w, "Unable to start authorization", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
		return
	}

	if code := r.URL.Query().Get("code"); code != "" {
		state := r.URL.Query().Get("state")
		if err := h.tok.AuthorizeCode(r.Context(), code, state); err != nil {
			slog.Error("h.tok.AuthorizeCode failed", "err", err)
			http.Error(w, "Unable to authorize provided code", http.StatusBadRequest)
			return
		}
		slog.Info("Gmail connected")
		http.Redirect(w, r, r.URL.EscapedPath(), http.StatusFound)
		return
	}

	c, err := h.tok.Read()
	if errors.Is(err, ErrTokenNotSet) {
		http.Error(w, "Token not found", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "Token: %s, scope: %s, expires: %s",
		maskLeft(c.AccessToken), c.Scope, c.Expiry.Format(time.RFC3339))
}

// Disconnect returns a handler that removes the stored credential.
func (h *HTTPHandler) Disconnect() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if err := h.tok.Delete(); err != nil {
			slog.Error("h.tok.Delete failed", "err", err)
			http.Error(w, "Unable to disconnect", http.StatusInternalServerError)
			return
		}
		slog.Info("Gmail disconnected")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "Disconnected Gmail.")
	})
}

func maskLeft(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs)-4; i++ {
		rs[i] = 'X'
	}
	return string(rs)
}
