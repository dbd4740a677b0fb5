// Package gservice sends campaign mail through the Gmail API.
package gservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/gmail-newsletter/internal/auth"
)

const gmailUserID = "me"

// Message is one fully formed campaign message for a single recipient.
type Message struct {
	To       string
	Subject  string
	HTML     string
	FromName string
}

// NewGmail creates a Gmail transport. Extra client options are appended to
// the authorized HTTP client, e.g. to point the service at a test endpoint.
func NewGmail(cfg *oauth2.Config, opts ...option.ClientOption) *GMail {
	return &GMail{
		cfg:  cfg,
		opts: opts,
	}
}

// GMail delivers messages with users.messages.send on behalf of the connected account.
// The service for the last used credential is kept, so a token refreshed for one
// recipient is reused for the next instead of refreshing per message.
type GMail struct {
	cfg  *oauth2.Config
	opts []option.ClientOption

	mu   sync.Mutex
	cred auth.Credential
	svc  *gmail.Service
}

// Send delivers msg and returns the Gmail message id.
func (m *GMail) Send(ctx context.Context, cred auth.Credential, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", errors.New("recipient address is empty")
	}

	svc, err := m.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("service failed: %w", err)
	}

	raw := base64.URLEncoding.EncodeToString(BuildRaw(msg))

	sent, err := svc.Users.Messages.Send(gmailUserID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("Gmail API error: %w", err)
	}

	return sent.Id, nil
}

func (m *GMail) service(ctx context.Context, cred auth.Credential) (*gmail.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.svc != nil && sameCredential(m.cred, cred) {
		return m.svc, nil
	}

	svc, err := m.newSvc(ctx, cred)
	if err != nil {
		return nil, err
	}
	m.cred, m.svc = cred, svc

	return svc, nil
}

func (m *GMail) newSvc(ctx context.Context, cred auth.Credential) (*gmail.Service, error) {
	// The client outlives this call; token refreshes must not use a cancelled ctx.
	clt := m.cfg.Client(context.WithoutCancel(ctx), cred.OAuthToken())

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

func sameCredential(a, b auth.Credential) bool {
	return a.AccessToken == b.AccessToken &&
		a.RefreshToken == b.RefreshToken &&
		a.TokenType == b.TokenType &&
		a.Scope == b.Scope &&
		a.Expiry.Equal(b.Expiry)
}

// BuildRaw renders msg as a single-part text/html RFC 5322 message.
// The From header carries only a display name; Gmail fills in the
// authenticated address.
func BuildRaw(msg Message) []byte {
	var b bytes.Buffer

	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", `text/html; charset="utf-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "base64")
	writeHeader(&b, "To", headerValue(msg.To))
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	if name := headerValue(msg.FromName); name != "" {
		writeHeader(&b, "From", displayName(name)+" <>")
	}
	b.WriteString("\r\n")

	body := base64.StdEncoding.EncodeToString([]byte(msg.HTML))
	for len(body) > 76 {
		b.WriteString(body[:76])
		b.WriteString("\r\n")
		body = body[76:]
	}
	if body != "" {
		b.WriteString(body)
		b.WriteString("\r\n")
	}

	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

// headerValue drops line breaks so values cannot inject extra headers.
func headerValue(v string) string {
	v = strings.ReplaceAll(v, "\r", "")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.TrimSpace(v)
}

func displayName(name string) string {
	if enc := mime.QEncoding.Encode("utf-8", name); enc != name {
		return enc
	}
	if strings.ContainsAny(name, `()<>[]:;@\,."`) {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name) + `"`
	}
	return name
}
