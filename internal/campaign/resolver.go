package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

type contactLookup interface {
	GetContact(ctx context.Context, id int64) (storage.Contact, error)
}

// Resolver turns contact ids plus an optional free-form address into delivery targets.
type Resolver struct {
	contacts contactLookup
}

// NewResolver creates a Resolver reading contacts from contacts.
func NewResolver(contacts contactLookup) *Resolver {
	return &Resolver{contacts: contacts}
}

// Resolve returns the contact emails for ids in input order, deduplicated by
// exact match with the first occurrence kept. Unknown ids are skipped.
// A non-blank freeForm address is appended last even when it repeats a contact email.
func (r *Resolver) Resolve(ctx context.Context, ids []int64, freeForm string) ([]string, error) {
	contacts, err := r.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(contacts)+1)
	for _, c := range contacts {
		emails = append(emails, c.Email)
	}
	if addr := strings.TrimSpace(freeForm); addr != "" {
		emails = append(emails, addr)
	}

	return emails, nil
}

// Preview resolves like Resolve but labels contact targets as "Name <email>".
func (r *Resolver) Preview(ctx context.Context, ids []int64, freeForm string) ([]string, error) {
	contacts, err := r.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(contacts)+1)
	for _, c := range contacts {
		labels = append(labels, fmt.Sprintf("%s <%s>", c.Name, c.Email))
	}
	if addr := strings.TrimSpace(freeForm); addr != "" {
		labels = append(labels, addr)
	}

	return labels, nil
}

func (r *Resolver) lookup(ctx context.Context, ids []int64) ([]storage.Contact, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]storage.Contact, 0, len(ids))

	for _, id := range ids {
		c, err := r.contacts.GetContact(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &PersistenceError{Op: fmt.Sprintf("lookup contact %d", id), Err: err}
		}
		if _, dup := seen[c.Email]; dup {
			continue
		}
		seen[c.Email] = struct{}{}
		out = append(out, c)
	}

	return out, nil
}
