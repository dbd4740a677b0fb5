package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

// ListContacts returns every contact ordered by name.
func (s *Store) ListContacts(ctx context.Context) ([]storage.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, tags, notes FROM contacts ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list contacts failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []storage.Contact
	for rows.Next() {
		var c storage.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Tags, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan contact failed: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts failed: %w", err)
	}
	return out, nil
}

// GetContact returns one contact, or storage.ErrNotFound.
func (s *Store) GetContact(ctx context.Context, id int64) (storage.Contact, error) {
	var c storage.Contact
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, name, email, tags, notes FROM contacts WHERE id = ?`), id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Tags, &c.Notes)
	if err != nil {
		return storage.Contact{}, fmt.Errorf("get contact %d failed: %w", id, notFound(err))
	}
	return c, nil
}

// AddContact inserts a contact. A duplicate email yields storage.ErrAlreadyExists.
func (s *Store) AddContact(ctx context.Context, c storage.Contact) (storage.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" || c.Email == "" {
		return storage.Contact{}, errors.New("name and email are required")
	}

	err := s.db.QueryRowContext(ctx,
		s.rebind(`INSERT INTO contacts (name, email, tags, notes) VALUES (?, ?, ?, ?) RETURNING id`),
		c.Name, c.Email, c.Tags, c.Notes,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Contact{}, fmt.Errorf("contact %s: %w", c.Email, storage.ErrAlreadyExists)
		}
		return storage.Contact{}, fmt.Errorf("insert contact failed: %w", err)
	}
	return c, nil
}

// DeleteContact removes a contact. Campaign recipient snapshots are unaffected.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM contacts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete contact %d failed: %w", id, err)
	}
	return requireRow(res, id)
}
