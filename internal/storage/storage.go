// Package storage defines the records persisted for contacts and campaigns
// and the errors shared by storage implementations.
package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness constraint rejected the write.
	ErrAlreadyExists = errors.New("record already exists")
)

// Contact is an address book entry. Email is unique across contacts.
type Contact struct {
	ID    int64
	Name  string
	Email string
	Tags  string
	Notes string
}

// Campaign is a composed message and its send status.
type Campaign struct {
	ID         int64
	Subject    string
	FromName   string
	HTMLBody   string
	CreatedAt  time.Time
	Status     string
	Recipients []Recipient
}

// Recipient is the address snapshot a campaign was queued for.
// It is a copy of the contact email, not a reference to the contact.
type Recipient struct {
	ID         int64
	CampaignID int64
	Email      string
}
