package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

type contactsSvc interface {
	ListContacts(ctx context.Context) ([]storage.Contact, error)
	AddContact(ctx context.Context, c storage.Contact) (storage.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
}

// ListContactsRequest takes no arguments.
type ListContactsRequest struct{}

// ListContactsResponse contains all contacts.
type ListContactsResponse struct {
	Contacts []Contact `json:"contacts" jsonschema:"contacts ordered by name"`
}

// AddContactRequest describes a new contact.
type AddContactRequest struct {
	Name  string `json:"name" jsonschema:"display name"`
	Email string `json:"email" jsonschema:"email address, unique"`
	Tags  string `json:"tags,omitempty" jsonschema:"free-form tags"`
	Notes string `json:"notes,omitempty" jsonschema:"free-form notes"`
}

// AddContactResponse contains the stored contact.
type AddContactResponse struct {
	Contact Contact `json:"contact" jsonschema:"the stored contact"`
}

// DeleteContactRequest names the contact to delete.
type DeleteContactRequest struct {
	ID int64 `json:"id" jsonschema:"contact ID"`
}

// DeleteContactResponse confirms deletion.
type DeleteContactResponse struct {
	Deleted bool `json:"deleted" jsonschema:"true when the contact was removed"`
}

// NewContacts creates the contact tools.
func NewContacts(svc contactsSvc) *Contacts {
	return &Contacts{svc: svc}
}

// Contacts manages the address book.
type Contacts struct {
	svc contactsSvc
}

// ListContacts lists every contact.
func (t *Contacts) ListContacts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListContactsRequest,
) (*mcp.CallToolResult, ListContactsResponse, error) {
	list, err := t.svc.ListContacts(ctx)
	if err != nil {
		return nil, ListContactsResponse{}, fmt.Errorf("svc.ListContacts failed: %w", err)
	}

	out := make([]Contact, 0, len(list))
	for _, c := range list {
		out = append(out, toContact(c))
	}

	return nil, ListContactsResponse{Contacts: out}, nil
}

// AddContact stores a new contact.
func (t *Contacts) AddContact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddContactRequest,
) (*mcp.CallToolResult, AddContactResponse, error) {
	c, err := t.svc.AddContact(ctx, storage.Contact{
		Name:  input.Name,
		Email: input.Email,
		Tags:  input.Tags,
		Notes: input.Notes,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, AddContactResponse{}, errors.New("email already exists in contacts")
	}
	if err != nil {
		return nil, AddContactResponse{}, fmt.Errorf("svc.AddContact failed: %w", err)
	}

	return nil, AddContactResponse{Contact: toContact(c)}, nil
}

// DeleteContact removes a contact.
func (t *Contacts) DeleteContact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteContactRequest,
) (*mcp.CallToolResult, DeleteContactResponse, error) {
	if err := t.svc.DeleteContact(ctx, input.ID); err != nil {
		return nil, DeleteContactResponse{}, fmt.Errorf("svc.DeleteContact failed: %w", err)
	}

	return nil, DeleteContactResponse{Deleted: true}, nil
}
