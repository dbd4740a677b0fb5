package tool

import (
	"time"

	"github.com/hal9000y/gmail-newsletter/internal/format"
	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

const snippetRunes = 120

// Contact is an address book entry.
type Contact struct {
	ID    int64  `json:"id" jsonschema:"contact ID"`
	Name  string `json:"name" jsonschema:"display name"`
	Email string `json:"email" jsonschema:"email address"`
	Tags  string `json:"tags,omitempty" jsonschema:"free-form tags"`
	Notes string `json:"notes,omitempty" jsonschema:"free-form notes"`
}

// CampaignSummary contains the list view of a campaign.
type CampaignSummary struct {
	ID        int64  `json:"id" jsonschema:"campaign ID"`
	Subject   string `json:"subject" jsonschema:"email subject"`
	FromName  string `json:"from_name,omitempty" jsonschema:"sender display name"`
	CreatedAt string `json:"created_at" jsonschema:"creation time, RFC 3339"`
	Status    string `json:"status" jsonschema:"draft, queued, sent or error: <detail>"`
	Snippet   string `json:"snippet" jsonschema:"text preview of the body"`
}

func toContact(c storage.Contact) Contact {
	return Contact{ID: c.ID, Name: c.Name, Email: c.Email, Tags: c.Tags, Notes: c.Notes}
}

func toSummary(c storage.Campaign) CampaignSummary {
	return CampaignSummary{
		ID:        c.ID,
		Subject:   c.Subject,
		FromName:  c.FromName,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		Status:    c.Status,
		Snippet:   format.Snippet(c.HTMLBody, snippetRunes),
	}
}
