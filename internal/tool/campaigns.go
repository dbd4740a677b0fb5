package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-newsletter/internal/campaign"
	"github.com/hal9000y/gmail-newsletter/internal/format"
	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

type recordsSvc interface {
	SaveDraft(ctx context.Context, d campaign.Draft) (storage.Campaign, error)
	Get(ctx context.Context, id int64) (storage.Campaign, error)
	List(ctx context.Context) ([]storage.Campaign, error)
	Duplicate(ctx context.Context, id int64) (campaign.Draft, error)
}

type previewSvc interface {
	Preview(ctx context.Context, ids []int64, freeForm string) ([]string, error)
}

// Composition is the editable content of a campaign, also the save_draft input.
type Composition struct {
	Subject  string `json:"subject" jsonschema:"email subject, required"`
	FromName string `json:"from_name,omitempty" jsonschema:"sender display name"`
	HTMLBody string `json:"html_body" jsonschema:"HTML body, required"`
}

func (c Composition) draft() campaign.Draft {
	return campaign.Draft{Subject: c.Subject, FromName: c.FromName, HTMLBody: c.HTMLBody}
}

// SaveDraftResponse contains the stored draft.
type SaveDraftResponse struct {
	Campaign CampaignSummary `json:"campaign" jsonschema:"the saved draft"`
}

// ListCampaignsRequest takes no arguments.
type ListCampaignsRequest struct{}

// ListCampaignsResponse contains campaigns newest first.
type ListCampaignsResponse struct {
	Campaigns []CampaignSummary `json:"campaigns" jsonschema:"campaigns, newest first"`
}

// GetCampaignRequest names a campaign.
type GetCampaignRequest struct {
	ID int64 `json:"id" jsonschema:"campaign ID"`
}

// GetCampaignResponse contains a campaign with its recipient snapshot.
type GetCampaignResponse struct {
	Campaign    CampaignSummary `json:"campaign" jsonschema:"campaign metadata"`
	HTMLPreview string          `json:"html_preview" jsonschema:"sanitized HTML body"`
	Recipients  []string        `json:"recipients" jsonschema:"recipient emails in send order"`
}

// DuplicateCampaignRequest names the campaign to copy.
type DuplicateCampaignRequest struct {
	ID int64 `json:"id" jsonschema:"campaign ID"`
}

// DuplicateCampaignResponse contains a prefilled composition.
type DuplicateCampaignResponse struct {
	Composition Composition `json:"composition" jsonschema:"content to edit and send as a new campaign"`
}

// PreviewCampaignRequest is an unsaved composition with its recipient selection.
type PreviewCampaignRequest struct {
	Subject         string  `json:"subject" jsonschema:"email subject"`
	FromName        string  `json:"from_name,omitempty" jsonschema:"sender display name"`
	HTMLBody        string  `json:"html_body" jsonschema:"HTML body"`
	ContactIDs      []int64 `json:"contact_ids,omitempty" jsonschema:"selected contact IDs"`
	FreeFormAddress string  `json:"free_form_address,omitempty" jsonschema:"additional address not in contacts"`
}

// PreviewCampaignResponse shows what would be sent.
type PreviewCampaignResponse struct {
	Subject     string   `json:"subject"`
	FromName    string   `json:"from_name,omitempty"`
	HTMLPreview string   `json:"html_preview" jsonschema:"sanitized HTML body"`
	Recipients  []string `json:"recipients" jsonschema:"resolved recipients"`
	Connected   bool     `json:"connected" jsonschema:"true when Gmail is ready to send"`
}

// NewCampaigns creates the campaign record tools.
func NewCampaigns(records recordsSvc, resolver previewSvc, gate readinessSvc) *Campaigns {
	return &Campaigns{records: records, resolver: resolver, gate: gate}
}

// Campaigns exposes saved campaigns and previews.
type Campaigns struct {
	records  recordsSvc
	resolver previewSvc
	gate     readinessSvc
}

// SaveDraft stores a composition as a draft.
func (t *Campaigns) SaveDraft(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input Composition,
) (*mcp.CallToolResult, SaveDraftResponse, error) {
	c, err := t.records.SaveDraft(ctx, input.draft())
	if err != nil {
		return nil, SaveDraftResponse{}, toolError(err)
	}

	return nil, SaveDraftResponse{Campaign: toSummary(c)}, nil
}

// ListCampaigns lists campaigns newest first.
func (t *Campaigns) ListCampaigns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCampaignsRequest,
) (*mcp.CallToolResult, ListCampaignsResponse, error) {
	list, err := t.records.List(ctx)
	if err != nil {
		return nil, ListCampaignsResponse{}, toolError(err)
	}

	out := make([]CampaignSummary, 0, len(list))
	for _, c := range list {
		out = append(out, toSummary(c))
	}

	return nil, ListCampaignsResponse{Campaigns: out}, nil
}

// GetCampaign returns a saved campaign.
func (t *Campaigns) GetCampaign(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCampaignRequest,
) (*mcp.CallToolResult, GetCampaignResponse, error) {
	c, err := t.records.Get(ctx, input.ID)
	if err != nil {
		return nil, GetCampaignResponse{}, toolError(err)
	}

	recipients := make([]string, 0, len(c.Recipients))
	for _, r := range c.Recipients {
		recipients = append(recipients, r.Email)
	}

	return nil, GetCampaignResponse{
		Campaign:    toSummary(c),
		HTMLPreview: format.SafePreview(c.HTMLBody),
		Recipients:  recipients,
	}, nil
}

// DuplicateCampaign returns the content of a campaign for a new composition.
func (t *Campaigns) DuplicateCampaign(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DuplicateCampaignRequest,
) (*mcp.CallToolResult, DuplicateCampaignResponse, error) {
	d, err := t.records.Duplicate(ctx, input.ID)
	if err != nil {
		return nil, DuplicateCampaignResponse{}, toolError(err)
	}

	return nil, DuplicateCampaignResponse{
		Composition: Composition{Subject: d.Subject, FromName: d.FromName, HTMLBody: d.HTMLBody},
	}, nil
}

// PreviewCampaign resolves recipients for an unsaved composition without persisting anything.
func (t *Campaigns) PreviewCampaign(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PreviewCampaignRequest,
) (*mcp.CallToolResult, PreviewCampaignResponse, error) {
	recipients, err := t.resolver.Preview(ctx, input.ContactIDs, input.FreeFormAddress)
	if err != nil {
		return nil, PreviewCampaignResponse{}, toolError(err)
	}

	return nil, PreviewCampaignResponse{
		Subject:     input.Subject,
		FromName:    input.FromName,
		HTMLPreview: format.SafePreview(input.HTMLBody),
		Recipients:  recipients,
		Connected:   t.gate.IsReady(ctx),
	}, nil
}

// toolError turns domain errors into the detail shown to the operator.
func toolError(err error) error {
	var verr *campaign.ValidationError
	switch {
	case errors.As(err, &verr):
		return errors.New(verr.Reason)
	case errors.Is(err, storage.ErrNotFound):
		return errors.New("campaign not found")
	default:
		return fmt.Errorf("operation failed: %w", err)
	}
}
