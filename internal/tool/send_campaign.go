package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-newsletter/internal/campaign"
)

type dispatchSvc interface {
	Dispatch(ctx context.Context, req campaign.Request) (campaign.Result, error)
}

// SendCampaignRequest is a composition with its recipient selection.
type SendCampaignRequest struct {
	Subject         string  `json:"subject" jsonschema:"email subject, required"`
	FromName        string  `json:"from_name,omitempty" jsonschema:"sender display name"`
	HTMLBody        string  `json:"html_body" jsonschema:"HTML body, required"`
	ContactIDs      []int64 `json:"contact_ids,omitempty" jsonschema:"selected contact IDs"`
	FreeFormAddress string  `json:"free_form_address,omitempty" jsonschema:"additional address not in contacts"`
}

// SendCampaignResponse reports the outcome of a dispatch.
type SendCampaignResponse struct {
	Campaign CampaignSummary `json:"campaign" jsonschema:"the campaign with its final status"`
	Sent     int             `json:"sent" jsonschema:"number of messages accepted by Gmail"`
	Message  string          `json:"message" jsonschema:"human readable outcome"`
}

// NewSendCampaign creates the send_campaign tool.
func NewSendCampaign(engine dispatchSvc) *SendCampaign {
	return &SendCampaign{engine: engine}
}

// SendCampaign dispatches campaigns immediately.
type SendCampaign struct {
	engine dispatchSvc
}

// SendCampaign sends the composition to every resolved recipient.
func (t *SendCampaign) SendCampaign(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendCampaignRequest,
) (*mcp.CallToolResult, SendCampaignResponse, error) {
	res, err := t.engine.Dispatch(ctx, campaign.Request{
		Draft: campaign.Draft{
			Subject:  input.Subject,
			FromName: input.FromName,
			HTMLBody: input.HTMLBody,
		},
		ContactIDs:      input.ContactIDs,
		FreeFormAddress: input.FreeFormAddress,
	})
	if err != nil {
		return nil, SendCampaignResponse{}, toolError(err)
	}

	out := SendCampaignResponse{
		Campaign: toSummary(res.Campaign),
		Sent:     res.Sent,
	}
	if res.Failure != nil {
		out.Message = "Error while sending: " + campaign.ErrorDetail(res.Campaign.Status)
	} else {
		out.Message = fmt.Sprintf("Sent %d message(s).", res.Sent)
	}

	return nil, out, nil
}
