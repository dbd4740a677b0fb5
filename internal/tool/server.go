package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Services are the collaborators the operator tools call into.
type Services struct {
	Contacts contactsSvc
	Records  recordsSvc
	Resolver previewSvc
	Engine   dispatchSvc
	Gate     readinessSvc
	// ConnectURL is where the operator starts the Gmail consent flow.
	ConnectURL string
}

// NewServer creates an MCP server with newsletter tools.
func NewServer(svc Services) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "gmail-newsletter", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "connection_status",
		Description: "Report whether a Gmail account is connected for sending",
	}, NewConnection(svc.Gate, svc.ConnectURL).ConnectionStatus)

	contacts := NewContacts(svc.Contacts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List all contacts ordered by name",
	}, contacts.ListContacts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact; email must be unique",
	}, contacts.AddContact)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact by ID; past campaign recipients are kept",
	}, contacts.DeleteContact)

	campaigns := NewCampaigns(svc.Records, svc.Resolver, svc.Gate)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_draft",
		Description: "Save a campaign draft without sending it",
	}, campaigns.SaveDraft)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_campaigns",
		Description: "List campaigns newest first with their status",
	}, campaigns.ListCampaigns)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_campaign",
		Description: "Show a saved campaign with sanitized HTML and its recipients",
	}, campaigns.GetCampaign)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "duplicate_campaign",
		Description: "Copy subject, sender name and body of a campaign for a new composition",
	}, campaigns.DuplicateCampaign)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_campaign",
		Description: "Preview an unsaved composition and the recipients it would be sent to",
	}, campaigns.PreviewCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_campaign",
		Description: "Send a campaign now to selected contacts and an optional extra address",
	}, NewSendCampaign(svc.Engine).SendCampaign)

	return server
}
