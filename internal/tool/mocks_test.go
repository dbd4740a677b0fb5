package tool_test

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-newsletter/internal/campaign"
	"github.com/hal9000y/gmail-newsletter/internal/storage"
	"github.com/hal9000y/gmail-newsletter/internal/tool"
)

type contactsSvcMock struct {
	ListContactsFunc  func(ctx context.Context) ([]storage.Contact, error)
	AddContactFunc    func(ctx context.Context, c storage.Contact) (storage.Contact, error)
	DeleteContactFunc func(ctx context.Context, id int64) error
}

func (m *contactsSvcMock) ListContacts(ctx context.Context) ([]storage.Contact, error) {
	return m.ListContactsFunc(ctx)
}

func (m *contactsSvcMock) AddContact(ctx context.Context, c storage.Contact) (storage.Contact, error) {
	return m.AddContactFunc(ctx, c)
}

func (m *contactsSvcMock) DeleteContact(ctx context.Context, id int64) error {
	return m.DeleteContactFunc(ctx, id)
}

type recordsSvcMock struct {
	SaveDraftFunc func(ctx context.Context, d campaign.Draft) (storage.Campaign, error)
	GetFunc       func(ctx context.Context, id int64) (storage.Campaign, error)
	ListFunc      func(ctx context.Context) ([]storage.Campaign, error)
	DuplicateFunc func(ctx context.Context, id int64) (campaign.Draft, error)
}

func (m *recordsSvcMock) SaveDraft(ctx context.Context, d campaign.Draft) (storage.Campaign, error) {
	return m.SaveDraftFunc(ctx, d)
}

func (m *recordsSvcMock) Get(ctx context.Context, id int64) (storage.Campaign, error) {
	return m.GetFunc(ctx, id)
}

func (m *recordsSvcMock) List(ctx context.Context) ([]storage.Campaign, error) {
	return m.ListFunc(ctx)
}

func (m *recordsSvcMock) Duplicate(ctx context.Context, id int64) (campaign.Draft, error) {
	return m.DuplicateFunc(ctx, id)
}

type previewSvcMock struct {
	PreviewFunc func(ctx context.Context, ids []int64, freeForm string) ([]string, error)
}

func (m *previewSvcMock) Preview(ctx context.Context, ids []int64, freeForm string) ([]string, error) {
	return m.PreviewFunc(ctx, ids, freeForm)
}

type dispatchSvcMock struct {
	DispatchFunc func(ctx context.Context, req campaign.Request) (campaign.Result, error)
}

func (m *dispatchSvcMock) Dispatch(ctx context.Context, req campaign.Request) (campaign.Result, error) {
	return m.DispatchFunc(ctx, req)
}

type gateMock struct {
	ready bool
}

func (m *gateMock) IsReady(context.Context) bool { return m.ready }

// connect starts an in-memory MCP session against a server built from svc.
func connect(t *testing.T, svc tool.Services) *mcp.ClientSession {
	t.Helper()

	if svc.Gate == nil {
		svc.Gate = &gateMock{}
	}

	server := tool.NewServer(svc)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

// callTool invokes name and returns the text of the first content block.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result.Content[0].(*mcp.TextContent).Text, result.IsError
}
