package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type readinessSvc interface {
	IsReady(ctx context.Context) bool
}

// ConnectionStatusRequest takes no arguments.
type ConnectionStatusRequest struct{}

// ConnectionStatusResponse reports Gmail readiness.
type ConnectionStatusResponse struct {
	Connected  bool   `json:"connected" jsonschema:"true when a valid Gmail credential is stored"`
	ConnectURL string `json:"connect_url,omitempty" jsonschema:"open to connect Gmail when not connected"`
}

// NewConnection creates the connection_status tool.
func NewConnection(gate readinessSvc, connectURL string) *Connection {
	return &Connection{gate: gate, connectURL: connectURL}
}

// Connection reports whether campaigns can be sent.
type Connection struct {
	gate       readinessSvc
	connectURL string
}

// ConnectionStatus reports whether a Gmail credential is ready.
func (t *Connection) ConnectionStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ConnectionStatusRequest,
) (*mcp.CallToolResult, ConnectionStatusResponse, error) {
	if t.gate.IsReady(ctx) {
		return nil, ConnectionStatusResponse{Connected: true}, nil
	}
	return nil, ConnectionStatusResponse{ConnectURL: t.connectURL}, nil
}
