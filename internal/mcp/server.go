package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/previewgrid/internal/arrange"
)

const (
	ServerName    = "previewgrid"
	ServerVersion = "0.1.0"
)

// Server is the MCP control surface. It exposes the same reorder/status
// operations as the HTTP server, plus a manual positioning trigger, so
// automation agents can drive the layout over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	manager   *arrange.Manager
	lister    arrange.Lister
}

// NewServer creates an MCP server bound to the layout manager.
func NewServer(manager *arrange.Manager, lister arrange.Lister) *Server {
	s := &Server{
		manager: manager,
		lister:  lister,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reorder_windows",
		Description: "Assign the four preview windows to display slots. Takes a permutation of 1-4; position i names the window placed on display i. Windows must have been detected first.",
	}, s.handleReorder)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report how many preview windows are tracked, the current slot order, and the window number to role mapping.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "position_windows",
		Description: "Scan for preview windows right now and run a placement pass with the current order. Useful after the game restarts without waiting for the detection loop.",
	}, s.handlePosition)
}

func (s *Server) handleReorder(_ context.Context, _ *mcpsdk.CallToolRequest, args ReorderInput) (*mcpsdk.CallToolResult, ReorderOutput, error) {
	outcome := s.manager.Reorder(args.Order)
	return nil, ReorderOutput{
		Success: outcome.Success,
		Message: outcome.Message,
		Order:   outcome.Order,
	}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st := s.manager.Status()
	return nil, StatusOutput{
		WindowsFound:  st.WindowsFound,
		CurrentOrder:  st.CurrentOrder,
		WindowMapping: st.Mapping,
	}, nil
}

func (s *Server) handlePosition(_ context.Context, _ *mcpsdk.CallToolRequest, _ PositionInput) (*mcpsdk.CallToolResult, PositionOutput, error) {
	windows, err := s.lister.ListWindows()
	if err != nil {
		return nil, PositionOutput{}, fmt.Errorf("window enumeration failed: %w", err)
	}

	found := arrange.LocateRoles(windows)
	if len(found) == 0 {
		return nil, PositionOutput{}, fmt.Errorf("no preview windows found; start the multiplayer preview first")
	}

	placed := s.manager.ApplyDetected(found)
	return nil, PositionOutput{
		WindowsFound: len(found),
		Placed:       placed,
	}, nil
}
