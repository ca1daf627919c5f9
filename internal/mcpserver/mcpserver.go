// Package mcpserver exposes the ERP tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erpbot/server/internal/agent/graph/tools"
	logx "github.com/erpbot/server/pkg/logger"
)

// Server wraps the MCP server.
type Server struct {
	server *mcp.Server
}

// New creates an MCP server with the given name and version.
func New(name, version string) *Server {
	return &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
}

// RegisterTools publishes every invokable eino tool under its own name.
// Arguments go through the same normalization the agent applies.
func (s *Server) RegisterTools(ctx context.Context, ts []tool.BaseTool) error {
	for _, bt := range ts {
		info, err := bt.Info(ctx)
		if err != nil {
			return fmt.Errorf("tool info: %w", err)
		}
		it, ok := bt.(tool.InvokableTool)
		if !ok {
			return fmt.Errorf("tool %s is not invokable", info.Name)
		}
		t := &mcp.Tool{
			Name:        info.Name,
			Description: info.Desc,
		}
		in, err := inputSchema(info.ParamsOneOf)
		if err != nil {
			return fmt.Errorf("tool %s schema: %w", info.Name, err)
		}
		if in != nil {
			t.InputSchema = in
		}
		mcp.AddTool(s.server, t, invoker(info.Name, it))
	}
	return nil
}

// inputSchema renders the tool parameters as a JSON schema object. The SDK
// validates calls against it, so required and enum constraints are dropped
// and the tools keep answering bad input with their own failure text.
func inputSchema(params *schema.ParamsOneOf) (json.RawMessage, error) {
	js, err := params.ToJSONSchema()
	if err != nil || js == nil {
		return nil, err
	}
	loosen(js)
	return json.Marshal(js)
}

func loosen(js *jsonschema.Schema) {
	if js == nil {
		return
	}
	js.Required = nil
	js.Enum = nil
	loosen(js.Items)
	if js.Properties == nil {
		return
	}
	for p := js.Properties.Oldest(); p != nil; p = p.Next() {
		loosen(p.Value)
	}
}

func invoker(name string, it tool.InvokableTool) func(context.Context, *mcp.CallToolRequest, map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, any, error) {
		raw, err := json.Marshal(input)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil, nil
		}
		out, err := it.InvokableRun(ctx, tools.NormalizeArguments(string(raw)))
		if err != nil {
			logx.Error().Err(err).Str("tool", name).Msg("mcp tool call failed")
			return errorResult(err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil, nil
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

// Run serves over stdio until the client disconnects or ctx ends.
// Logs must go to stderr so stdout stays a clean JSON-RPC stream.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logx.Error().Err(err).Msg("MCP server failed")
		return err
	}
	return nil
}

// Connect serves a single session on the given transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
