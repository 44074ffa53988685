// Package mcpserver exposes validation, expression checking and the skill documents as Model Context Protocol tools.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/SteakFisher/arazzo-writer/render"
	"github.com/SteakFisher/arazzo-writer/skill"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ToolValidate        = "validate_arazzo"
	ToolCheckExpression = "check_expression"
	ToolReadDocument    = "read_skill_document"
	ToolRender          = "render_workflows"
)

// Server wires the tools onto an MCP server.
type Server struct {
	mcp       *server.MCPServer
	validator *validator.Validator
	skill     *skill.Skill
}

// New creates a Server. v validates documents by path or content; s serves the skill documents.
func New(name, version string, v *validator.Validator, s *skill.Skill) *Server {
	srv := &Server{
		mcp:       server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		validator: v,
		skill:     s,
	}

	srv.mcp.AddTool(mcp.NewTool(ToolValidate,
		mcp.WithDescription("Validate an Arazzo document. Pass either the path of a file or its YAML/JSON content. Returns the result of every validation stage as JSON."),
		mcp.WithString("path", mcp.Description("Path of the Arazzo document on disk")),
		mcp.WithString("content", mcp.Description("Inline Arazzo document, used when path is empty")),
	), srv.handleValidate)

	srv.mcp.AddTool(mcp.NewTool(ToolCheckExpression,
		mcp.WithDescription("Check the syntax of one Arazzo runtime expression such as $steps.find.outputs.petId."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("The runtime expression to check")),
	), srv.handleCheckExpression)

	srv.mcp.AddTool(mcp.NewTool(ToolReadDocument,
		mcp.WithDescription(fmt.Sprintf("Read a document of the %s skill. Leave name empty to list the documents.", s.Name)),
		mcp.WithString("name", mcp.Description("Document name, for example references/runtime-expressions.md")),
	), srv.handleReadDocument)

	srv.mcp.AddTool(mcp.NewTool(ToolRender,
		mcp.WithDescription("Render the workflows of an Arazzo document as a Markdown summary or a Mermaid flowchart."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Inline Arazzo document")),
		mcp.WithString("format", mcp.Enum(string(render.FormatMarkdown), string(render.FormatMermaid)), mcp.Description("Output format, markdown by default")),
	), srv.handleRender)

	return srv
}

// MCPServer returns the underlying server, for transports other than stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves the tools over stdin and stdout until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.G(ctx).Info("serving MCP over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func stringArg(req mcp.CallToolRequest, name string) string {
	v, _ := req.GetArguments()[name].(string)
	return v
}

func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringArg(req, "path")
	content := stringArg(req, "content")

	var (
		res *validator.Result
		err error
	)
	switch {
	case path != "":
		res, err = s.validator.Validate(ctx, path)
	case content != "":
		res, err = s.validator.ValidateBytes(ctx, "inline", []byte(content))
	default:
		return mcp.NewToolResultError("either path or content is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleCheckExpression(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e := expression.Expression(strings.TrimSpace(stringArg(req, "expression")))
	if e == "" {
		return mcp.NewToolResultError("expression is required"), nil
	}

	if err := e.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s is invalid: %s", e, err.Error())), nil
	}

	typ, reference, parts, pointer := e.GetParts()
	var b strings.Builder
	fmt.Fprintf(&b, "%s is valid\ntype: %s\n", e, typ)
	if reference != "" {
		fmt.Fprintf(&b, "reference: %s\n", reference)
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, "parts: %s\n", strings.Join(parts, "."))
	}
	if pointer != "" {
		fmt.Fprintf(&b, "pointer: %s\n", pointer)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleReadDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(req, "name")
	if name == "" {
		var b strings.Builder
		for _, d := range s.skill.Documents() {
			fmt.Fprintf(&b, "%s\t%s\n", d.Name, d.Title)
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	data, err := s.skill.Read(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := stringArg(req, "content")
	if content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	format := render.Format(stringArg(req, "format"))
	if format == "" {
		format = render.FormatMarkdown
	}

	a, _, err := arazzo.Unmarshal(ctx, bytes.NewReader([]byte(content)), arazzo.WithSkipValidation())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := render.Render(a, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}
