package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/SteakFisher/arazzo-writer/skill"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()

	s, err := skill.Load()
	require.NoError(t, err)

	v := validator.New(validator.WithSkipStage(validator.StageExternal))
	return New("arazzo-writer", "test", v, s)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestHandleValidate_Path(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	res, err := srv.handleValidate(context.Background(), call(ToolValidate, map[string]any{
		"path": "../arazzo/testdata/pet-adoption.arazzo.yaml",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var report struct {
		ExitCode int `json:"exitCode"`
		Stages   []struct {
			Stage  string `json:"stage"`
			Status string `json:"status"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &report))
	assert.Equal(t, 0, report.ExitCode)
	require.Len(t, report.Stages, 4)
	assert.Equal(t, "passed", report.Stages[2].Status)
	assert.Equal(t, "skipped", report.Stages[3].Status)
}

func TestHandleValidate_Content(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	res, err := srv.handleValidate(context.Background(), call(ToolValidate, map[string]any{
		"content": "arazzo: 1.0.1\ninfo:\n  title: a: b\n",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"exitCode": 1`)
	assert.Contains(t, text(t, res), `"rule": "validation-invalid-syntax"`)
}

func TestHandleValidate_Error(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "no arguments", args: map[string]any{}, want: "either path or content is required"},
		{name: "missing file", args: map[string]any{"path": os.DevNull + ".missing.yaml"}, want: "file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := srv.handleValidate(context.Background(), call(ToolValidate, tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestHandleCheckExpression(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	tests := []struct {
		name       string
		expression string
		wantError  bool
		want       string
	}{
		{name: "step output", expression: "$steps.find.outputs.petId", want: "$steps.find.outputs.petId is valid\ntype: steps\n"},
		{name: "body pointer", expression: "$response.body#/pets/0", want: "pointer: /pets/0"},
		{name: "empty", expression: "  ", wantError: true, want: "expression is required"},
		{name: "unknown type", expression: "$nope.x", wantError: true, want: "$nope.x is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := srv.handleCheckExpression(context.Background(), call(ToolCheckExpression, map[string]any{"expression": tt.expression}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestHandleReadDocument(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	res, err := srv.handleReadDocument(context.Background(), call(ToolReadDocument, map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "references/runtime-expressions.md\tRuntime expressions\n")

	res, err = srv.handleReadDocument(context.Background(), call(ToolReadDocument, map[string]any{"name": "references/validation.md"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "# Validation")

	res, err = srv.handleReadDocument(context.Background(), call(ToolReadDocument, map[string]any{"name": "missing.md"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleRender(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	data, err := os.ReadFile("../arazzo/testdata/pet-adoption.arazzo.yaml")
	require.NoError(t, err)

	res, err := srv.handleRender(context.Background(), call(ToolRender, map[string]any{
		"content": string(data),
		"format":  "mermaid",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "flowchart TD\n")

	res, err = srv.handleRender(context.Background(), call(ToolRender, map[string]any{
		"content": string(data),
		"format":  "svg",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
