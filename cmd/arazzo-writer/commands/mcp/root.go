package mcp

import (
	"fmt"
	"strings"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/mcpserver"
	"github.com/SteakFisher/arazzo-writer/skill"
	"github.com/spf13/cobra"
)

// ServerName is the name the server reports during the MCP handshake.
const ServerName = "arazzo-writer"

// Apply adds the mcp command to rootCmd.
func Apply(rootCmd *cobra.Command) {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the validator and the skill documents over MCP",
	Long: `Start a Model Context Protocol server on stdin and stdout.

Tools:
  validate_arazzo       validate a document by path or inline content
  check_expression      check the syntax of a runtime expression
  read_skill_document   list or read the documents of the skill bundle
  render_workflows      render a document as markdown or mermaid

Logs go to stderr so they never mix with the protocol stream. Register the
server with an assistant by running 'arazzo-writer mcp' as a stdio server.`,
	Args: cmdutil.ExactArgs(0),
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := skill.Load()
	if err != nil {
		return fmt.Errorf("failed to load skill: %w", err)
	}

	// stdin carries the protocol; a "-" path reads nothing.
	v := cmdutil.NewValidator(cmdutil.Config(ctx), strings.NewReader(""))

	srv := mcpserver.New(ServerName, cmd.Root().Version, v, s)
	return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
