package arazzo

import (
	"fmt"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/render"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render the workflows of an Arazzo document",
	Long: `Render the workflows of an Arazzo document to stdout.

Formats:
  markdown   a summary of the source descriptions, workflows, steps, outputs and actions
  mermaid    a flowchart with one subgraph per workflow, including goto and retry edges

Use '-' as the file argument to read from stdin:
  cat workflow.arazzo.yaml | arazzo-writer render - --format mermaid`,
	Args: cmdutil.ExactArgs(1),
	RunE: runRender,
}

var renderFormat string

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", string(render.FormatMarkdown), "output format: markdown or mermaid")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format := render.Format(renderFormat)
	if format != render.FormatMarkdown && format != render.FormatMermaid {
		return cmdutil.ErrUsage.Wrapf("unsupported render format %q, expected markdown or mermaid", renderFormat)
	}

	doc, err := loadDocument(ctx, args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out, err := render.Render(doc, format)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
