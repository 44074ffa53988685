package arazzo

import (
	"fmt"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore/tui"
	"github.com/SteakFisher/arazzo-writer/errors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <file>",
	Short: "Interactively explore the workflows of an Arazzo document",
	Long: `Launch an interactive terminal UI to browse the steps of every workflow.

Use '-' as the file argument to read from stdin:
  cat workflow.arazzo.yaml | arazzo-writer explore -

Each step shows what it calls (an operationId, an operationPath or another
workflow). Unfold a step to see its parameters, success criteria, actions
and outputs.

Navigation:
  ↑/k           Move up
  ↓/j           Move down
  gg            Jump to top
  G             Jump to bottom
  [ / ]         Jump to the previous / next workflow
  Ctrl-U        Scroll up by half a screen
  Ctrl-D        Scroll down by half a screen
  Enter/Space   Toggle step details
  ?             Show help
  q/Esc         Quit`,
	Args: cmdutil.ExactArgs(1),
	RunE: runExplore,
}

func runExplore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := loadDocument(ctx, args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	steps, err := explore.CollectSteps(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to collect steps: %w", err)
	}

	if len(steps) == 0 {
		return errors.New("no steps found in the Arazzo document")
	}

	docTitle := doc.Info.Title
	if docTitle == "" {
		docTitle = "Arazzo"
	}
	docVersion := doc.Info.Version
	if docVersion == "" {
		docVersion = "unknown"
	}

	m := tui.NewModel(steps, docTitle, docVersion)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running explorer: %w", err)
	}

	return nil
}
