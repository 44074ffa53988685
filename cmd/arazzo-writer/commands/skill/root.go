package skill

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore/tui"
	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/skill"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Apply adds the skill bundle commands to rootCmd.
func Apply(rootCmd *cobra.Command) {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(checkCmd)
}

var nameStyle = lipgloss.NewStyle().Bold(true)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the documents of the skill bundle",
	Args:  cmdutil.ExactArgs(0),
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := skill.Load()
		if err != nil {
			return err
		}
		listDocuments(cmd.OutOrStdout(), s)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <document>",
	Short: "Print a document of the skill bundle",
	Long: `Print a document of the skill bundle to stdout.

Document names are the paths shown by 'skill list', for example:
  arazzo-writer skill show references/runtime-expressions.md

Use --outline to print only the headings of a markdown document.`,
	Args: cmdutil.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := skill.Load()
		if err != nil {
			return err
		}
		return showDocument(cmd.OutOrStdout(), s, args[0], showOutline)
	},
}

var installCmd = &cobra.Command{
	Use:   "install [dir]",
	Short: "Install the skill bundle into a skills directory",
	Long: `Write the skill bundle to <dir>/<skill name>/.

When no directory is given the skill.install_dir configuration key is used
(default ~/.skills). In an interactive terminal you are asked to confirm it.

Existing files are never overwritten unless --force is set.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
			return cmdutil.ErrUsage.Wrap(err)
		}
		return nil
	},
	RunE: runInstall,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the skill bundle is ready to publish",
	Long: `Check the metadata, links and examples of the skill bundle.

The name must be lowercase letters, digits and dashes, the description must be
present and short enough, every document SKILL.md links to must be part of the
bundle and every example workflow must pass validation.`,
	Args: cmdutil.ExactArgs(0),
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := skill.Load()
		if err != nil {
			return err
		}
		return cmdutil.Exit(checkSkill(cmd.OutOrStdout(), cmd.ErrOrStderr(), s.Name, s.Check(cmd.Context())))
	},
}

var (
	showOutline  bool
	installForce bool
)

func init() {
	showCmd.Flags().BoolVar(&showOutline, "outline", false, "print only the headings of the document")
	installCmd.Flags().BoolVar(&installForce, "force", false, "overwrite files that already exist")
}

func listDocuments(w io.Writer, s *skill.Skill) {
	docs := s.Documents()

	width := 0
	for _, d := range docs {
		width = max(width, len(d.Name))
	}

	fmt.Fprintf(w, "%s: %s\n\n", nameStyle.Render(s.Name), s.Description)
	for _, d := range docs {
		fmt.Fprintf(w, "  %-*s  %-30s %6d bytes\n", width, d.Name, d.Title, d.Size)
	}
}

func showDocument(w io.Writer, s *skill.Skill, name string, outline bool) error {
	if !outline {
		data, err := s.Read(name)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	headings, err := s.Headings(name)
	if err != nil {
		return err
	}
	if len(headings) == 0 {
		return fmt.Errorf("%s has no headings", name)
	}
	for _, h := range headings {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", h.Level-1), h.Text)
	}
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir := cmdutil.Config(ctx).Skill.InstallDir
	if len(args) == 1 {
		dir = args[0]
	} else if !cmdutil.StdinIsPiped() {
		chosen, err := tui.PromptForFilePath("Install the skill into", dir, tui.DirectoryPath)
		if err != nil {
			return err
		}
		if chosen == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Installation cancelled")
			return nil
		}
		dir = chosen
	}

	s, err := skill.Load()
	if err != nil {
		return err
	}

	return installSkill(ctx, cmd.OutOrStdout(), s, dir, installForce)
}

func installSkill(ctx context.Context, w io.Writer, s *skill.Skill, dir string, force bool) error {
	written, err := s.Install(ctx, dir, force)
	if err != nil {
		if errors.Is(err, skill.ErrFileExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	fmt.Fprintf(w, "✅ Installed %s (%d files)\n", s.Name, len(written))
	for _, path := range written {
		fmt.Fprintf(w, "   %s\n", path)
	}
	return nil
}

// checkSkill reports the problems found in the bundle and returns the exit code.
func checkSkill(stdout, stderr io.Writer, name string, problems []error) int {
	if len(problems) == 0 {
		fmt.Fprintf(stdout, "✅ skill %s is ready to publish\n", name)
		return cmdutil.ExitOK
	}

	fmt.Fprintf(stderr, "❌ skill %s has %d problems:\n", name, len(problems))
	width := len(fmt.Sprintf("%d", len(problems)))
	for i, problem := range problems {
		fmt.Fprintf(stderr, "  %*d. %s\n", width, i+1, problem.Error())
	}
	return cmdutil.ExitFailure
}
