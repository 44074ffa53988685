package arazzo

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/SteakFisher/arazzo-writer/watch"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|glob>...",
	Short: "Validate Arazzo workflow documents",
	Long: `Validate one or more Arazzo workflow documents.

Each document goes through the same pipeline:
  syntax     the file must parse as YAML or JSON
  schema     the document must match the Arazzo 1.0 JSON Schema
  semantic   identifiers, references, runtime expressions and criteria must be consistent
  external   an external validator is run on the file when it is installed

The external validator defaults to 'openapi arazzo validate'. Override it with
--external-command or the validator.external_command config key. When its binary
cannot be found on PATH the stage is skipped.

Arguments may be file paths or globs such as 'workflows/**/*.arazzo.yaml'.
Use '-' to read a single document from stdin:
  cat workflow.arazzo.yaml | arazzo-writer validate -

Exit codes:
  0  every stage that ran passed
  1  a stage failed, or a file could not be found
  2  the command was invoked incorrectly`,
	Args: cobra.ArbitraryArgs,
	RunE: runValidate,
}

var (
	validateSkipSyntax   bool
	validateSkipSchema   bool
	validateSkipSemantic bool
	validateWatch        bool
	validateFormat       string
)

func init() {
	validateCmd.Flags().BoolVar(&validateSkipSyntax, "skip-syntax", false, "report the syntax stage as skipped; the document is still parsed")
	validateCmd.Flags().BoolVar(&validateSkipSchema, "skip-schema", false, "skip the JSON Schema stage")
	validateCmd.Flags().BoolVar(&validateSkipSemantic, "skip-semantic", false, "skip the semantic stage")
	validateCmd.Flags().Bool("skip-external", false, "skip the external validator")
	validateCmd.Flags().String("external-command", validator.DefaultExternalCommand, "external validator command; the document path is appended")
	validateCmd.Flags().Duration("timeout", validator.DefaultTimeout, "time limit for the external validator, 0 for no limit")
	validateCmd.Flags().Int("concurrency", validator.DefaultConcurrency, "number of documents validated in parallel")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "re-validate documents whenever they change")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", string(OutputFormatText), "output format: text or json")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := parseOutputFormat(validateFormat)
	if err != nil {
		return cmdutil.ErrUsage.Wrap(err)
	}

	patterns := cmdutil.InputFilesFromArgs(args, cmdutil.StdinIsPiped())
	v := cmdutil.NewValidator(cmdutil.Config(ctx), cmd.InOrStdin(), validatorStageOptions()...)

	if validateWatch {
		return watchDocuments(ctx, v, patterns, cmd.OutOrStdout(), cmd.ErrOrStderr(), format)
	}

	return cmdutil.Exit(validateDocuments(ctx, v, patterns, cmd.OutOrStdout(), cmd.ErrOrStderr(), format))
}

func validatorStageOptions() []validator.Option {
	var opts []validator.Option
	if validateSkipSyntax {
		opts = append(opts, validator.WithSkipStage(validator.StageSyntax))
	}
	if validateSkipSchema {
		opts = append(opts, validator.WithSkipStage(validator.StageSchema))
	}
	if validateSkipSemantic {
		opts = append(opts, validator.WithSkipStage(validator.StageSemantic))
	}
	return opts
}

// validateDocuments validates patterns, prints the report and returns the process exit code.
func validateDocuments(ctx context.Context, v *validator.Validator, patterns []string, stdout, stderr io.Writer, format OutputFormat) int {
	start := time.Now()
	results, err := v.ValidateAll(ctx, patterns)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return validator.ExitCodeFor(err)
	}

	if err := writeReport(stdout, stderr, format, results); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cmdutil.ExitFailure
	}

	logger.G(ctx).WithField("documents", len(results)).Debugf("validation completed in %s", roundDuration(time.Since(start)))

	return validator.ExitCode(results, nil)
}

func watchDocuments(ctx context.Context, v *validator.Validator, patterns []string, stdout, stderr io.Writer, format OutputFormat) error {
	if len(patterns) == 0 {
		return validator.ErrMissingArgument
	}
	for _, p := range patterns {
		if cmdutil.IsStdin(p) {
			return cmdutil.ErrUsage.Wrapf("--watch cannot be used when reading from stdin")
		}
	}

	validateDocuments(ctx, v, patterns, stdout, stderr, format)

	matches := documentMatcher(patterns)
	w := watch.New(func(ctx context.Context, path string) {
		if !matches(path) {
			return
		}
		fmt.Fprintf(stderr, "\n🔄 %s changed\n", path)
		validateDocuments(ctx, v, []string{path}, stdout, stderr, format)
	}, watchRoots(patterns))

	fmt.Fprintln(stderr, "👀 Watching for changes, press Ctrl-C to stop")

	return w.Run(ctx)
}

// watchRoots returns the files and directories to watch for patterns: the pattern itself for plain paths and the
// static prefix of globs.
func watchRoots(patterns []string) []string {
	var roots []string
	for _, p := range patterns {
		if !hasGlobMeta(p) {
			roots = append(roots, p)
			continue
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		roots = append(roots, filepath.FromSlash(base))
	}
	return roots
}

// documentMatcher reports whether an absolute path is one of the documents patterns selects.
func documentMatcher(patterns []string) func(path string) bool {
	abs := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if a, err := filepath.Abs(p); err == nil {
			abs = append(abs, filepath.ToSlash(a))
		}
	}

	return func(path string) bool {
		path = filepath.ToSlash(path)
		for _, p := range abs {
			if p == path {
				return true
			}
			if ok, _ := doublestar.Match(p, path); ok {
				return true
			}
		}
		return false
	}
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
