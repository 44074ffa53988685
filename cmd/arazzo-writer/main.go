package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	arazzoCmd "github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/arazzo"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	mcpCmd "github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/mcp"
	skillCmd "github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/skill"
	"github.com/SteakFisher/arazzo-writer/internal/config"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// getVersionInfo returns version information, prioritizing ldflags values over build info
func getVersionInfo() (string, string, string) {
	// If version/commit/date were set via ldflags (GoReleaser), use those
	if version != "dev" || commit != "none" || date != "unknown" {
		return version, commit, date
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, date
	}

	moduleVersion := version
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		moduleVersion = buildInfo.Main.Version
	}

	vcsCommit := commit
	vcsTime := date

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				vcsCommit = setting.Value[:7] // Short commit hash
			} else {
				vcsCommit = setting.Value
			}
		case "vcs.time":
			vcsTime = setting.Value
		}
	}

	return moduleVersion, vcsCommit, vcsTime
}

var rootCmd = &cobra.Command{
	Use:   "arazzo-writer",
	Short: "Write, check and explore Arazzo workflow documents",
	Long: `A toolkit for authoring Arazzo workflow documents.

Arazzo Workflows:
- Validate documents through syntax, schema, semantic and external stages
- Check runtime expressions and test success criteria against sample responses
- Render workflows as markdown or mermaid and explore them in the terminal

Authoring Skill:
- List, read and install the bundled Arazzo authoring guide
- Check the bundle before publishing it

Assistants:
- Serve the validator and the guide as Model Context Protocol tools

Configuration is read from $HOME/.arazzo-writer/config.yaml or ./config.yaml,
from ARAZZO_WRITER_* environment variables and from flags, in increasing order
of precedence.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

var skillCmds = &cobra.Command{
	Use:   "skill",
	Short: "Work with the Arazzo authoring skill bundle",
	Long: `Commands for working with the bundled authoring skill.

The skill is a SKILL.md guide with reference documents and example workflows
that assistants load to write valid Arazzo documents.`,
}

var (
	configFile string
	verbose    bool
)

func init() {
	currentVersion, currentCommit, currentDate := getVersionInfo()

	rootCmd.Version = currentVersion

	// Set version template with build info
	var versionTemplate strings.Builder
	versionTemplate.WriteString(`{{printf "%s" .Version}}`)

	if currentCommit != "none" && currentCommit != "" {
		versionTemplate.WriteString("\nBuild: " + currentCommit)
	}

	if currentDate != "unknown" && currentDate != "" {
		versionTemplate.WriteString("\nBuilt: " + currentDate)
	}

	rootCmd.SetVersionTemplate(versionTemplate.String() + "\n")

	arazzoCmd.Apply(rootCmd)
	skillCmd.Apply(skillCmds)
	mcpCmd.Apply(rootCmd)

	rootCmd.AddCommand(skillCmds)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $HOME/.arazzo-writer/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output, same as --log-level debug")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.ErrUsage.Wrap(err)
	})
}

// loadConfig runs before every command and stores the merged configuration in the command context.
func loadConfig(cmd *cobra.Command, _ []string) error {
	opts := []config.Option{config.WithFlags(cmd.Flags())}
	if configFile != "" {
		opts = append(opts, config.WithFile(configFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	if err := logger.Configure(level, cfg.Log.Format); err != nil {
		return config.ErrInvalidConfig.Wrapf("log.level %q: %s", level, err)
	}

	if cfg.File != "" {
		logger.G(cmd.Context()).WithField("file", cfg.File).Debug("loaded config")
	}

	cmd.SetContext(cmdutil.WithConfig(cmd.Context(), cfg))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !cmdutil.Silent(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cmdutil.ExitCode(err))
}
