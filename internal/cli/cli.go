package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depsynth/pkg/buildinfo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for the config file and env prefix.
	appName = "depsynth"

	// configFileName is the project config file looked up in the working directory.
	configFileName = appName + ".toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The CLI logger is attached to the command context before any subcommand runs;
// --verbose switches it to debug level.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	build := buildinfo.Get()
	root := &cobra.Command{
		Use:   appName,
		Short: "depsynth generates a runtime package.json for a bundled build",
		Long: `depsynth generates the package.json that ships next to a bundled build.

It reads the external modules the bundler left out of the bundle, looks up
the versions installed in node_modules, merges them with a base manifest and
writes a manifest with a sorted dependencies table.`,
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(build.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
