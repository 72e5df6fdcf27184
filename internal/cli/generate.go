package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depsynth/pkg/manifest"
	"github.com/matzehuels/depsynth/pkg/modref"
	"github.com/matzehuels/depsynth/pkg/synth"
)

// generateOpts holds the command-line flags for the generate command.
// Values bound to config keys are read back through loadConfig.
type generateOpts struct {
	config     string   // explicit config file
	additional []string // name=version pairs, merged over the config table
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the runtime package.json for a bundle",
		Long: `Generate the package.json that ships next to a bundled build.

The module list names the externals the bundler left out of the bundle. It
may be a JSON array of identifiers, a bundler stats file (only externals are
used), or a plain list with one identifier per line.

Examples:
  depsynth generate --modules externals.json --base package.base.json --out-dir dist
  depsynth generate --modules stats.json --exclude aws-sdk --stdout
  cat externals.txt | depsynth generate --modules - --additional tslib=2.6.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config, cmd.Flags())
			if err != nil {
				return err
			}
			extra, err := parseAdditional(opts.additional)
			if err != nil {
				return err
			}
			for name, version := range extra {
				cfg.Additional[name] = version
			}
			if cfg.Verbose {
				loggerFromContext(cmd.Context()).SetLevel(LogDebug)
			}
			return runGenerate(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default: ./"+configFileName+" when present)")
	cmd.Flags().StringP("modules", "m", "", "module list file (- for stdin)")
	cmd.Flags().StringP("base", "b", "", "base package.json to merge into")
	cmd.Flags().StringP("out-dir", "o", ".", "output directory")
	cmd.Flags().String("file-name", "package.json", "output file name")
	cmd.Flags().String("root", "", "directory to resolve packages from (default: working directory)")
	cmd.Flags().StringSlice("exclude", nil, "packages to leave out")
	cmd.Flags().StringSlice("builtin", nil, "extra runtime built-in modules")
	cmd.Flags().StringArrayVar(&opts.additional, "additional", nil, "extra dependency as name=version (repeatable)")
	cmd.Flags().Bool("stdout", false, "write the manifest to stdout")

	return cmd
}

// runGenerate computes and writes the manifest. Nothing is written when the
// computation fails.
func runGenerate(ctx context.Context, cfg *Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := loggerFromContext(ctx)

	refs, err := readReferences(cfg.Modules, stdin)
	if err != nil {
		return err
	}
	logger.Debug("loaded module list", "path", cfg.Modules, "references", len(refs))

	var base *manifest.Manifest
	if cfg.Base != "" {
		if base, err = manifest.Load(cfg.Base); err != nil {
			return err
		}
	}

	resolver := newResolver(cfg.Root, logger)

	builtins := modref.NodeBuiltins()
	builtins.Add(cfg.Builtins...)

	prog := newProgress(logger)
	res, err := synth.New(resolver, logger).Compute(synth.Input{
		References: refs,
		Exclude:    cfg.Exclude,
		Builtins:   builtins,
		Additional: cfg.Additional,
		Base:       base,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d dependencies", res.Dependencies.Len()))

	data, err := manifest.Render(base, res.Dependencies)
	if err != nil {
		return err
	}

	path := ""
	if !cfg.Stdout {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		path = filepath.Join(cfg.OutDir, cfg.FileName)
	}
	if err := writeOutput(path, stdout, data); err != nil {
		return err
	}

	printSummary(stderr, path, res)
	return nil
}

// printSummary reports the written file and the modules left out.
func printSummary(w io.Writer, path string, res *synth.Result) {
	if path != "" {
		printSuccess(w, "Generated manifest with %d dependencies", res.Dependencies.Len())
		printFile(w, path)
	}
	if missing := res.Names(synth.ReasonNotInstalled); len(missing) > 0 {
		printWarning(w, "%d modules are not installed and were left out", len(missing))
		printList(w, "not installed", missing)
	}
	if broken := res.Names(synth.ReasonInconsistentPath); len(broken) > 0 {
		printError(w, "%d modules resolved outside node_modules and were left out", len(broken))
		printList(w, "outside node_modules", broken)
	}
	printList(w, "excluded", res.Names(synth.ReasonExcluded))
	printList(w, "built-in", res.Names(synth.ReasonBuiltin))
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, stdout io.Writer, data []byte) error {
	out, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}
