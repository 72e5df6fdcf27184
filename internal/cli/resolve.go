package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depsynth/pkg/errors"
	"github.com/matzehuels/depsynth/pkg/installed"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	root  string // default lookup directory
	from  string // directory the lookup starts in
	check bool   // report versions that are not strict semver
}

// resolveCommand creates the resolve command, which prints the versions of
// installed packages as the generator would see them.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{}

	cmd := &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Show installed package versions",
		Long: `Show the installed version of each package, looked up the way Node.js
resolves a require() from the given directory.

Examples:
  depsynth resolve lodash @aws-sdk/client-s3
  depsynth resolve --from packages/api/src express
  depsynth resolve --check react react-dom`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if err := validateNames(logger, args); err != nil {
				return err
			}
			return runResolve(cmd.OutOrStdout(), newResolver(opts.root, logger), args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "directory to resolve packages from (default: working directory)")
	cmd.Flags().StringVar(&opts.from, "from", "", "directory the lookup starts in (default: --root)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "fail on versions that are not strict semver")

	return cmd
}

// newResolver creates the installed-version resolver shared by all commands.
// NODE_PATH folders are searched after the node_modules directories.
func newResolver(root string, logger *log.Logger) *installed.Resolver {
	r := installed.NewResolver(root, logger)
	if paths := filepath.SplitList(os.Getenv("NODE_PATH")); len(paths) > 0 {
		r.Modules = installed.NodeResolver{Paths: paths}
	}
	return r
}

// validateNames rejects names that are unsafe to join onto a node_modules
// directory. Names npm would not accept for new packages, such as legacy
// mixed-case names, are only warned about since they can still be installed.
func validateNames(logger *log.Logger, names []string) error {
	for _, name := range names {
		if err := errors.ValidatePackageName(name); err != nil {
			return err
		}
		if err := errors.ValidateNpmPackageName(name); err != nil {
			logger.Warn("not a valid name for new npm packages", "package", name, "err", err)
		}
	}
	return nil
}

// runResolve prints one line per package. Fatal failures stop at once;
// other failures and, with --check, non-semver versions are reported and
// turned into an error after all names were tried.
func runResolve(w io.Writer, r *installed.Resolver, names []string, opts *resolveOpts) error {
	var failed, invalid int
	for _, name := range names {
		rec, err := r.Resolve(name, opts.from)
		if installed.IsFatal(err) {
			return err
		}
		if err != nil {
			failed++
			printError(w, "%s %s", name, StyleDim.Render(err.Error()))
			continue
		}

		if opts.check {
			if _, err := semver.StrictNewVersion(rec.Version); err != nil {
				invalid++
				printWarning(w, "%s %s (not semver: %v)", name, rec.Version, err)
				continue
			}
		}
		printKeyValue(w, name, rec.Version)
		printDetail(w, "%s", rec.ManifestPath)
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d packages could not be resolved", failed, len(names))
	case invalid > 0:
		return fmt.Errorf("%d of %d packages have versions that are not semver", invalid, len(names))
	}
	return nil
}
