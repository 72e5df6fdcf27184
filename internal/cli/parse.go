package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depsynth/pkg/modref"
)

// parseCommand creates the parse command, a debugging aid that shows which
// package name a bundler identifier reduces to.
func (c *CLI) parseCommand() *cobra.Command {
	var modules string

	cmd := &cobra.Command{
		Use:   "parse [identifier...]",
		Short: "Show the package names derived from bundler identifiers",
		Long: `Show the package name each bundler identifier reduces to.

Identifiers come from the arguments, or from a module list with --modules.

Examples:
  depsynth parse 'external "lodash/get"'
  depsynth parse 'javascript/esm|/app/node_modules/@foo/bar/dist/x.js'
  depsynth parse --modules stats.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if modules != "" {
				refs, err := readReferences(modules, cmd.InOrStdin())
				if err != nil {
					return err
				}
				for _, ref := range refs {
					ids = append(ids, ref.Identifier)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no identifiers given")
			}
			printParsed(cmd.OutOrStdout(), ids)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modules, "modules", "m", "", "module list file (- for stdin)")

	return cmd
}

// printParsed prints one line per identifier: the package name, or a
// marker when none can be derived.
func printParsed(w io.Writer, ids []string) {
	for _, id := range ids {
		name := modref.ParseIdentifier(id)
		switch {
		case name == "":
			printError(w, "%s %s", id, StyleDim.Render("(unparseable)"))
		case modref.IsRelative(name):
			printInfo(w, "%s %s %s", id, iconArrow, StyleDim.Render(name+" (relative)"))
		default:
			printInfo(w, "%s %s %s", id, iconArrow, StyleHighlight.Render(name))
		}
	}
}
