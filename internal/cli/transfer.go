package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/categories/internal/app"
	"github.com/mesh-intelligence/categories/internal/tree"
)

func newExportCmd() *cobra.Command {
	var (
		base   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a subtree as XML",
		Long: `Export every node below the base path. References are written relative
to the base, so the document can be imported below a different node.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if output == "" || output == "-" {
					return a.Export(cmd.OutOrStdout(), base)
				}
				return exportFile(a, output, base)
			})
		},
	}
	cmd.Flags().StringVar(&base, "base", tree.Separator, "path of the node to export below")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// exportFile writes the export to path. An error closing the file is
// returned when the export itself succeeded.
func exportFile(a *app.App, path, base string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return a.Export(f, base)
}

func newImportCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an XML export below a node",
		Long: `Import the records of an export below the base path. Nodes are created
first; relations such as category items are written once the whole tree
exists. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				r = f
			}
			return withApp(func(a *app.App) error {
				res, err := a.Import(r, base)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if flags.jsonMode {
					return printJSON(out, map[string]int{
						"contents": res.Contents,
						"nodes":    res.Nodes,
						"ops":      res.Ops,
					})
				}
				fmt.Fprintf(out, "imported %d contents (%d new nodes, %d relations)\n",
					res.Contents, res.Nodes, res.Ops)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&base, "base", tree.Separator, "path of the node to import below")
	return cmd
}
