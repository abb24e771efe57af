package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version of the CLI.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/categories"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the categories version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "categories v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
