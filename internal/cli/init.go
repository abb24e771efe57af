package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize categories storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	// Attach seeds the root node and the JSONL files.
	a, err := openApp(s)
	if err != nil {
		return err
	}
	if err := a.Close(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "categories initialized successfully")
	fmt.Fprintln(out, "  config:", s.configDir)
	fmt.Fprintln(out, "  data:  ", s.dataDir)
	return nil
}
