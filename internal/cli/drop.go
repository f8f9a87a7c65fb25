package cli

import (
	"github.com/spf13/cobra"
)

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop and recreate the target database",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func newDropCommand() *cobra.Command {
	return dropCmd
}

func runDrop(cmd *cobra.Command, _ []string) error {
	m, d, url, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := m.Drop(cmd.Context(), url); err != nil {
		return err
	}
	cmd.Println("Database dropped and recreated.")
	return nil
}
