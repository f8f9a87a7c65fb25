package cli

import (
	"github.com/spf13/cobra"
)

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Revert then re-apply the last-applied migration",
	Args:  cobra.NoArgs,
	RunE:  runRedo,
}

func newRedoCommand() *cobra.Command {
	return redoCmd
}

func runRedo(cmd *cobra.Command, _ []string) error {
	m, d, _, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := m.Redo(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Redo complete.")
	return nil
}
