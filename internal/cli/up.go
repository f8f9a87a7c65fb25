package cli

import (
	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runUp,
}

func newUpCommand() *cobra.Command {
	return upCmd
}

func runUp(cmd *cobra.Command, _ []string) error {
	m, d, _, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	applied, notice, err := m.Up(cmd.Context())
	if err != nil {
		return err
	}
	if notice != "" {
		cmd.Println(notice)
		return nil
	}
	for _, n := range applied {
		cmd.Printf("applied %d\n", n)
	}
	return nil
}
