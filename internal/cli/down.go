package cli

import (
	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all applied migrations, reverse order",
	Args:  cobra.NoArgs,
	RunE:  runDown,
}

func newDownCommand() *cobra.Command {
	return downCmd
}

func runDown(cmd *cobra.Command, _ []string) error {
	m, d, _, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	reverted, notice, err := m.Down(cmd.Context())
	if err != nil {
		return err
	}
	if notice != "" {
		cmd.Println(notice)
		return nil
	}
	for _, n := range reverted {
		cmd.Printf("reverted %d\n", n)
	}
	return nil
}
