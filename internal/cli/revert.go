package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert [steps]",
	Short: "Revert the last applied migration, optionally several times",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRevert,
}

func newRevertCommand() *cobra.Command {
	return revertCmd
}

func runRevert(cmd *cobra.Command, args []string) error {
	steps := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		steps = n
	}

	m, d, _, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	reverted, notice, err := m.Revert(cmd.Context(), steps)
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
