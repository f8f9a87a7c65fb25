package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var uptoCmd = &cobra.Command{
	Use:   "upto <N>",
	Short: "Apply pending migrations whose number is <= N",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpto,
}

func newUptoCommand() *cobra.Command {
	return uptoCmd
}

func runUpto(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return err
	}

	m, d, _, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	applied, notice, err := m.Upto(cmd.Context(), n)
	if err != nil {
		return err
	}
	if notice != "" {
		cmd.Println(notice)
		return nil
	}
	for _, num := range applied {
		cmd.Printf("applied %d\n", num)
	}
	return nil
}
