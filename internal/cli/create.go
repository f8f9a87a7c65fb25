package cli

import (
	"github.com/spf13/cobra"

	"github.com/sqlmidas/midas/migration"
)

var createCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Write a new migration template",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func newCreateCommand() *cobra.Command {
	return createCmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	dir := resolvedDir(cmd)
	path, err := migration.Create(dir, args[0])
	if err != nil {
		return err
	}
	cmd.Println(path)
	return nil
}
