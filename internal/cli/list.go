package cli

import (
	"github.com/spf13/cobra"

	"github.com/sqlmidas/midas/migration"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Enumerate all migration files",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func newListCommand() *cobra.Command {
	return listCmd
}

func runList(cmd *cobra.Command, _ []string) error {
	dir := resolvedDir(cmd)
	set, err := migration.Load(dir)
	if err != nil {
		return err
	}

	if set.Len() == 0 {
		cmd.Println("There are no available migration files.")
		return nil
	}

	for _, n := range set.Numbers() {
		f, _ := set.Get(n)
		cmd.Printf("%s\t%s\n", f.Filename, f.Slug())
	}
	return nil
}
