package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied/pending per migration file",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func newStatusCommand() *cobra.Command {
	return statusCmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	m, d, _, err := openMigrator(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	report, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}

	if report.Notice != "" {
		cmd.Println(report.Notice)
		return nil
	}

	completed := 0
	for _, e := range report.Entries {
		state := "pending"
		if e.Applied {
			state = "applied"
			completed++
		}
		cmd.Printf("%d\t%s\t%s\n", e.Number, e.Slug, state)
	}
	cmd.Printf("%d/%d complete\n", completed, len(report.Entries))
	return nil
}
