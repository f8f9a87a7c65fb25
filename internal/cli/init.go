package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlmidas/midas/driver"
	"github.com/sqlmidas/midas/internal/migerr"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a new migrations project",
	Long:  `Writes .env.midas, creates the migrations directory and .migrations-state, and for file-based backends creates the empty backing file.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func newInitCommand() *cobra.Command {
	return initCmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	url := resolvedURL(cmd)
	dir := resolvedDir(cmd)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return migerr.New(migerr.Filesystem, "cli.init", err)
	}
	if err := os.MkdirAll(".migrations-state", 0o755); err != nil {
		return migerr.New(migerr.Filesystem, "cli.init", err)
	}

	contents := "DATABASE_URL=" + url + "\nMIGRATIONS_DIR=" + dir + "\n"
	if err := os.WriteFile(".env.midas", []byte(contents), 0o644); err != nil {
		return migerr.New(migerr.Filesystem, "cli.init", err)
	}

	if url != "" {
		if err := createBackingFileIfSQLite(url); err != nil {
			return err
		}
	}

	cmd.Println("Initialized midas project.")
	return nil
}

// createBackingFileIfSQLite pre-creates the empty SQLite file named by url
// so that a subsequent `up` does not have to distinguish "file doesn't
// exist yet" from "file exists but is empty."
func createBackingFileIfSQLite(rawURL string) error {
	scheme, _, found := strings.Cut(rawURL, "://")
	isFileBackend := !found || scheme == "sqlite" || scheme == "sqlite3" || scheme == "file"
	if !isFileBackend {
		return nil
	}

	path := driver.NormalizePath(rawURL)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return migerr.New(migerr.Filesystem, "cli.init", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return migerr.New(migerr.Filesystem, "cli.init", err)
	}
	return f.Close()
}
