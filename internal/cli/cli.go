// Package cli wires the cobra command tree for midas. Each command is kept
// thin: it resolves configuration, constructs a driver and migration set,
// invokes one Migrator operation, and prints the result as plain text.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqlmidas/midas/driver"
	"github.com/sqlmidas/midas/internal/envkit"
	"github.com/sqlmidas/midas/internal/logkit"
	"github.com/sqlmidas/midas/internal/migerr"
	"github.com/sqlmidas/midas/migration"
	"github.com/sqlmidas/midas/migrator"
)

const envPrefix = "MIDAS"

var rootCmd = &cobra.Command{
	Use:   "midas",
	Short: "midas schema migrator",
	Long:  `midas maintains a reversible sequence of SQL migrations against a target database.`,
	Args:  cobra.NoArgs,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logkit.ConfigureFromFilter(envkit.Resolve("", logkit.DefaultFilter, "RUST_LOG"))
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

const (
	databaseURLFlag   = "database-url"
	migrationsDirFlag = "dir"
)

func init() {
	// database-url and dir are shared by every subcommand, so they are
	// registered once as persistent flags on the root rather than through
	// cobraflags: cobraflags.StringFlag binds a local flag straight to a
	// viper key at registration time, and registering the same flag name
	// on ten separate local FlagSets would repeatedly rebind that key to
	// whichever command happened to register last.
	rootCmd.PersistentFlags().String(databaseURLFlag, "", "Database connection URL (falls back to DATABASE_URL/DATABASE_URI/DB_URL/DSN)")
	rootCmd.PersistentFlags().String(migrationsDirFlag, "", "Migration files directory (falls back to MIGRATIONS_DIR/MIGRATIONS_ROOT/MIGRATIONS_PATH, then \""+envkit.DefaultMigrationsDir+"\")")
}

func resolvedURL(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString(databaseURLFlag)
	return envkit.Resolve(v, "", envkit.DatabaseURLNames...)
}

func resolvedDir(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString(migrationsDirFlag)
	return envkit.Resolve(v, envkit.DefaultMigrationsDir, envkit.MigrationsDirNames...)
}

// openMigrator resolves the connection URL and migration directory, opens
// the driver, loads the migration set, and returns a ready Migrator. The
// caller owns the returned Driver and must Close it.
func openMigrator(ctx context.Context, cmd *cobra.Command) (*migrator.Migrator, driver.Driver, string, error) {
	url := resolvedURL(cmd)
	if url == "" {
		return nil, nil, "", migerr.New(migerr.Config, "cli.openMigrator", fmt.Errorf("no database URL: pass --database-url or set DATABASE_URL"))
	}
	dir := resolvedDir(cmd)

	d, err := driver.Connect(ctx, url)
	if err != nil {
		return nil, nil, "", err
	}

	set, err := migration.Load(dir)
	if err != nil {
		d.Close()
		return nil, nil, "", err
	}

	return migrator.New(d, set, dir), d, url, nil
}

// Execute adds all subcommands to the root command and runs it. It is
// called once by main.main.
func Execute(args ...string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	rootCmd.AddCommand(
		newInitCommand(),
		newCreateCommand(),
		newListCommand(),
		newStatusCommand(),
		newUpCommand(),
		newUptoCommand(),
		newDownCommand(),
		newRedoCommand(),
		newRevertCommand(),
		newDropCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1) //revive:disable-line:deep-exit
	}
}
