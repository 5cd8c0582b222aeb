// Command assetctl administers an eckassets store: schema migration, account
// bootstrap and demo data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xelth-com/eckassets/internal/config"
	"github.com/xelth-com/eckassets/internal/database"
	"github.com/xelth-com/eckassets/internal/logger"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "assetctl",
	Short: "Administer the eckassets inventory store",
	Long: `assetctl works directly against the configured database.

Database settings come from the same environment variables as the API
server (DB_DRIVER, PG_*, SQLITE_PATH), including a .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (json or console)")

	rootCmd.AddCommand(migrateCmd, createUserCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects and migrates. The caller closes the returned DB.
func openStore(cmd *cobra.Command) (*database.DB, *zap.Logger, error) {
	logg, err := logger.New(logLevel, logFormat, "assetctl")
	if err != nil {
		return nil, nil, err
	}

	cfg := config.LoadDatabase()
	db, err := database.Connect(cfg, logg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(cmd.Context(), db.DB); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, logg, nil
}
