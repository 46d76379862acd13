package main

import (
	"context"
	"fmt"
	"os"

	"dbmirror/internal/app"
	"dbmirror/internal/config"
	"dbmirror/internal/replicate"
	"dbmirror/pkg/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbmirror",
	Short: "Back up a database and mirror its tables to a remote server",
	Long:  `dbmirror takes a full backup of the configured source database, then replicates every base table to a suffix-renamed table on a remote database server, creating missing tables and replacing the contents of existing ones.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Back up the source database, then replicate all tables",
	RunE:  runFull,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the source database only",
	RunE:  runBackup,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replicate all tables without backing up first",
	RunE:  runSync,
}

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List the source base tables and their derived target names",
	RunE:  runListTables,
}

var (
	configPath  string
	verbose     bool
	suffix      string
	backupDir   string
	workers     int
	stopOnError bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.MarkPersistentFlagRequired("config")

	for _, cmd := range []*cobra.Command{runCmd, syncCmd} {
		cmd.Flags().StringVar(&suffix, "suffix", "", "Override the target table name suffix")
		cmd.Flags().IntVar(&workers, "workers", 0, "Override the number of parallel table workers")
		cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop the run on the first table failure")
	}

	for _, cmd := range []*cobra.Command{runCmd, backupCmd} {
		cmd.Flags().StringVar(&backupDir, "backup-dir", "", "Override the local backup directory")
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listTablesCmd)

	cobra.OnInitialize(func() {
		rootCmd.SilenceUsage = true
		rootCmd.SilenceErrors = true
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}

	if suffix != "" {
		cfg.Run.Suffix = suffix
	}
	if backupDir != "" {
		cfg.Run.BackupDir = backupDir
	}
	if workers > 0 {
		cfg.Run.Workers = workers
	}
	if cmd.Flags().Changed("stop-on-error") {
		cfg.Run.StopOnError = stopOnError
	}

	return cfg, nil
}

func runFull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service := app.NewService(logger.NewLogger(verbose))
	report, err := service.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	return reportError(report)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service := app.NewService(logger.NewLogger(verbose))
	_, err = service.Backup(context.Background(), cfg)
	return err
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service := app.NewService(logger.NewLogger(verbose))
	report, err := service.Sync(context.Background(), cfg)
	if err != nil {
		return err
	}
	return reportError(report)
}

func runListTables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service := app.NewService(logger.NewLogger(verbose))
	_, err = service.ListTables(context.Background(), cfg)
	return err
}

func reportError(report *replicate.Report) error {
	if report.OK() {
		return nil
	}
	return fmt.Errorf("%d of %d tables failed", len(report.Failed()), len(report.Outcomes))
}
