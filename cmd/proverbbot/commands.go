package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m3rciful/proverbbot/core/bootstrap"
	"github.com/m3rciful/proverbbot/core/buildinfo"
	corecmd "github.com/m3rciful/proverbbot/core/cmd"
	coredatabase "github.com/m3rciful/proverbbot/core/database"
	"github.com/m3rciful/proverbbot/core/logger"
	"github.com/m3rciful/proverbbot/internal/app"
	"github.com/m3rciful/proverbbot/migrations"
)

func newRunCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(*configFile)
		},
	}
}

func runBot(configFile string) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configFile,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.New(ctx, appCfg, app.Options{})
		},
	})
}

func newMigrateCommand(configFile *string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the proverbs schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(*configFile, coredatabase.Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(*configFile, coredatabase.Down)
			},
		},
	)
	return migrateCmd
}

func migrate(configFile string, dir coredatabase.Direction) error {
	cfg, err := loadDatabaseConfig(configFile)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	logger.InitLogger(&cfg.Config)
	defer shutdownLogger()

	return coredatabase.RunMigrations(ctx, cfg.Database, migrations.FS, dir)
}

func newSeedCommand(configFile *string) *cobra.Command {
	var (
		path           string
		skipMigrations bool
	)
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the JSON dataset into Postgres",
		Long: "Loads proverbs from --path (or dataset.path, or the embedded dataset) and inserts\n" +
			"the ids missing from the proverbs table. Existing rows are left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig(*configFile)
			if err != nil {
				return err
			}
			if path != "" {
				cfg.Dataset.Path = path
			}
			cfg.Dataset.SeedOnStart = true
			cfg.SkipMigrations = skipMigrations

			ctx, stop := signalContext()
			defer stop()
			defer shutdownLogger()

			res, err := bootstrap.Run(ctx, app.BootstrapOptions(cfg))
			if err != nil {
				return err
			}
			return res.Close()
		},
	}
	seedCmd.Flags().StringVar(&path, "path", "", "JSON dataset to load instead of the configured one")
	seedCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations before seeding")
	return seedCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return err
		},
	}
}

func loadDatabaseConfig(configFile string) (*app.Config, error) {
	path, err := corecmd.ResolveConfigPath(configFile, "", defaultConfigPath)
	if err != nil {
		return nil, err
	}
	return app.LoadDatabase(path)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func shutdownLogger() {
	if err := logger.Shutdown(); err != nil {
		log.Printf("logger shutdown error: %v", err)
	}
}
