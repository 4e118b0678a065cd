package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/proverbbot/core/bootstrap"
	coredatabase "github.com/m3rciful/proverbbot/core/database"
	"github.com/m3rciful/proverbbot/core/logger"
	tg "github.com/m3rciful/proverbbot/core/telegram"
	"github.com/m3rciful/proverbbot/core/telegram/router"
	tgsender "github.com/m3rciful/proverbbot/core/telegram/sender"
	"github.com/m3rciful/proverbbot/internal/dataset"
	"github.com/m3rciful/proverbbot/internal/dispatch"
	"github.com/m3rciful/proverbbot/internal/help"
	"github.com/m3rciful/proverbbot/internal/query"
	"github.com/m3rciful/proverbbot/migrations"
)

// Options overrides collaborators; zero values build the real ones.
type Options struct {
	// Bot is built from the config when nil.
	Bot *tele.Bot
	// Sender replaces the Telegram sender.
	Sender dispatch.Sender
	// Bootstrap replaces bootstrap.Run.
	Bootstrap func(context.Context, bootstrap.Options) (*bootstrap.Result, error)
	IntN      query.IntN
}

// App is a fully wired proverb bot ready to be handed to telegram.RunTelegram.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	bot      *tele.Bot
	queue    *tgsender.Dispatcher
	proverbs *dispatch.Dispatcher
	registry *tg.Registry
}

// New bootstraps infrastructure, loads the dataset, and wires the handlers.
// Startup fails when the dataset is empty or invalid.
func New(ctx context.Context, cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	run := opts.Bootstrap
	if run == nil {
		run = bootstrap.Run
	}
	infra, err := run(ctx, BootstrapOptions(cfg))
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, infra: infra}
	fail := func(err error) (*App, error) {
		_ = a.Close()
		return nil, err
	}

	data, err := LoadDataset(ctx, cfg.Dataset, infra.DB)
	if err != nil {
		return fail(err)
	}

	sender := opts.Sender
	if sender == nil {
		a.bot = opts.Bot
		if a.bot == nil {
			if a.bot, err = tg.NewBot(&cfg.Config); err != nil {
				return fail(err)
			}
		}
		if cfg.Sender.Async {
			a.queue = tgsender.NewDispatcher(tgsender.Options{
				QueueSize: cfg.Sender.QueueSize,
				Workers:   cfg.Sender.Workers,
			})
		}
		sender = tgsender.NewChatSender(a.bot, a.queue)
	}

	a.proverbs, err = dispatch.New(dispatch.Options{
		Dataset: data,
		Catalog: help.DefaultCatalog(),
		Sender:  sender,
		IntN:    opts.IntN,
	})
	if err != nil {
		return fail(err)
	}
	if a.registry, err = a.buildRegistry(); err != nil {
		return fail(err)
	}
	return a, nil
}

// TelegramRunOptions implements the runner contract.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := append(router.CommandRoutes(a.registry), router.MessageRoutes(a.registry)...)
	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Bot:         a.bot,
		Registry:    a.registry,
		Dispatcher:  a.queue,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
	}, nil
}

// Registry returns the command registry built from the help catalog.
func (a *App) Registry() *tg.Registry {
	return a.registry
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.infra.Close()
}

// BootstrapOptions maps the config onto the core bootstrap pipeline.
func BootstrapOptions(cfg *Config) bootstrap.Options {
	opts := bootstrap.Options{
		Config:         &cfg.Config,
		Database:       cfg.Database,
		SkipMigrations: cfg.SkipMigrations,
		Migrate: func(ctx context.Context, db coredatabase.Config) error {
			return coredatabase.RunMigrations(ctx, db, migrations.FS, coredatabase.Up)
		},
	}
	if cfg.Dataset.SeedOnStart {
		opts.Modules.Seeders = append(opts.Modules.Seeders, Seeder(SeedSource(cfg.Dataset)))
	}
	return opts
}

// SeedSource is the JSON dataset copied into Postgres by seeding.
func SeedSource(ds DatasetConfig) dataset.Source {
	if ds.Path != "" {
		return dataset.JSONFile{Path: ds.Path}
	}
	return dataset.Embedded{}
}

// Seeder validates src, inserts its records into the proverbs table, and
// logs the resulting table size.
func Seeder(src dataset.Source) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		data, err := dataset.Load(ctx, src)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		inserted, err := dataset.Seed(ctx, db, data.All())
		if err != nil {
			return err
		}
		total, err := dataset.Count(ctx, db)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info(ctx, logger.CompSeed, "proverbs.total",
			slog.String("status", "ok"),
			slog.Int("seeded", inserted),
			slog.Int("count", total),
		)
		return nil
	})
}

// LoadDataset reads the configured source. db is required for the postgres source.
func LoadDataset(ctx context.Context, ds DatasetConfig, db *sqlx.DB) (*dataset.Dataset, error) {
	var src dataset.Source
	switch ds.Source {
	case SourcePostgres:
		if db == nil {
			return nil, errors.New("app: postgres dataset source requires a database")
		}
		src = dataset.Postgres{DB: db}
	case SourceFile:
		src = dataset.JSONFile{Path: ds.Path}
	default:
		src = dataset.Embedded{}
	}

	data, err := dataset.Load(ctx, src)
	if err != nil {
		logger.Error(ctx, logger.CompProverbs, "dataset.load",
			slog.String("status", "fail"),
			slog.String("source", sourceName(ds.Source)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info(ctx, logger.CompProverbs, "dataset.load",
		slog.String("status", "ok"),
		slog.String("source", sourceName(ds.Source)),
		slog.Int("count", data.Len()),
	)
	return data, nil
}

func sourceName(s string) string {
	if s == "" {
		return SourceEmbedded
	}
	return s
}
