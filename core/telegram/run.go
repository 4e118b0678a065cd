// Package telegram runs a telebot bot: poller selection, middleware, routes,
// command menu publishing, and graceful shutdown.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/proverbbot/core/config"
	"github.com/m3rciful/proverbbot/core/logger"
	tghelpers "github.com/m3rciful/proverbbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/proverbbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint ("/cmd", tele.OnText, ...).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config *coreconfig.Config
	// Bot is built from Config when nil.
	Bot      *tele.Bot
	Registry *Registry
	// Dispatcher, when set, is closed after the bot stops so queued replies drain.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes running components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Registry   *Registry
	Dispatcher *tgsender.Dispatcher
}

// NewBot builds a bot from cfg with the tuned HTTP client and error logging.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}
	poller := BuildPoller(cfg)
	client := BuildHTTPClient(HTTPClientOptions{})
	if lp, ok := poller.(*tele.LongPoller); ok && client.Timeout <= lp.Timeout {
		client.Timeout = lp.Timeout + 10*time.Second
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  client,
		OnError: logUpdateError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", tgsender.RedactedError(err))
	}
	return bot, nil
}

func logUpdateError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, logger.CompTelegram, "update.fail",
		slog.String("status", "fail"),
		slog.String("err", tgsender.RedactToken(err.Error())),
		slog.String("err_code", tgsender.Classify(err)),
	)
}

// RunTelegram wires middleware and routes, then runs the bot until ctx is done.
// A cancelled ctx is a clean shutdown and returns nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config

	bot := opts.Bot
	if bot == nil {
		var err error
		if bot, err = NewBot(cfg); err != nil {
			return err
		}
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	rt := Runtime{Bot: bot, Registry: reg, Dispatcher: opts.Dispatcher}
	closeDispatcher := func() {
		if opts.Dispatcher == nil {
			return
		}
		opts.Dispatcher.Close()
		failed := opts.Dispatcher.ErrorCount()
		status := "ok"
		if failed > 0 {
			status = "fail"
		}
		logger.Info(ctx, logger.CompSender, "queue.closed",
			slog.String("status", status),
			slog.Uint64("failed", failed),
		)
	}

	switch p := bot.Poller.(type) {
	case *tele.Webhook:
		logger.Info(ctx, logger.CompTelegram, "mode",
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	case *tele.LongPoller:
		logger.Info(ctx, logger.CompTelegram, "mode",
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("timeout", p.Timeout),
		)
		if !opts.DisableWebhookCleanup {
			if err := bot.RemoveWebhook(false); err != nil {
				logger.Warn(ctx, logger.CompTelegram, "delete_webhook",
					slog.String("status", "fail"),
					slog.String("err", tgsender.RedactToken(err.Error())),
				)
			}
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}

	if cfg.Telegram.PublishCommands {
		// the menu is cosmetic; a failure is logged and the bot keeps running
		_ = InitBotCommands(bot, reg)
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			closeDispatcher()
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	closeDispatcher()

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
