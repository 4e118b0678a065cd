package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/proverbbot/core/config"
	tgsender "github.com/m3rciful/proverbbot/core/telegram/sender"
)

// scriptedPoller delivers a fixed set of updates and then waits for stop.
type scriptedPoller struct {
	updates []tele.Update
}

func (p *scriptedPoller) Poll(_ *tele.Bot, dest chan tele.Update, stop chan struct{}) {
	for _, u := range p.updates {
		select {
		case dest <- u:
		case <-stop:
			return
		}
	}
	<-stop
}

func offlineBot(t *testing.T, updates ...tele.Update) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{
		Token:       "123:test",
		Offline:     true,
		Synchronous: true,
		Poller:      &scriptedPoller{updates: updates},
	})
	require.NoError(t, err)
	return bot
}

func TestRunTelegramRoutesUpdatesAndStops(t *testing.T) {
	bot := offlineBot(t, tele.Update{ID: 1, Message: &tele.Message{
		Text:   "hello",
		Chat:   &tele.Chat{ID: 9},
		Sender: &tele.User{ID: 9},
	}})

	got := make(chan string, 1)
	var started, stopped bool
	var usedMiddleware bool
	disp := tgsender.NewDispatcher(tgsender.Options{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- RunTelegram(ctx, RunOptions{
			Config:     &coreconfig.Config{},
			Bot:        bot,
			Dispatcher: disp,
			Middlewares: []Middleware{{Name: "mark", Use: func(next tele.HandlerFunc) tele.HandlerFunc {
				return func(c tele.Context) error {
					usedMiddleware = true
					return next(c)
				}
			}}},
			Routes: []Route{{Endpoint: tele.OnText, Handler: func(c tele.Context) error {
				got <- c.Text()
				return nil
			}}},
			OnStart: func(_ context.Context, rt Runtime) error {
				started = rt.Bot == bot
				return nil
			},
			OnStop: func(context.Context, Runtime) error {
				stopped = true
				return nil
			},
		})
	}()

	select {
	case text := <-got:
		assert.Equal(t, "hello", text)
	case <-time.After(5 * time.Second):
		t.Fatal("update was not routed")
	}
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunTelegram did not stop")
	}
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, usedMiddleware)
	assert.ErrorIs(t, disp.Enqueue(context.Background(), "x", func(context.Context) error { return nil }), tgsender.ErrQueueClosed)
}

func TestRunTelegramOnStartError(t *testing.T) {
	bot := offlineBot(t)
	disp := tgsender.NewDispatcher(tgsender.Options{Workers: 1})
	err := RunTelegram(context.Background(), RunOptions{
		Config:     &coreconfig.Config{},
		Bot:        bot,
		Dispatcher: disp,
		OnStart:    func(context.Context, Runtime) error { return assert.AnError },
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, disp.Enqueue(context.Background(), "x", func(context.Context) error { return nil }), tgsender.ErrQueueClosed)
}

func TestRunTelegramNilConfig(t *testing.T) {
	assert.Error(t, RunTelegram(context.Background(), RunOptions{}))
}

func TestDefaultMiddlewares(t *testing.T) {
	names := func(mws []Middleware) []string {
		var out []string
		for _, m := range mws {
			out = append(out, m.Name)
		}
		return out
	}
	assert.Equal(t, []string{"recover", "logger", "metrics"}, names(DefaultMiddlewares(nil, nil)))

	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}}
	assert.Equal(t, []string{"recover", "rate_limit", "logger", "metrics"}, names(DefaultMiddlewares(cfg, nil)))
}
