package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/proverbbot/core/bootstrap"
	"github.com/m3rciful/proverbbot/core/telegram/middleware"
	"github.com/m3rciful/proverbbot/internal/dataset"
	"github.com/m3rciful/proverbbot/internal/dispatch"
)

type sent struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	out  []sent
	fail error
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.out = append(f.out, sent{chatID: chatID, text: text})
	return nil
}

type stubContext struct {
	tele.Context
	msg   *tele.Message
	store map[string]interface{}
}

func newStub(text string) *stubContext {
	return &stubContext{
		msg: &tele.Message{
			Text:   text,
			Chat:   &tele.Chat{ID: 77},
			Sender: &tele.User{ID: 5, FirstName: "Ada", LastName: "Lovelace"},
		},
		store: map[string]interface{}{},
	}
}

func (s *stubContext) Update() tele.Update { return tele.Update{ID: 10, Message: s.msg} }
func (s *stubContext) Message() *tele.Message { return s.msg }
func (s *stubContext) Chat() *tele.Chat { return s.msg.Chat }
func (s *stubContext) Sender() *tele.User { return s.msg.Sender }
func (s *stubContext) Get(key string) interface{} { return s.store[key] }
func (s *stubContext) Set(key string, v interface{}) { s.store[key] = v }

func noBootstrap(context.Context, bootstrap.Options) (*bootstrap.Result, error) {
	return &bootstrap.Result{}, nil
}

func newTestApp(t *testing.T, sender dispatch.Sender) *App {
	t.Helper()
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Dataset.Source = SourceEmbedded
	a, err := New(context.Background(), cfg, Options{
		Sender:    sender,
		Bootstrap: noBootstrap,
		IntN:      func(int) int { return 0 },
	})
	require.NoError(t, err)
	return a
}

func TestRegistryMirrorsCatalog(t *testing.T) {
	a := newTestApp(t, &fakeSender{})
	assert.Equal(t, []string{"/start", "/random", "/search", "/id", "/help"}, a.Registry().Names())
	assert.NotNil(t, a.Registry().TextFallback())
	assert.NotNil(t, a.Registry().NonTextHandler())

	menu := a.Registry().ListCommands(true)
	require.Len(t, menu, 5)
	assert.Equal(t, "random", menu[1].Text)
}

func TestHandleRepliesToChat(t *testing.T) {
	fs := &fakeSender{}
	a := newTestApp(t, fs)

	c := newStub("/start")
	require.NoError(t, a.handle(c))
	require.Len(t, fs.out, 1)
	assert.Equal(t, int64(77), fs.out[0].chatID)
	assert.Equal(t, dispatch.WelcomeText, fs.out[0].text)
	assert.Equal(t, 1, middleware.Messages(c))
}

func TestHandleNonTextAndUnknown(t *testing.T) {
	fs := &fakeSender{}
	a := newTestApp(t, fs)

	require.NoError(t, a.handle(newStub("")))
	require.NoError(t, a.handle(newStub("hello there")))
	require.Len(t, fs.out, 2)
	assert.Equal(t, dispatch.TextOnlyText, fs.out[0].text)
	assert.Equal(t, dispatch.UnknownCommandText, fs.out[1].text)
}

func TestHandleIgnoresCaptions(t *testing.T) {
	fs := &fakeSender{}
	a := newTestApp(t, fs)
	bot, err := tele.NewBot(tele.Settings{Token: "123:abc", Offline: true})
	require.NoError(t, err)

	c := bot.NewContext(tele.Update{ID: 11, Message: &tele.Message{
		Caption: "/id 1",
		Photo:   &tele.Photo{File: tele.File{FileID: "photo"}},
		Chat:    &tele.Chat{ID: 77},
		Sender:  &tele.User{ID: 5},
	}})
	require.NoError(t, a.handle(c))
	require.Len(t, fs.out, 1)
	assert.Equal(t, dispatch.TextOnlyText, fs.out[0].text)
}

func TestHandleSurfacesTransportErrors(t *testing.T) {
	boom := errors.New("network down")
	a := newTestApp(t, &fakeSender{fail: boom})

	c := newStub("/random")
	err := a.handle(c)
	assert.ErrorIs(t, err, dispatch.ErrTransport)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, middleware.Messages(c))
}

func TestTelegramRunOptions(t *testing.T) {
	a := newTestApp(t, &fakeSender{})
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, a.Registry(), opts.Registry)
	assert.Same(t, &a.cfg.Config, opts.Config)
	// five commands, one text fallback, six non-text endpoints
	assert.Len(t, opts.Routes, 12)
	assert.NotEmpty(t, opts.Middlewares)
	assert.Nil(t, opts.Dispatcher)
}

func TestNewFailsOnEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"proverbs": []}`), 0o600))

	cfg := &Config{}
	cfg.Dataset = DatasetConfig{Source: SourceFile, Path: path}
	_, err := New(context.Background(), cfg, Options{Sender: &fakeSender{}, Bootstrap: noBootstrap})
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestNewPropagatesBootstrapError(t *testing.T) {
	boom := errors.New("db down")
	_, err := New(context.Background(), &Config{}, Options{
		Sender: &fakeSender{},
		Bootstrap: func(context.Context, bootstrap.Options) (*bootstrap.Result, error) {
			return nil, boom
		},
	})
	assert.ErrorIs(t, err, boom)
}

func TestBootstrapOptions(t *testing.T) {
	cfg := &Config{SkipMigrations: true}
	opts := BootstrapOptions(cfg)
	assert.True(t, opts.SkipMigrations)
	assert.NotNil(t, opts.Migrate)
	assert.Empty(t, opts.Modules.Seeders)

	cfg.Dataset.SeedOnStart = true
	assert.Len(t, BootstrapOptions(cfg).Modules.Seeders, 1)
}

func TestSeedSource(t *testing.T) {
	assert.Equal(t, dataset.Embedded{}, SeedSource(DatasetConfig{}))
	assert.Equal(t, dataset.JSONFile{Path: "p.json"}, SeedSource(DatasetConfig{Path: "p.json"}))
}

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestLoadDatasetFromPostgres(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT id, proverb, translation, wisdom FROM proverbs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "proverb", "translation", "wisdom"}).
			AddRow(1, "p1", "t1", "w1").
			AddRow(2, "p2", "t2", "w2"))

	data, err := LoadDataset(context.Background(), DatasetConfig{Source: SourcePostgres}, db)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDatasetPostgresNeedsDB(t *testing.T) {
	_, err := LoadDataset(context.Background(), DatasetConfig{Source: SourcePostgres}, nil)
	assert.Error(t, err)
}

func TestSeederInsertsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"proverbs": [
		{"id": 1, "proverb": "p1", "translation": "t1", "wisdom": "w1"},
		{"id": 2, "proverb": "p2", "translation": "t2", "wisdom": "w2"}
	]}`), 0o600))

	db, mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO proverbs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO proverbs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM proverbs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	require.NoError(t, Seeder(dataset.JSONFile{Path: path}).Seed(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeederRejectsInvalidDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"proverbs": [{"id": 0, "proverb": "p"}]}`), 0o600))

	db, mock := mockDB(t)
	err := Seeder(dataset.JSONFile{Path: path}).Seed(context.Background(), db)
	assert.ErrorIs(t, err, dataset.ErrInvalidID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
