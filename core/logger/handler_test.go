package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	read := func() string {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
	return slog.New(h), read
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", CompProverbs), slog.LevelInfo, "random.sent",
		slog.String("status", "OK"),
		slog.Int("count", 3),
	)

	tokens := strings.Split(read(), " ")
	expected := []string{"ts=", "level=INFO", "component=proverbs", "event=random.sent", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "count=3"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%v)", len(tokens), tokens)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, read := newTestLogger(t, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")

	LogEvent(ctx, log.With("component", CompSender), slog.LevelError, "send.fail",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.Int64("proverb_id", 12),
	)

	line := read()
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"tg.sender"`, `"event":"send.fail"`, `"status":"fail"`, `"rid":"rid-json"`, `"proverb_id":12`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := BuildRID(123, 456, 789)

	log, read := newTestLogger(t, formatKV)
	LogEvent(WithRID(context.Background(), raw), log, slog.LevelInfo, "rid.test")
	line := read()
	if !strings.Contains(line, "rid="+CompactRID(raw)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}

	log, read = newTestLogger(t, formatJSON)
	LogEvent(WithRID(context.Background(), raw), log, slog.LevelInfo, "rid.test")
	line = read()
	if !strings.Contains(line, `"rid":"3f.co.lx"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+raw+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"component":"app"`) {
		t.Fatalf("expected default component, got %s", line)
	}
}

func TestStructuredHandlerDurationsAndGroups(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	LogEvent(context.Background(), log.WithGroup("db"), slog.LevelInfo, "ping",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.String("host", "localhost"),
		slog.String("empty", ""),
	)
	line := read()
	for _, want := range []string{"db.duration_ms=2", "db.host=localhost", "db.event=ping"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %s", want, line)
		}
	}
	if strings.Contains(line, "empty") {
		t.Fatalf("empty values should be pruned: %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	LogEvent(context.Background(), log, slog.LevelDebug, "hidden")
	if line := read(); line != "" {
		t.Fatalf("debug line should be filtered, got %s", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b\u200bc\td", 10); got != "abc\td" {
		t.Fatalf("sanitize = %q", got)
	}
	if got := SanitizeLimit("проверка", 3); got != "про" {
		t.Fatalf("limit = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("zero limit = %q", got)
	}
}

func TestCompactRIDPassthrough(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2", "1:x:3"} {
		if got := CompactRID(in); got != in {
			t.Fatalf("CompactRID(%q) = %q", in, got)
		}
	}
}

func TestHelpersNoopBeforeInit(t *testing.T) {
	if L != nil {
		t.Skip("global logger already initialised")
	}
	Info(context.Background(), CompApp, "noop")
	if Component("x") != nil {
		t.Fatal("Component should be nil before init")
	}
}
