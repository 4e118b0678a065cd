package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/proverbbot/core/logger"
	tghelpers "github.com/m3rciful/proverbbot/core/telegram/helpers"
	"github.com/m3rciful/proverbbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary tags the update with handlerName, runs fn, and writes one
// summary line with the outcome and the number of replies sent.
func handleWithSummary(c tele.Context, handlerName string, fn tele.HandlerFunc) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, handlerName)
	err := fn(c)

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("outcome", logger.Status(err)),
		slog.Int("messages", middleware.Messages(c)),
		slog.Duration("duration", logger.Took(start)),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Event(ctx, logger.CompTelegram, level, "handler.handled", attrs...)
	return err
}

// handlerName turns "/random" into "random" for log fields.
func handlerName(endpoint string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(endpoint), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode prefers an explicit Code() on the error chain.
func errorCode(err error) string {
	var c interface{ Code() string }
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	return "HANDLER_ERROR"
}
