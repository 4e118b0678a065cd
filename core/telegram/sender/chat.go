package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/proverbbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// MessageAPI is the subset of *tele.Bot needed to deliver a text message.
type MessageAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// ChatSender sends plain text to a chat id. With a Dispatcher attached,
// sends are queued and errors are reported by the worker instead of the caller.
type ChatSender struct {
	api   MessageAPI
	queue *Dispatcher
}

// NewChatSender returns a sender bound to api. queue may be nil for inline sends.
func NewChatSender(api MessageAPI, queue *Dispatcher) *ChatSender {
	return &ChatSender{api: api, queue: queue}
}

// SendMessage delivers text to chatID without any parse mode.
func (s *ChatSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if s.api == nil {
		return errors.New("telegram sender: nil api")
	}
	run := func(context.Context) error {
		if _, err := s.api.Send(tele.ChatID(chatID), text); err != nil {
			return fmt.Errorf("send message: %w", RedactedError(err))
		}
		return nil
	}
	if s.queue == nil {
		return run(ctx)
	}

	err := s.queue.Enqueue(ctx, "sendMessage", run)
	if errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed) {
		logger.Warn(ctx, logger.CompSender, "queue.fallback",
			slog.String("status", "skip"),
			slog.Int("queue_depth", s.queue.Pending()),
			slog.String("err", err.Error()),
		)
		return run(ctx)
	}
	return err
}

// RedactedError wraps err so Error() hides bot tokens while errors.Is and
// errors.As still reach the cause.
func RedactedError(err error) error {
	if err == nil {
		return nil
	}
	return redactedError{err: err}
}

type redactedError struct{ err error }

func (e redactedError) Error() string { return RedactToken(e.err.Error()) }
func (e redactedError) Unwrap() error { return e.err }
