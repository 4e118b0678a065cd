// Package dispatch turns incoming chat messages into proverb bot replies.
//
// The Dispatcher is stateless between messages: it reads only the immutable
// dataset and help catalog, so OnMessage may run concurrently.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/proverbbot/core/logger"
	"github.com/m3rciful/proverbbot/internal/dataset"
	"github.com/m3rciful/proverbbot/internal/help"
	"github.com/m3rciful/proverbbot/internal/query"
)

// ErrTransport wraps failures returned by the Sender.
var ErrTransport = errors.New("dispatch: send failed")

// Message is an inbound chat message. An empty Text means the message
// carried no text (photo, sticker, etc).
type Message struct {
	ChatID     int64
	Text       string
	SenderName string
}

// Sender delivers a reply to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Options wires the collaborators of a Dispatcher.
type Options struct {
	Dataset *dataset.Dataset
	Catalog *help.Catalog
	Sender  Sender
	// IntN overrides the random source; nil uses query.DefaultIntN.
	IntN query.IntN
}

// Dispatcher routes messages to command handlers.
type Dispatcher struct {
	data    *dataset.Dataset
	catalog *help.Catalog
	sender  Sender
	intn    query.IntN
}

// New validates opts and returns a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Dataset == nil {
		return nil, errors.New("dispatch: nil dataset")
	}
	if opts.Sender == nil {
		return nil, errors.New("dispatch: nil sender")
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = help.DefaultCatalog()
	}
	intn := opts.IntN
	if intn == nil {
		intn = query.DefaultIntN
	}
	return &Dispatcher{
		data:    opts.Dataset,
		catalog: catalog,
		sender:  opts.Sender,
		intn:    intn,
	}, nil
}

// Catalog exposes the help catalog used for /help.
func (d *Dispatcher) Catalog() *help.Catalog {
	return d.catalog
}

// response is the outcome of a handler before it is sent.
type response struct {
	text  string
	event string
	attrs []slog.Attr
}

// OnMessage handles one message and sends the reply. Only transport
// failures are returned; they are logged before returning.
func (d *Dispatcher) OnMessage(ctx context.Context, msg Message) error {
	resp := d.respond(msg)

	if err := d.sender.SendMessage(ctx, msg.ChatID, resp.text); err != nil {
		logger.Error(ctx, logger.CompProverbs, "send.fail", append(msgAttrs(msg),
			slog.String("status", "fail"),
			slog.String("cause", resp.event),
			slog.String("err", err.Error()),
		)...)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	attrs := append(msgAttrs(msg), slog.String("status", "ok"))
	logger.Info(ctx, logger.CompProverbs, resp.event, append(attrs, resp.attrs...)...)
	return nil
}

func (d *Dispatcher) respond(msg Message) response {
	if strings.TrimSpace(msg.Text) == "" {
		return response{text: TextOnlyText, event: "text_only.sent"}
	}
	in := ParseInput(msg.Text)
	cmd, ok := LookupCommand(in.Command)
	if !ok {
		return response{
			text:  UnknownCommandText,
			event: "unknown.sent",
			attrs: []slog.Attr{slog.String("payload", logger.SanitizeLimit(in.Command, 64))},
		}
	}
	return d.handle(cmd, in.Args)
}

func (d *Dispatcher) handle(cmd Command, args []string) response {
	switch cmd {
	case CommandStart:
		return response{text: WelcomeText, event: "start.sent"}
	case CommandHelp:
		return d.handleHelp(args)
	case CommandRandom:
		return d.handleRandom(args)
	case CommandSearch:
		return d.handleSearch(args)
	case CommandID:
		return d.handleID(args)
	}
	return response{text: UnknownCommandText, event: "unknown.sent"}
}

func (d *Dispatcher) handleHelp(args []string) response {
	if len(args) == 0 {
		return response{text: d.catalog.Render(), event: "help.sent"}
	}
	name := args[0]
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	text, ok := d.catalog.RenderCommand(name)
	if !ok {
		return response{
			text:  UnknownCommandText,
			event: "help.unknown",
			attrs: []slog.Attr{slog.String("payload", logger.SanitizeLimit(args[0], 64))},
		}
	}
	return response{text: text, event: "help.sent", attrs: []slog.Attr{slog.String("payload", name)}}
}

func (d *Dispatcher) handleRandom(args []string) response {
	count := query.DefaultCount
	if len(args) > 0 {
		n, err := query.ParseCount(args[len(args)-1])
		if err != nil {
			return countErrorResponse(err)
		}
		count = n
	}
	records, err := query.RandomSample(d.data.All(), count, d.intn)
	if err != nil {
		return response{text: EmptyPoolText, event: "random.empty_pool"}
	}
	return response{
		text:  query.FormatAll(records),
		event: "random.sent",
		attrs: []slog.Attr{slog.Int("count", count)},
	}
}

func (d *Dispatcher) handleSearch(args []string) response {
	if len(args) == 0 {
		return response{text: InvalidCommandText, event: "search.invalid"}
	}
	count := query.DefaultCount
	rest, token, hasCount := query.SplitCount(args)
	if hasCount {
		n, err := query.ParseCount(token)
		if err != nil {
			return countErrorResponse(err)
		}
		count = n
	}
	q := strings.Join(rest, " ")
	attrs := []slog.Attr{slog.String("query", logger.SanitizeLimit(q, 128))}

	matches := query.Search(d.data.All(), q)
	if len(matches) == 0 {
		return response{text: NoMatchesText(q), event: "search.empty", attrs: attrs}
	}
	records, err := query.RandomSample(matches, count, d.intn)
	if err != nil {
		return response{text: NoMatchesText(q), event: "search.empty", attrs: attrs}
	}
	return response{
		text:  query.FormatAll(records),
		event: "search.sent",
		attrs: append(attrs, slog.Int("count", count), slog.Int("matches", len(matches))),
	}
}

func (d *Dispatcher) handleID(args []string) response {
	raw := strings.Join(args, " ")
	attrs := []slog.Attr{slog.String("payload", logger.SanitizeLimit(raw, 64))}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return response{text: NotFoundText(raw), event: "id.not_found", attrs: attrs}
	}
	rec, ok := d.data.ByID(id)
	if !ok {
		return response{text: NotFoundText(raw), event: "id.not_found", attrs: attrs}
	}
	return response{
		text:  query.Format(rec),
		event: "id.sent",
		attrs: []slog.Attr{slog.Int64("proverb_id", rec.ID)},
	}
}

func countErrorResponse(err error) response {
	var ce *query.CountError
	if !errors.As(err, &ce) {
		return response{text: UnknownCommandText, event: "args.invalid"}
	}
	attrs := []slog.Attr{
		slog.String("payload", logger.SanitizeLimit(ce.Token, 64)),
		slog.String("err_code", ce.Code()),
	}
	return response{text: CountErrorText(ce), event: "args.invalid", attrs: attrs}
}

func msgAttrs(msg Message) []slog.Attr {
	attrs := make([]slog.Attr, 0, 6)
	if msg.ChatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", msg.ChatID))
	}
	if msg.SenderName != "" {
		attrs = append(attrs, slog.String("sender", logger.SanitizeLimit(msg.SenderName, 64)))
	}
	return attrs
}
