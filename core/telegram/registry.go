package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/proverbbot/core/logger"
	"github.com/m3rciful/proverbbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands in registration order plus the fallbacks used
// for plain text and non-text messages.
type Registry struct {
	order        []string
	commands     map[string]commands.Command
	textFallback tele.HandlerFunc
	nonText      tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

// RegisterCommand adds a command. Names must start with "/" and be unique.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	ctx := context.Background()
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		logger.Warn(ctx, logger.CompWire, "register.command.skip",
			slog.String("command", name),
			slog.String("cause", "invalid"),
		)
		return fmt.Errorf("telegram: invalid command %q", name)
	case !strings.HasPrefix(name, "/"):
		logger.Warn(ctx, logger.CompWire, "register.command.skip",
			slog.String("command", name),
			slog.String("cause", "no_slash_prefix"),
		)
		return fmt.Errorf("telegram: command %q must start with /", name)
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(ctx, logger.CompWire, "register.command.duplicate", slog.String("command", name))
		return fmt.Errorf("telegram: command %q already registered", name)
	}
	r.order = append(r.order, name)
	r.commands[name] = cmd
	return nil
}

// Names returns command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ListCommands returns the Telegram menu entries in registration order.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.order))
	for _, name := range r.order {
		meta := r.commands[name]
		if visibleOnly && meta.Hidden {
			continue
		}
		// the Bot API expects menu entries without the leading slash
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	return list
}

// LookupCommand finds a command by name, with or without the leading slash.
func (r *Registry) LookupCommand(name string) (commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// SetTextFallback sets the handler for text that matched no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// SetNonTextHandler sets the handler for photos, stickers and other non-text messages.
func (r *Registry) SetNonTextHandler(h tele.HandlerFunc) {
	r.nonText = h
}

// NonTextHandler returns the current non-text handler.
func (r *Registry) NonTextHandler() tele.HandlerFunc {
	return r.nonText
}

// CommandSetter is the subset of *tele.Bot used to publish the command menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot CommandSetter, reg *Registry) error {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.Error(context.Background(), logger.CompWire, "register.commands.set_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("telegram: set commands: %w", err)
	}
	logger.Info(context.Background(), logger.CompWire, "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
	return nil
}
