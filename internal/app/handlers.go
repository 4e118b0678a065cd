package app

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/proverbbot/core/telegram"
	"github.com/m3rciful/proverbbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/proverbbot/core/telegram/helpers"
	"github.com/m3rciful/proverbbot/core/telegram/middleware"
	"github.com/m3rciful/proverbbot/internal/dispatch"
)

// buildRegistry registers every catalog command plus the text and non-text
// fallbacks. All of them feed the same dispatcher, which re-parses the text,
// so commands missing from the catalog still get the unknown-command reply.
func (a *App) buildRegistry() (*tg.Registry, error) {
	reg := tg.NewRegistry()
	for _, spec := range a.proverbs.Catalog().Specs() {
		if err := reg.RegisterCommand(spec.Name, commands.Command{
			Handler:     a.handle,
			Description: spec.Description,
		}); err != nil {
			return nil, err
		}
	}
	reg.SetTextFallback(a.handle)
	reg.SetNonTextHandler(a.handle)
	return reg, nil
}

// handle converts the update into a dispatch.Message. Media, stickers and
// other non-text messages arrive with an empty Text; captions are ignored.
func (a *App) handle(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	msg := dispatch.Message{
		ChatID:     chat.ID,
		Text:       messageText(c),
		SenderName: tghelpers.DisplayName(c.Sender()),
	}
	if err := a.proverbs.OnMessage(tghelpers.BuildContext(c), msg); err != nil {
		return err
	}
	middleware.AddMessages(c, 1)
	return nil
}

// messageText returns the message body. tele.Context.Text falls back to the
// caption, which would let a captioned photo run a command.
func messageText(c tele.Context) string {
	if m := c.Message(); m != nil {
		return m.Text
	}
	return ""
}
