package router

import (
	tg "github.com/m3rciful/proverbbot/core/telegram"
	"github.com/m3rciful/proverbbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// NonTextEndpoints are the update kinds answered by the registry's non-text handler.
// OnMedia covers photos, stickers, voice, video, audio, animations and documents.
var NonTextEndpoints = []string{
	tele.OnMedia,
	tele.OnContact,
	tele.OnLocation,
	tele.OnVenue,
	tele.OnDice,
	tele.OnPoll,
}

// MessageRoutes wires plain text that matched no command to the registry's
// text fallback and every non-text message kind to its non-text handler.
func MessageRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	var routes []tg.Route
	if fb := reg.TextFallback(); fb != nil {
		routes = append(routes, tg.Route{Endpoint: tele.OnText, Handler: wrap("text", fb)})
	}
	if nt := reg.NonTextHandler(); nt != nil {
		h := wrap("non_text", nt)
		for _, ep := range NonTextEndpoints {
			routes = append(routes, tg.Route{Endpoint: ep, Handler: h})
		}
	}
	return routes
}

// wrap applies per-route recovery and the summary log line.
func wrap(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(func(c tele.Context) error {
		return handleWithSummary(c, name, h)
	})
}
