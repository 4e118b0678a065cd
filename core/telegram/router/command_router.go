// Package router turns a telegram.Registry into routes for tele.Bot.Handle.
package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/proverbbot/core/logger"
	tg "github.com/m3rciful/proverbbot/core/telegram"
)

// CommandRoutes returns one route per registered command, in registration order.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	names := reg.Names()
	routes := make([]tg.Route, 0, len(names))
	for _, name := range names {
		cmd, _ := reg.LookupCommand(name)
		h, label := cmd.Handler, handlerName(name)
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  wrap(label, h),
		})
	}
	logger.Info(context.Background(), logger.CompWire, "routes.commands",
		slog.String("status", "ok"),
		slog.Int("count", len(routes)),
	)
	return routes
}
