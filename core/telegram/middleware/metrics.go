package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const messagesKey = "messages"

// countingContext counts replies sent through tele.Context.
type countingContext struct{ tele.Context }

func (m countingContext) inc() {
	n, _ := m.Get(messagesKey).(int)
	m.Set(messagesKey, n+1)
}

func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.inc()
	}
	return err
}

func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.inc()
	}
	return err
}

// MessageMetricsMiddleware resets the reply counter and wraps the context so
// replies sent through it are counted.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(messagesKey, 0)
		return next(countingContext{Context: c})
	}
}

// AddMessages bumps the reply counter for sends that bypass tele.Context,
// such as direct Bot.Send calls.
func AddMessages(c tele.Context, n int) {
	cur, _ := c.Get(messagesKey).(int)
	c.Set(messagesKey, cur+n)
}

// Messages returns the number of replies recorded for the update.
func Messages(c tele.Context) int {
	n, _ := c.Get(messagesKey).(int)
	return n
}
