package dispatch

import (
	"fmt"

	"github.com/m3rciful/proverbbot/internal/query"
)

// User-facing reply texts.
const (
	WelcomeText = `Welcome to the Yoruba Proverb Bot!

I can share with you some of the most popular proverbs from the Yoruba culture.
Just type /random to receive a random one.
Or type /help to see a list of all available commands.
Enjoy!`

	UnknownCommandText = "Unknown command. Please try again.\nTo see a list of available commands, type /help."
	TextOnlyText       = "Sorry, I can only process text messages."
	InvalidCommandText = "Invalid command. Please try again."
	EmptyPoolText      = "No proverbs are available right now."
)

// NotFoundText is the reply for an /id lookup that matched nothing.
func NotFoundText(id string) string {
	return fmt.Sprintf("Proverb with id %s not found.", id)
}

// NoMatchesText is the reply for a /search that matched nothing.
func NoMatchesText(q string) string {
	return "No proverbs found for query: " + q
}

// CountErrorText is the reply for a rejected count argument.
func CountErrorText(err *query.CountError) string {
	switch err.Kind {
	case query.LimitExceeded:
		return fmt.Sprintf("Max limit is %d", query.MaxCount)
	case query.BelowMinimum:
		return fmt.Sprintf("Min limit is %d", query.MinCount)
	}
	return "Invalid argument: " + err.Token
}
