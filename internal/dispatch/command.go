package dispatch

import "strings"

// Command is the closed set of commands the bot understands.
type Command int

const (
	// CommandStart replies with the welcome text.
	CommandStart Command = iota + 1
	// CommandHelp lists the catalog or documents one command.
	CommandHelp
	// CommandRandom sends one or more random proverbs.
	CommandRandom
	// CommandSearch matches proverbs by translation.
	CommandSearch
	// CommandID looks a proverb up by id.
	CommandID
)

var commandTokens = map[string]Command{
	"/start":  CommandStart,
	"/help":   CommandHelp,
	"/random": CommandRandom,
	"/search": CommandSearch,
	"/id":     CommandID,
}

// String returns the token that selects the command.
func (c Command) String() string {
	switch c {
	case CommandStart:
		return "/start"
	case CommandHelp:
		return "/help"
	case CommandRandom:
		return "/random"
	case CommandSearch:
		return "/search"
	case CommandID:
		return "/id"
	}
	return ""
}

// LookupCommand maps a token to a command. Matching is case-sensitive.
func LookupCommand(token string) (Command, bool) {
	c, ok := commandTokens[token]
	return c, ok
}

// ParsedInput is the tokenized form of a message.
type ParsedInput struct {
	Command string
	Args    []string
}

// ParseInput splits text on whitespace. The first token is the command; a
// trailing @botname on it, as sent from group chats, is dropped.
func ParseInput(text string) ParsedInput {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ParsedInput{}
	}
	cmd := fields[0]
	if strings.HasPrefix(cmd, "/") {
		if at := strings.IndexByte(cmd, '@'); at > 0 {
			cmd = cmd[:at]
		}
	}
	return ParsedInput{Command: cmd, Args: fields[1:]}
}
