// Package help holds the static command catalog rendered by /help and
// published to the Telegram command menu.
package help

import "strings"

// OptionSpec documents one usage example of a command.
type OptionSpec struct {
	Usage       string
	Description string
}

// CommandSpec documents a command.
type CommandSpec struct {
	Name        string
	Description string
	Options     []OptionSpec
}

// Catalog is an ordered, read-only set of command specs.
type Catalog struct {
	specs []CommandSpec
	index map[string]int
}

// NewCatalog builds a catalog preserving the given order. Later duplicates
// of a name are ignored.
func NewCatalog(specs ...CommandSpec) *Catalog {
	c := &Catalog{index: make(map[string]int, len(specs))}
	for _, s := range specs {
		if _, dup := c.index[s.Name]; dup {
			continue
		}
		c.index[s.Name] = len(c.specs)
		c.specs = append(c.specs, s)
	}
	return c
}

// DefaultCatalog returns the catalog of the proverb bot.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		CommandSpec{
			Name:        "/start",
			Description: "Start the bot.",
		},
		CommandSpec{
			Name:        "/random",
			Description: "Get a random proverb.",
			Options: []OptionSpec{
				{Usage: "/random 3", Description: "Get 3 random proverbs."},
			},
		},
		CommandSpec{
			Name:        "/search",
			Description: "Search for proverbs.",
			Options: []OptionSpec{
				{Usage: "/search <query>", Description: "Search for proverbs."},
				{Usage: "/search <query> 3", Description: "Search for 3 proverbs."},
			},
		},
		CommandSpec{
			Name:        "/id",
			Description: "Get a proverb by id.",
			Options: []OptionSpec{
				{Usage: "/id 1", Description: "Get a proverb with id 1."},
			},
		},
		CommandSpec{
			Name:        "/help",
			Description: "List all commands.",
			Options: []OptionSpec{
				{Usage: "/help <command>", Description: "Get help for a command."},
			},
		},
	)
}

// Specs returns the command specs in registration order.
func (c *Catalog) Specs() []CommandSpec {
	return c.specs
}

// Lookup returns the spec registered under name.
func (c *Catalog) Lookup(name string) (CommandSpec, bool) {
	i, ok := c.index[name]
	if !ok {
		return CommandSpec{}, false
	}
	return c.specs[i], true
}

// Render lists every command followed by its options. Commands with options
// are separated from the next entry by a blank line.
func (c *Catalog) Render() string {
	var b strings.Builder
	for _, s := range c.specs {
		writeSpec(&b, s)
		if len(s.Options) > 0 {
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderCommand renders a single command and its options.
func (c *Catalog) RenderCommand(name string) (string, bool) {
	s, ok := c.Lookup(name)
	if !ok {
		return "", false
	}
	var b strings.Builder
	writeSpec(&b, s)
	return strings.TrimRight(b.String(), "\n"), true
}

func writeSpec(b *strings.Builder, s CommandSpec) {
	b.WriteString(s.Name)
	b.WriteString(" - ")
	b.WriteString(s.Description)
	b.WriteByte('\n')
	for _, o := range s.Options {
		b.WriteString(o.Usage)
		b.WriteString(" - ")
		b.WriteString(o.Description)
		b.WriteByte('\n')
	}
}
