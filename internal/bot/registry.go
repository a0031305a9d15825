package bot

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Handler func(ctx context.Context, r *Request) (*Reply, error)

// Command is one entry of the command registry. Chat commands are served as
// slash commands and, when they can be expressed as free text, behind the
// message prefix as well.
type Command struct {
	Name        string
	Description string
	// Type defaults to a chat (slash) command.
	Type    discordgo.ApplicationCommandType
	Options []*discordgo.ApplicationCommandOption
	// RestOption receives everything after the command name in prefix form.
	RestOption string
	Aliases    []string
	// Defer acknowledges the interaction before running slow handlers.
	Defer bool
	// Fallback is the reply for errors that carry no public message.
	Fallback string
	Handler  Handler
}

func (c *Command) isChat() bool {
	return c.Type == 0 || c.Type == discordgo.ChatApplicationCommand
}

// PrefixAllowed reports whether the command can be invoked as "prefix name
// text". Commands needing more than the rest option are slash-only.
func (c *Command) PrefixAllowed() bool {
	if !c.isChat() {
		return false
	}
	for _, o := range c.Options {
		if o.Required && o.Name != c.RestOption {
			return false
		}
	}
	return true
}

func (c *Command) fallback() string {
	if c.Fallback != "" {
		return c.Fallback
	}
	return genericFailure
}

func (c *Command) applicationCommand() *discordgo.ApplicationCommand {
	ac := &discordgo.ApplicationCommand{
		Name:    c.Name,
		Type:    c.Type,
		Options: c.Options,
	}
	if c.isChat() {
		ac.Type = discordgo.ChatApplicationCommand
		ac.Description = c.Description
	}
	return ac
}

type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

func NewRegistry(commands ...*Command) *Registry {
	r := &Registry{byName: make(map[string]*Command)}
	for _, c := range commands {
		r.Register(c)
	}
	return r
}

// Register adds c under its name and aliases. Names are case-insensitive.
func (r *Registry) Register(c *Command) {
	r.commands = append(r.commands, c)
	r.byName[strings.ToLower(c.Name)] = c
	for _, alias := range c.Aliases {
		r.byName[strings.ToLower(alias)] = c
	}
}

func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.byName[strings.ToLower(name)]
	return c, ok
}

// ApplicationCommands is the payload for registering every command with Discord.
func (r *Registry) ApplicationCommands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c.applicationCommand())
	}
	return out
}
