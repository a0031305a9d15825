package bot

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/pscheid92/nano/internal/domain"
)

func toUser(u *discordgo.User, member *discordgo.Member) domain.User {
	if u == nil {
		return domain.User{}
	}
	user := domain.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.GlobalName,
		Bot:         u.Bot,
	}
	if member != nil && member.Nick != "" {
		user.DisplayName = member.Nick
	}
	return user
}

func toUsers(users []*discordgo.User) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			out = append(out, toUser(u, nil))
		}
	}
	return out
}

// interactionUser is the invoker: Member in guilds, User in DMs.
func interactionUser(i *discordgo.Interaction) domain.User {
	if i.Member != nil && i.Member.User != nil {
		return toUser(i.Member.User, i.Member)
	}
	return toUser(i.User, nil)
}

func mentionsUser(users []*discordgo.User, id string) bool {
	for _, u := range users {
		if u != nil && u.ID == id {
			return true
		}
	}
	return false
}

func interactionArgs(data discordgo.ApplicationCommandInteractionData) Args {
	var a Args
	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			a.set(opt.Name, opt.StringValue())
		case discordgo.ApplicationCommandOptionInteger:
			a.set(opt.Name, opt.IntValue())
		case discordgo.ApplicationCommandOptionUser:
			id, _ := opt.Value.(string)
			a.set(opt.Name, resolvedUser(data.Resolved, id))
		}
	}
	if data.CommandType == discordgo.MessageApplicationCommand && data.Resolved != nil {
		a.Target = data.Resolved.Messages[data.TargetID]
	}
	return a
}

// resolvedUser looks up a user option in the interaction's resolved data,
// which carries the guild nickname when there is one.
func resolvedUser(res *discordgo.ApplicationCommandInteractionDataResolved, id string) domain.User {
	if res == nil || res.Users[id] == nil {
		return domain.User{ID: id}
	}
	return toUser(res.Users[id], res.Members[id])
}

// splitCommand separates the command name from its free-text argument.
func splitCommand(body string) (name, rest string) {
	body = strings.TrimSpace(body)
	i := strings.IndexFunc(body, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(body), ""
	}
	return strings.ToLower(body[:i]), strings.TrimSpace(body[i:])
}
