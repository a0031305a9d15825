package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pscheid92/nano/internal/dictionary"
	"github.com/pscheid92/nano/internal/domain"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/fun"
	"github.com/pscheid92/nano/internal/mathrender"
	"github.com/pscheid92/nano/internal/poetry"
	"github.com/pscheid92/nano/internal/reputation"
	"github.com/pscheid92/nano/internal/sets"
	"github.com/pscheid92/nano/internal/tracemoe"
	"github.com/pscheid92/nano/internal/translate"
	"github.com/pscheid92/nano/internal/weather"
	"github.com/pscheid92/nano/internal/wiki"
)

const (
	AnimeSauceCommand = "Anime Sauce"
	RenderBusyReply   = "Too many renders in progress, try again in a moment!"
	genericFailure    = "Something went wrong..."
)

// Features are the services commands are built on.
type Features struct {
	Fun        *fun.Service
	Weather    *weather.Service
	Dictionary *dictionary.Service
	Wiki       *wiki.Service
	Poetry     *poetry.Service
	TraceMoe   *tracemoe.Service
	Translate  *translate.Service
	Reputation *reputation.Service
	Sets       *sets.Service
	Math       *mathrender.Service
	Renders    *RenderSlots
}

// Commands returns every command the bot serves.
func Commands(f Features) []*Command {
	return []*Command{
		{
			Name:        "ping",
			Description: "A ping command",
			Handler: func(context.Context, *Request) (*Reply, error) {
				return Text(fun.Pong), nil
			},
		},
		{
			Name:        "ask",
			Description: "Ask Nano a yes-or-no question",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("question", "Your question", true)},
			RestOption:  "question",
			Handler: func(_ context.Context, r *Request) (*Reply, error) {
				return Text(f.Fun.Ask(r.Args.String("question"), r.Source == SourceSlash)), nil
			},
		},
		{
			Name:        "say",
			Description: "Make Nano say something",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("message", "What to say", true)},
			RestOption:  "message",
			Fallback:    fun.SayFailure,
			Handler: func(_ context.Context, r *Request) (*Reply, error) {
				msg, err := fun.Say(r.Args.String("message"))
				if err != nil {
					return nil, err
				}
				return Text(msg), nil
			},
		},
		{
			Name:        "topic",
			Description: "Suggest a conversation topic",
			Fallback:    fun.TopicFailure,
			Handler: func(context.Context, *Request) (*Reply, error) {
				topic, err := f.Fun.Topic()
				if err != nil {
					return nil, err
				}
				return Text(topic), nil
			},
		},
		{
			Name:        "weather",
			Description: "Current weather for a location",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("location", "City or place name", true),
				choiceOption("units", "Measurement units", false, string(weather.Metric), string(weather.Imperial)),
			},
			RestOption: "location",
			Defer:      true,
			Fallback:   weather.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				embed, err := f.Weather.Lookup(ctx, r.Args.String("location"), weather.ParseUnits(r.Args.String("units")))
				if err != nil {
					return nil, err
				}
				return Embeds(embed), nil
			},
		},
		{
			Name:        "define",
			Description: "Look up a word in the dictionary",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("word", "Word to define", true)},
			RestOption:  "word",
			Defer:       true,
			Fallback:    dictionary.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				list, err := f.Dictionary.Define(ctx, r.Args.String("word"))
				if err != nil {
					return nil, err
				}
				return Embeds(list...), nil
			},
		},
		{
			Name:        "wiki",
			Description: "Summarise a Wikipedia article",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("query", "What to search for", true)},
			RestOption:  "query",
			Defer:       true,
			Fallback:    wiki.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				summary, err := f.Wiki.Lookup(ctx, r.Args.String("query"))
				if err != nil {
					return nil, err
				}
				return Text(summary), nil
			},
		},
		{
			Name:        "poem",
			Description: "Search the Poetry Foundation for a poem",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("query", "Title or line to search for", true)},
			RestOption:  "query",
			Defer:       true,
			Fallback:    poetry.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				poem, err := f.Poetry.Search(ctx, r.Args.String("query"))
				if err != nil {
					return nil, err
				}
				return Embeds(poetry.Embed(poem)), nil
			},
		},
		{
			Name:        "poetry_url",
			Description: "Show a poem from a Poetry Foundation link",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("url", "Poem page URL", true)},
			RestOption:  "url",
			Defer:       true,
			Fallback:    poetry.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				poem, err := f.Poetry.Fetch(ctx, strings.TrimSpace(r.Args.String("url")))
				if err != nil {
					return nil, err
				}
				return Embeds(poetry.Embed(poem)), nil
			},
		},
		{
			Name:        "translate",
			Description: "Translate text between languages",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("text", "Text to translate", true),
				languageOption("source", "Source language (autodetected when empty)"),
				languageOption("target", "Target language (English when empty)"),
			},
			RestOption: "text",
			Aliases:    []string{"tl"},
			Defer:      true,
			Fallback:   translate.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				text, source, target := translateArgs(r)
				out, err := f.Translate.Translate(ctx, text, source, target)
				if err != nil {
					return nil, err
				}
				return Text(out), nil
			},
		},
		{
			Name:        "thank",
			Description: "Give someone a reputation point",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Who to thank", true)},
			Fallback:    reputation.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				target, ok := r.Args.User("user")
				if !ok {
					return nil, apperrors.ValidationError(reputation.NotAllowedReply)
				}
				reply, err := f.Reputation.ThankOne(ctx, r.User, target)
				if err != nil {
					return nil, err
				}
				return Text(reply), nil
			},
		},
		{
			Name:        "reputation",
			Description: "Show someone's reputation",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Whose reputation (you when empty)", false)},
			Fallback:    reputation.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				user, ok := r.Args.User("user")
				if !ok {
					user = r.User
				}
				reply, err := f.Reputation.Reputation(ctx, user)
				if err != nil {
					return nil, err
				}
				return Text(reply), nil
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the reputation leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("num_users", "How many users to show", 0, reputation.MaxBoardSize),
			},
			RestOption: "num_users",
			Fallback:   reputation.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				board, err := f.Reputation.Leaderboard(ctx, int(r.Args.Int("num_users", reputation.DefaultBoardSize)))
				if err != nil {
					return nil, err
				}
				return Text(board), nil
			},
		},
		{
			Name:        "add_elements",
			Description: "Add elements to one of your lists",
			Options:     listOptions(),
			Fallback:    sets.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				reply, err := f.Sets.Add(ctx, r.User, r.Args.String("list_name"), elementArgs(r.Args))
				if err != nil {
					return nil, err
				}
				return Text(reply), nil
			},
		},
		{
			Name:        "rem_elements",
			Description: "Remove elements from one of your lists",
			Options:     listOptions(),
			Fallback:    sets.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				reply, err := f.Sets.Remove(ctx, r.User, r.Args.String("list_name"), elementArgs(r.Args))
				if err != nil {
					return nil, err
				}
				return Text(reply), nil
			},
		},
		{
			Name:        "get_list",
			Description: "Show a list",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("list_name", "Name of the list", true),
				userOption("user", "Whose list (yours when empty)", false),
			},
			RestOption: "list_name",
			Fallback:   sets.FailureMessage,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				owner, ok := r.Args.User("user")
				if !ok {
					owner = r.User
				}
				reply, err := f.Sets.List(ctx, owner, r.Args.String("list_name"))
				if err != nil {
					return nil, err
				}
				return Text(reply), nil
			},
		},
		{
			Name:        "set_default_math_markup",
			Description: "Choose whether $...$ in your messages is LaTeX or Typst",
			Options: []*discordgo.ApplicationCommandOption{
				choiceOption("preference", "Markup language", true, domain.MarkupLatex.String(), domain.MarkupTypst.String()),
			},
			RestOption: "preference",
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				pref, err := domain.ParseMathMarkup(r.Args.String("preference"))
				if err != nil {
					return nil, apperrors.ValidationError("Preference must be Latex or Typst.")
				}
				return Text(f.Math.SetMarkup(ctx, r.User, pref)), nil
			},
		},
		{
			Name:        "typst",
			Description: "Render Typst math",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("source", "Typst math source", true)},
			RestOption:  "source",
			Defer:       true,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				src := r.Args.String("source")
				if !f.Renders.Acquire() {
					return Text(RenderBusyReply), nil
				}
				defer f.Renders.Release()

				png, err := f.Math.Render(ctx, src)
				if err != nil {
					return Text(mathrender.ErrorReply(src, err)), nil
				}
				return Image(png), nil
			},
		},
		{
			Name:        "latex",
			Description: "Render LaTeX math",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("source", "LaTeX math source", true)},
			RestOption:  "source",
			Handler: func(_ context.Context, r *Request) (*Reply, error) {
				src := strings.TrimSpace(r.Args.String("source"))
				if src == "" {
					return nil, apperrors.ValidationError("No LaTeX given!")
				}
				return Text(mathrender.CodecogsURL(src)), nil
			},
		},
		{
			Name:        "find_anime_source",
			Description: "Find the anime an image is from",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("message", "Text containing image links", true)},
			RestOption:  "message",
			Defer:       true,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				return animeSources(ctx, f.TraceMoe, r.Args.String("message")), nil
			},
		},
		{
			Name:  AnimeSauceCommand,
			Type:  discordgo.MessageApplicationCommand,
			Defer: true,
			Handler: func(ctx context.Context, r *Request) (*Reply, error) {
				if r.Args.Target == nil {
					return Text(tracemoe.NoImagesReply), nil
				}
				return animeSources(ctx, f.TraceMoe, messageImageText(r.Args.Target)), nil
			},
		},
	}
}

func animeSources(ctx context.Context, svc *tracemoe.Service, content string) *Reply {
	results := svc.Sources(ctx, content)
	if len(results) == 0 {
		return Text(tracemoe.NoImagesReply)
	}
	return &Reply{Content: tracemoe.ResultTitle, Embeds: results}
}

// messageImageText joins the message content with its attachment and embed
// image links so every image it shows is considered.
func messageImageText(m *discordgo.Message) string {
	parts := []string{m.Content}
	for _, a := range m.Attachments {
		if a != nil {
			parts = append(parts, a.URL)
		}
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		if e.Image != nil {
			parts = append(parts, e.Image.URL)
		}
		if e.Thumbnail != nil {
			parts = append(parts, e.Thumbnail.URL)
		}
	}
	return strings.Join(parts, " ")
}

// translateArgs reads slash options, or the "fr > de text" form for prefix
// invocations.
func translateArgs(r *Request) (string, *translate.Language, translate.Language) {
	if r.Source == SourcePrefix {
		return translate.ParseDirection(r.Args.String("text"))
	}
	var source *translate.Language
	if l, ok := translate.Lookup(r.Args.String("source")); ok {
		source = &l
	}
	target := translate.English
	if l, ok := translate.Lookup(r.Args.String("target")); ok {
		target = l
	}
	return r.Args.String("text"), source, target
}

func elementArgs(a Args) []string {
	out := make([]string, 0, sets.MaxElements)
	for i := 1; i <= sets.MaxElements; i++ {
		if v := a.String(elementOptionName(i)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func elementOptionName(i int) string {
	return fmt.Sprintf("element_%d", i)
}

func listOptions() []*discordgo.ApplicationCommandOption {
	opts := []*discordgo.ApplicationCommandOption{stringOption("list_name", "Name of the list", true)}
	for i := 1; i <= sets.MaxElements; i++ {
		opts = append(opts, stringOption(elementOptionName(i), fmt.Sprintf("Element %d", i), i == 1))
	}
	return opts
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func intOption(name, description string, minValue, maxValue float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		MinValue:    &minValue,
		MaxValue:    maxValue,
	}
}

func choiceOption(name, description string, required bool, values ...string) *discordgo.ApplicationCommandOption {
	opt := stringOption(name, description, required)
	for _, v := range values {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return opt
}

func languageOption(name, description string) *discordgo.ApplicationCommandOption {
	opt := stringOption(name, description, false)
	for _, l := range translate.Languages {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: l.Name, Value: l.Code})
	}
	return opt
}
