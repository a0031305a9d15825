package bot

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pscheid92/nano/internal/classify"
	"github.com/pscheid92/nano/internal/domain"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/mathrender"
	"github.com/pscheid92/nano/internal/metrics"
	"github.com/pscheid92/nano/internal/platform/correlation"
	"github.com/pscheid92/nano/internal/reputation"
)

const (
	Status           = "with Sakamoto"
	RateLimitedReply = "Slow down! Try again in a few seconds."

	defaultHandlerTimeout = 60 * time.Second
)

type Settings struct {
	// GuildID registers commands in one guild instead of globally.
	GuildID        string
	HandlerTimeout time.Duration
}

type Bot struct {
	session    Session
	registry   *Registry
	classifier *classify.Classifier
	features   Features
	watcher    *mathrender.EditWatcher
	limiter    *UserRateLimiter
	settings   Settings

	ready atomic.Bool
	mu    sync.RWMutex
	self  *discordgo.User
	appID string
}

func New(session Session, features Features, classifier *classify.Classifier, watcher *mathrender.EditWatcher, limiter *UserRateLimiter, settings Settings) *Bot {
	if settings.HandlerTimeout <= 0 {
		settings.HandlerTimeout = defaultHandlerTimeout
	}
	return &Bot{
		session:    session,
		registry:   NewRegistry(Commands(features)...),
		classifier: classifier,
		features:   features,
		watcher:    watcher,
		limiter:    limiter,
		settings:   settings,
	}
}

// Handlers returns the gateway callbacks to pass to discordgo's AddHandler.
func (b *Bot) Handlers() []any {
	return []any{
		b.onReady,
		b.onMessageCreate,
		b.onMessageUpdate,
		b.onMessageDelete,
		b.onInteractionCreate,
	}
}

// Ready reports whether the gateway session is up and commands are registered.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

func (b *Bot) Registry() *Registry {
	return b.registry
}

func (b *Bot) selfID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.self == nil {
		return ""
	}
	return b.self.ID
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	ctx, cancel := b.eventContext()
	defer cancel()
	defer recoverPanic(ctx, "ready")

	b.mu.Lock()
	b.self = r.User
	b.appID = r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		b.appID = r.Application.ID
	}
	appID := b.appID
	b.mu.Unlock()

	slog.InfoContext(ctx, "Connected to Discord", "user", r.User.Username, "guilds", len(r.Guilds))

	if err := b.session.UpdateGameStatus(0, Status); err != nil {
		slog.WarnContext(ctx, "Failed to set status", "error", err)
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.settings.GuildID, b.registry.ApplicationCommands())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to register commands", "guild_id", b.settings.GuildID, "error", err)
		return
	}
	slog.InfoContext(ctx, "Registered commands", "count", len(registered), "guild_id", b.settings.GuildID)
	b.ready.Store(true)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	ctx, cancel := b.eventContext()
	defer cancel()
	defer recoverPanic(ctx, "message_create")

	b.handleMessage(ctx, m.Message)
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	self := b.selfID()
	if m.Author.ID == self {
		return
	}

	msg := classify.Message{
		Author:      toUser(m.Author, m.Member),
		Content:     m.Content,
		Mentions:    toUsers(m.Mentions),
		MentionsBot: self != "" && mentionsUser(m.Mentions, self),
	}
	res := b.classifier.Classify(ctx, msg)

	switch res.Kind {
	case classify.Thank:
		b.thankMentions(ctx, m, msg)
	case classify.GoodNano:
		b.send(ctx, m.ChannelID, Text(classify.GoodNanoGIF), nil)
	case classify.BadNano:
		b.send(ctx, m.ChannelID, Text(classify.BadNanoGIF), nil)
	case classify.Math:
		b.renderMath(ctx, m, msg.Author, res.MathSource)
	case classify.Command:
		b.handlePrefix(ctx, m, msg.Author)
	case classify.Translate:
		if reply, ok := b.features.Translate.Auto(ctx, m.Content); ok {
			b.send(ctx, m.ChannelID, Text(reply), m.Reference())
		}
	}
}

func (b *Bot) thankMentions(ctx context.Context, m *discordgo.Message, msg classify.Message) {
	replies, err := b.features.Reputation.ThankMentions(ctx, msg.Author, msg.Mentions)
	if err != nil {
		logHandlerError(ctx, "thank", err)
		b.send(ctx, m.ChannelID, Text(apperrors.UserMessage(err, reputation.FailureMessage)), nil)
		return
	}
	for _, reply := range replies {
		b.send(ctx, m.ChannelID, Text(reply), nil)
	}
}

func (b *Bot) handlePrefix(ctx context.Context, m *discordgo.Message, author domain.User) {
	name, rest := splitCommand(b.classifier.StripPrefix(m.Content))
	cmd, ok := b.registry.Lookup(name)
	if !ok || !cmd.PrefixAllowed() {
		slog.DebugContext(ctx, "Ignoring unknown prefix command", "command", name)
		return
	}

	req := &Request{
		Command:   cmd.Name,
		Source:    SourcePrefix,
		User:      author,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
	}
	if cmd.RestOption != "" && rest != "" {
		req.Args.set(cmd.RestOption, rest)
	}

	reply := b.execute(ctx, cmd, req)
	b.send(ctx, m.ChannelID, reply, m.Reference())
}

// renderMath replies with the rendered image, or the source and what went
// wrong, then follows edits of m.
func (b *Bot) renderMath(ctx context.Context, m *discordgo.Message, author domain.User, src string) {
	reply := b.mathReply(ctx, src)
	sent := b.send(ctx, m.ChannelID, reply, nil)
	if sent == nil {
		return
	}
	b.watcher.Watch(m.ID, mathrender.Target{ChannelID: m.ChannelID, ReplyID: sent.ID, Author: author})
}

func (b *Bot) mathReply(ctx context.Context, src string) *Reply {
	if !b.features.Renders.Acquire() {
		return Text(RenderBusyReply)
	}
	defer b.features.Renders.Release()

	png, err := b.features.Math.Render(ctx, src)
	if err != nil {
		slog.InfoContext(ctx, "Math render failed", "error", err)
		return Text(mathrender.ErrorReply(src, err))
	}
	return Image(png)
}

func (b *Bot) onMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Message == nil {
		return
	}
	ctx, cancel := b.eventContext()
	defer cancel()
	defer recoverPanic(ctx, "message_update")

	b.handleEdit(ctx, m.Message)
}

// handleEdit re-renders the reply of a watched message, replacing its image.
func (b *Bot) handleEdit(ctx context.Context, m *discordgo.Message) {
	target, ok := b.watcher.Lookup(m.ID)
	if !ok || m.Content == "" {
		return
	}
	src, ok := b.features.Math.Match(ctx, target.Author, m.Content)
	if !ok {
		return
	}

	reply := b.mathReply(ctx, src)
	edit := discordgo.NewMessageEdit(target.ChannelID, target.ReplyID)
	edit.SetContent(reply.Content)
	edit.Files = reply.Files
	edit.Attachments = &[]*discordgo.MessageAttachment{}
	edit.AllowedMentions = noMentions()

	if _, err := b.session.ChannelMessageEditComplex(edit); err != nil {
		slog.ErrorContext(ctx, "Failed to edit rendered reply", "message_id", target.ReplyID, "error", err)
		return
	}
	slog.DebugContext(ctx, "Re-rendered edited message", "message_id", m.ID)
}

func (b *Bot) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil {
		return
	}
	b.watcher.Forget(m.ID)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	ctx, cancel := b.eventContext()
	defer cancel()
	defer recoverPanic(ctx, "interaction_create")

	b.handleInteraction(ctx, i.Interaction)
}

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	cmd, ok := b.registry.Lookup(data.Name)
	if !ok {
		slog.WarnContext(ctx, "Unknown command", "command", data.Name)
		return
	}

	req := &Request{
		Command:   cmd.Name,
		Source:    SourceSlash,
		User:      interactionUser(i),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Args:      interactionArgs(data),
	}
	if data.CommandType == discordgo.MessageApplicationCommand {
		req.Source = SourceContextMenu
	}

	if !cmd.Defer {
		reply := b.execute(ctx, cmd, req)
		err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: reply.interactionData(),
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to respond to interaction", "command", cmd.Name, "error", err)
		}
		return
	}

	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to defer interaction", "command", cmd.Name, "error", err)
		return
	}
	reply := b.execute(ctx, cmd, req)
	if _, err := b.session.InteractionResponseEdit(i, reply.webhookEdit()); err != nil {
		slog.ErrorContext(ctx, "Failed to edit deferred response", "command", cmd.Name, "error", err)
	}
}

// execute runs the handler behind the rate limiter, turning errors and
// panics into the command's fallback reply.
func (b *Bot) execute(ctx context.Context, cmd *Command, req *Request) (reply *Reply) {
	start := time.Now()
	result := "success"
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerPanics.Inc()
			slog.ErrorContext(ctx, "Command handler panicked", "command", cmd.Name, "panic", r, "stack", string(debug.Stack()))
			reply = Text(cmd.fallback())
			result = "panic"
		}
		metrics.CommandsTotal.WithLabelValues(cmd.Name, string(req.Source), result).Inc()
		metrics.CommandDuration.WithLabelValues(cmd.Name).Observe(time.Since(start).Seconds())
	}()

	if b.limiter != nil && !b.limiter.Allow(req.User.ID) {
		metrics.CommandsRateLimited.Inc()
		result = "rate_limited"
		return &Reply{Content: RateLimitedReply, Ephemeral: true}
	}

	slog.DebugContext(ctx, "Running command", "command", cmd.Name, "source", req.Source, "user_id", req.User.ID)
	reply, err := cmd.Handler(ctx, req)
	if err != nil {
		result = "error"
		logHandlerError(ctx, cmd.Name, err)
		return Text(apperrors.UserMessage(err, cmd.fallback()))
	}
	if reply == nil {
		return Text(cmd.fallback())
	}
	return reply
}

func (b *Bot) send(ctx context.Context, channelID string, reply *Reply, reference *discordgo.MessageReference) *discordgo.Message {
	sent, err := b.session.ChannelMessageSendComplex(channelID, reply.messageSend(reference))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to send message", "channel_id", channelID, "error", err)
		return nil
	}
	return sent
}

func (b *Bot) eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(correlation.WithNewID(context.Background()), b.settings.HandlerTimeout)
}

func recoverPanic(ctx context.Context, event string) {
	if r := recover(); r != nil {
		metrics.HandlerPanics.Inc()
		slog.ErrorContext(ctx, "Recovered panic in event handler", "event", event, "panic", r, "stack", string(debug.Stack()))
	}
}

// logHandlerError logs user mistakes at debug and real failures at error.
func logHandlerError(ctx context.Context, command string, err error) {
	structured := apperrors.AsStructuredError(err)
	attrs := append([]any{"command", command}, structured.LogAttrs()...)
	if structured.Public() {
		slog.DebugContext(ctx, "Command rejected", attrs...)
		return
	}
	slog.ErrorContext(ctx, "Command failed", attrs...)
}
