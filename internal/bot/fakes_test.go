package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/nano/internal/classify"
	"github.com/pscheid92/nano/internal/domain"
	"github.com/pscheid92/nano/internal/fun"
	"github.com/pscheid92/nano/internal/mathrender"
	"github.com/pscheid92/nano/internal/reputation"
	"github.com/pscheid92/nano/internal/sets"
	"github.com/pscheid92/nano/internal/translate"
	"github.com/stretchr/testify/require"
)

const (
	testPrefix = "nano, "
	botUserID  = "bot"
	testTTL    = 3 * time.Minute
)

var (
	alice = &discordgo.User{ID: "u1", Username: "alice"}
	bob   = &discordgo.User{ID: "u2", Username: "bob", GlobalName: "Bobby"}
)

type sentMessage struct {
	channelID string
	data      *discordgo.MessageSend
}

type fakeSession struct {
	mu           sync.Mutex
	sent         []sentMessage
	edits        []*discordgo.MessageEdit
	responses    []*discordgo.InteractionResponse
	webhookEdits []*discordgo.WebhookEdit
	registered   []*discordgo.ApplicationCommand
	appID        string
	guildID      string
	status       string
	sendErr      error
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, data: data})
	return &discordgo.Message{ID: fmt.Sprintf("reply-%d", len(f.sent)), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhookEdits = append(f.webhookEdits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appID = appID
	f.guildID = guildID
	f.registered = commands
	return commands, nil
}

func (f *fakeSession) UpdateGameStatus(_ int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = name
	return nil
}

func (f *fakeSession) lastSent(t *testing.T) *discordgo.MessageSend {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "expected a message to be sent")
	return f.sent[len(f.sent)-1].data
}

type fakeReputation struct {
	scores map[string]int64
}

func (f *fakeReputation) Increment(_ context.Context, username string) (int64, error) {
	f.scores[username]++
	return f.scores[username], nil
}

func (f *fakeReputation) Get(_ context.Context, username string) (int64, int64, bool, error) {
	score, ok := f.scores[username]
	return score, 1, ok, nil
}

func (f *fakeReputation) Top(context.Context, int) ([]domain.ReputationEntry, error) {
	return nil, nil
}

type fakeCooldowns struct {
	until map[string]time.Time
	clock clockwork.Clock
}

func (f *fakeCooldowns) Acquire(_ context.Context, userID string, ttl time.Duration) (bool, error) {
	if f.clock.Now().Before(f.until[userID]) {
		return false, nil
	}
	f.until[userID] = f.clock.Now().Add(ttl)
	return true, nil
}

func (f *fakeCooldowns) Remaining(_ context.Context, userID string) (time.Duration, error) {
	if d := f.until[userID].Sub(f.clock.Now()); d > 0 {
		return d, nil
	}
	return 0, nil
}

type fakePrefs struct {
	prefs map[string]domain.MathMarkup
}

func (f *fakePrefs) MathMarkup(_ context.Context, username string) (domain.MathMarkup, error) {
	return f.prefs[username], nil
}

func (f *fakePrefs) SetMathMarkup(_ context.Context, username string, markup domain.MathMarkup) error {
	f.prefs[username] = markup
	return nil
}

type fakeSets struct {
	err error
}

func (f *fakeSets) Add(_ context.Context, _, _ string, elements []string) (int64, error) {
	return int64(len(elements)), f.err
}

func (f *fakeSets) Remove(_ context.Context, _, _ string, elements []string) (int64, error) {
	return int64(len(elements)), f.err
}

func (f *fakeSets) Members(context.Context, string, string) ([]string, error) {
	return []string{"a", "b"}, f.err
}

// fakeCompiler draws a blank page of 100x50 points.
type fakeCompiler struct {
	mu   sync.Mutex
	docs []string
}

func (f *fakeCompiler) Compile(_ context.Context, document string, ppi float64) ([]byte, error) {
	f.mu.Lock()
	f.docs = append(f.docs, document)
	f.mu.Unlock()

	scale := ppi / 72
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, int(100*scale), int(50*scale)))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type translateCall struct {
	text   string
	source *translate.Language
	target translate.Language
}

type fakeProvider struct {
	calls []translateCall
	err   error
}

func (f *fakeProvider) Translate(_ context.Context, text string, source *translate.Language, target translate.Language) (translate.Result, error) {
	f.calls = append(f.calls, translateCall{text: text, source: source, target: target})
	if f.err != nil {
		return translate.Result{}, f.err
	}
	return translate.Result{Text: "translated: " + text}, nil
}

type testEnv struct {
	bot      *Bot
	session  *fakeSession
	clock    *clockwork.FakeClock
	reps     *fakeReputation
	sets     *fakeSets
	provider *fakeProvider
	compiler *fakeCompiler
	watcher  *mathrender.EditWatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	topics := filepath.Join(t.TempDir(), "topics.txt")
	require.NoError(t, os.WriteFile(topics, []byte("Favourite anime?\n"), 0o600))

	clock := clockwork.NewFakeClock()
	env := &testEnv{
		session:  &fakeSession{},
		clock:    clock,
		reps:     &fakeReputation{scores: make(map[string]int64)},
		sets:     &fakeSets{},
		provider: &fakeProvider{},
		compiler: &fakeCompiler{},
		watcher:  mathrender.NewEditWatcher(clock, testTTL),
	}
	t.Cleanup(env.watcher.Stop)

	math := mathrender.NewService(mathrender.NewRenderer(env.compiler), &fakePrefs{prefs: make(map[string]domain.MathMarkup)})
	features := Features{
		Fun:        fun.NewService(topics),
		Translate:  translate.NewService(env.provider, nil),
		Reputation: reputation.NewService(env.reps, &fakeCooldowns{until: make(map[string]time.Time), clock: clock}, 30*time.Second),
		Sets:       sets.NewService(env.sets),
		Math:       math,
		Renders:    NewRenderSlots(2),
	}
	classifier := classify.New(testPrefix, math, nil)
	limiter := NewUserRateLimiter(clock, 1, 5)

	env.bot = New(env.session, features, classifier, env.watcher, limiter, Settings{GuildID: "g1"})
	env.bot.onReady(nil, &discordgo.Ready{
		User:        &discordgo.User{ID: botUserID, Username: "Nano", Bot: true},
		Application: &discordgo.Application{ID: "app"},
	})
	return env
}

func message(author *discordgo.User, content string, mentions ...*discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Author:    author,
		Content:   content,
		Mentions:  mentions,
	}}
}

func slash(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: alice},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
			Options:     opts,
		},
	}}
}

func stringArg(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

var errStore = errors.New("connection refused")
