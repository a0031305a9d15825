package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/nano/internal/bot"
	"github.com/pscheid92/nano/internal/classify"
	"github.com/pscheid92/nano/internal/dictionary"
	"github.com/pscheid92/nano/internal/fun"
	"github.com/pscheid92/nano/internal/httpapi"
	"github.com/pscheid92/nano/internal/mathrender"
	"github.com/pscheid92/nano/internal/metrics"
	"github.com/pscheid92/nano/internal/platform/config"
	"github.com/pscheid92/nano/internal/platform/logging"
	"github.com/pscheid92/nano/internal/platform/version"
	"github.com/pscheid92/nano/internal/poetry"
	"github.com/pscheid92/nano/internal/redis"
	"github.com/pscheid92/nano/internal/reputation"
	"github.com/pscheid92/nano/internal/server"
	"github.com/pscheid92/nano/internal/sets"
	"github.com/pscheid92/nano/internal/tracemoe"
	"github.com/pscheid92/nano/internal/translate"
	"github.com/pscheid92/nano/internal/weather"
	"github.com/pscheid92/nano/internal/wiki"
	goredis "github.com/redis/go-redis/v9"
)

const intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentDirectMessages |
	discordgo.IntentMessageContent

func runGracefulShutdown(srv *server.Server, session *discordgo.Session, watcher *mathrender.EditWatcher) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		if err := session.Close(); err != nil {
			slog.Error("Discord session close error", "error", err)
		}
		watcher.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupLogging returns a func closing the optional LOG_FILE sink.
func setupLogging(cfg *config.Config) func() {
	if cfg.LogFile == "" {
		logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
		return func() {}
	}

	sink, err := logging.OpenFileSink(cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat, sink)
	return func() { _ = sink.Close() }
}

func setupRedis(ctx context.Context, cfg *config.Config, clock clockwork.Clock) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL, clock)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func newHTTPClient(cfg *config.Config, name string) *httpapi.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = version.UserAgent("Nano")
	}
	return httpapi.New(name, httpapi.WithTimeout(cfg.HTTPTimeout), httpapi.WithUserAgent(ua))
}

func setupTranslator(cfg *config.Config) *translate.Service {
	var provider translate.Provider
	switch cfg.TranslateProvider {
	case config.ProviderAzure:
		provider = translate.NewAzure(newHTTPClient(cfg, "azure"), cfg.AzureTranslateKey, cfg.AzureTranslateRegion)
	default:
		provider = translate.NewDeepL(newHTTPClient(cfg, "deepl"), cfg.DeepLKey, cfg.DeepLAPIURL)
	}

	var detector *translate.Detector
	if cfg.AutoTranslate {
		slog.Info("Building language detector")
		detector = translate.NewDetector()
	}
	return translate.NewService(provider, detector)
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	closeLog := setupLogging(cfg)
	defer closeLog()

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)
	slog.Info("Application starting", "env", cfg.AppEnv, "version", info.Version, "ops_port", cfg.OpsPort)

	redisClient := setupRedis(context.Background(), cfg, clock)
	defer func() { _ = redisClient.Close() }()

	translator := setupTranslator(cfg)
	mathSvc := mathrender.NewService(
		mathrender.NewRenderer(&mathrender.TypstCLI{Bin: cfg.TypstBin, FontPath: cfg.TypstFontPath, Timeout: cfg.TypstTimeout}),
		redis.NewPreferenceStore(redisClient),
	)

	features := bot.Features{
		Fun:        fun.NewService(cfg.TopicsFile),
		Weather:    weather.NewService(newHTTPClient(cfg, "open-meteo")),
		Dictionary: dictionary.NewService(newHTTPClient(cfg, "dictionary")),
		Wiki:       wiki.NewService(newHTTPClient(cfg, "wikipedia")),
		Poetry:     poetry.NewService(newHTTPClient(cfg, "poetry")),
		TraceMoe:   tracemoe.NewService(newHTTPClient(cfg, "tracemoe")),
		Translate:  translator,
		Reputation: reputation.NewService(redis.NewReputationStore(redisClient), redis.NewCooldownStore(redisClient), cfg.ThankCooldown),
		Sets:       sets.NewService(redis.NewSetStore(redisClient)),
		Math:       mathSvc,
		Renders:    bot.NewRenderSlots(int64(cfg.MaxRenders)),
	}

	// Pass nil explicitly to avoid a typed-nil detector
	var detector classify.LanguageDetector
	if cfg.AutoTranslate {
		detector = translator
	}
	classifier := classify.New(cfg.Prefix, mathSvc, detector)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		slog.Error("Failed to create Discord session", "error", err)
		os.Exit(1)
	}
	session.Identify.Intents = intents

	watcher := mathrender.NewEditWatcher(clock, cfg.MathEditTimeout)
	limiter := bot.NewUserRateLimiter(clock, cfg.CommandRate, cfg.CommandBurst)
	nano := bot.New(session, features, classifier, watcher, limiter, bot.Settings{GuildID: cfg.GuildID})
	for _, h := range nano.Handlers() {
		session.AddHandler(h)
	}

	if err := session.Open(); err != nil {
		slog.Error("Failed to open Discord session", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg.OpsPort, redisClient, nano, clock)
	done := runGracefulShutdown(srv, session, watcher)

	if err := srv.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
