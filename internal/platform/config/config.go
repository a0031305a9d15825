package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	ProviderDeepL = "deepl"
	ProviderAzure = "azure"
)

type Config struct {
	AppEnv       string `env:"APP_ENV" default:"development"`
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"`
	RedisURL     string `env:"REDIS_URL"`
	Prefix       string `env:"PREFIX" default:"nano, "`
	OpsPort      string `env:"OPS_PORT" default:"8080"`
	LogLevel     string `env:"LOG_LEVEL" default:"info"`
	LogFormat    string `env:"LOG_FORMAT" default:"text"`
	LogFile      string `env:"LOG_FILE"`
	UserAgent    string `env:"USER_AGENT"`
	TopicsFile   string `env:"TOPICS_FILE" default:"topics.txt"`

	TranslateProvider    string `env:"TRANSLATE_PROVIDER" default:"deepl"`
	DeepLKey             string `env:"DEEPL_KEY"`
	DeepLAPIURL          string `env:"DEEPL_API_URL" default:"https://api-free.deepl.com/v2/translate"`
	AzureTranslateKey    string `env:"AZURE_TRANSLATE_KEY"`
	AzureTranslateRegion string `env:"AZURE_TRANSLATE_REGION"`
	AutoTranslate        bool   `env:"AUTO_TRANSLATE" default:"true"`

	TypstBin      string `env:"TYPST_BIN" default:"typst"`
	TypstFontPath string `env:"TYPST_FONT_PATH" default:"fonts"`
	MaxRenders    int    `env:"MAX_CONCURRENT_RENDERS" default:"4"`

	CommandRate  float64 `env:"COMMAND_RATE" default:"1"`
	CommandBurst int     `env:"COMMAND_BURST" default:"5"`

	ThankCooldown   time.Duration `env:"THANK_COOLDOWN" default:"30s"`
	MathEditTimeout time.Duration `env:"MATH_EDIT_TIMEOUT" default:"180s"`
	TypstTimeout    time.Duration `env:"TYPST_TIMEOUT" default:"15s"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := []struct{ name, value string }{
		{"DISCORD_TOKEN", cfg.DiscordToken},
		{"REDIS_URL", cfg.RedisURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	cfg.TranslateProvider = strings.ToLower(cfg.TranslateProvider)
	switch cfg.TranslateProvider {
	case ProviderDeepL:
		if cfg.DeepLKey == "" {
			return errors.New("DEEPL_KEY is required when TRANSLATE_PROVIDER=deepl")
		}
	case ProviderAzure:
		if cfg.AzureTranslateKey == "" {
			return errors.New("AZURE_TRANSLATE_KEY is required when TRANSLATE_PROVIDER=azure")
		}
	default:
		return fmt.Errorf("TRANSLATE_PROVIDER must be %q or %q, got %q", ProviderDeepL, ProviderAzure, cfg.TranslateProvider)
	}

	if cfg.ThankCooldown <= 0 {
		return errors.New("THANK_COOLDOWN must be positive")
	}
	if cfg.MathEditTimeout <= 0 {
		return errors.New("MATH_EDIT_TIMEOUT must be positive")
	}
	if cfg.MaxRenders <= 0 {
		return errors.New("MAX_CONCURRENT_RENDERS must be positive")
	}
	if cfg.CommandRate <= 0 || cfg.CommandBurst <= 0 {
		return errors.New("COMMAND_RATE and COMMAND_BURST must be positive")
	}

	return nil
}
