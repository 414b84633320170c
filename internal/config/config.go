package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "LOOKUPBOT_CONFIG"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	databaseDriverEnv  = "DATABASE_DRIVER"
	databaseDSNEnv     = "DATABASE_DSN"
	assistantAPIKeyEnv = "ASSISTANT_API_KEY"
	assistantModelEnv  = "ASSISTANT_MODEL"
	logLevelEnv        = "LOG_LEVEL"
	adminAddrEnv       = "ADMIN_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig     `yaml:"logging"`
	Telegram   TelegramConfig    `yaml:"telegram"`
	Lookup     LookupConfig      `yaml:"lookup"`
	Wikipedia  []WikipediaConfig `yaml:"wikipedia"`
	DuckDuckGo DuckDuckGoConfig  `yaml:"duckduckgo"`
	Breaker    BreakerConfig     `yaml:"breaker"`
	Database   DatabaseConfig    `yaml:"database"`
	Assistant  AssistantConfig   `yaml:"assistant"`
	Admin      AdminConfig       `yaml:"admin"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TelegramConfig wires all data required to talk to the Bot API.
type TelegramConfig struct {
	BotToken    string        `yaml:"botToken"`
	APIURL      string        `yaml:"apiUrl"`
	PollTimeout time.Duration `yaml:"pollTimeout"`
}

// LookupConfig controls the retrieval pipeline.
type LookupConfig struct {
	Sources         []string             `yaml:"sources"`
	UserAgent       string               `yaml:"userAgent"`
	RequestTimeout  time.Duration        `yaml:"requestTimeout"`
	FastPathTimeout time.Duration        `yaml:"fastPathTimeout"`
	ProgressSteps   []ProgressStepConfig `yaml:"progressSteps"`
	HistoryLimit    int                  `yaml:"historyLimit"`
}

// ProgressStepConfig is one frame of the waiting animation.
type ProgressStepConfig struct {
	Text  string        `yaml:"text"`
	Delay time.Duration `yaml:"delay"`
}

// WikipediaConfig describes one language edition. The first edition is the primary one.
type WikipediaConfig struct {
	Name          string `yaml:"name"`
	Label         string `yaml:"label"`
	APIURL        string `yaml:"apiUrl"`
	RestURL       string `yaml:"restUrl"`
	HistoryPrefix string `yaml:"historyPrefix"`
}

// DuckDuckGoConfig points at the Instant Answer API.
type DuckDuckGoConfig struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
}

// BreakerConfig tunes per-source circuit breakers.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold"`
	MinRequests      uint32        `yaml:"minRequests"`
}

// DatabaseConfig selects the persistence driver: sqlite, postgres or none.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AssistantConfig defines how to contact an OpenAI-compatible chat API and how long to keep sessions.
type AssistantConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"apiKey"`
	SystemPrompt  string        `yaml:"systemPrompt"`
	MaxSessions   int           `yaml:"maxSessions"`
	MaxMessages   int           `yaml:"maxMessages"`
	SessionTTL    time.Duration `yaml:"sessionTtl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// AdminConfig exposes metrics and health checks; an empty address disables the server.
type AdminConfig struct {
	Addr string `yaml:"addr"`
}

// Enabled reports whether the assistant can be used.
func (a AssistantConfig) Enabled() bool {
	return a.APIKey != "" && a.Endpoint != "" && a.Model != ""
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes YAML over the defaults, so omitted keys keep their default values.
func Parse(raw []byte) (Config, error) {
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, err
	}
	cfg := mergeConfig(defaultConfig(), fileCfg)

	// enabled defaults to true, so only an explicit key turns it off
	var toggles struct {
		Breaker struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"breaker"`
	}
	if err := yaml.Unmarshal(raw, &toggles); err != nil {
		return Config{}, err
	}
	if toggles.Breaker.Enabled != nil {
		cfg.Breaker.Enabled = *toggles.Breaker.Enabled
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(assistantAPIKeyEnv); v != "" {
		c.Assistant.APIKey = v
	}
	if v := os.Getenv(assistantModelEnv); v != "" {
		c.Assistant.Model = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(adminAddrEnv); v != "" {
		c.Admin.Addr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.APIURL != "" {
		base.Telegram.APIURL = override.Telegram.APIURL
	}
	if override.Telegram.PollTimeout > 0 {
		base.Telegram.PollTimeout = override.Telegram.PollTimeout
	}

	if len(override.Lookup.Sources) > 0 {
		base.Lookup.Sources = override.Lookup.Sources
	}
	if override.Lookup.UserAgent != "" {
		base.Lookup.UserAgent = override.Lookup.UserAgent
	}
	if override.Lookup.RequestTimeout > 0 {
		base.Lookup.RequestTimeout = override.Lookup.RequestTimeout
	}
	if override.Lookup.FastPathTimeout > 0 {
		base.Lookup.FastPathTimeout = override.Lookup.FastPathTimeout
	}
	if len(override.Lookup.ProgressSteps) > 0 {
		base.Lookup.ProgressSteps = override.Lookup.ProgressSteps
	}
	if override.Lookup.HistoryLimit > 0 {
		base.Lookup.HistoryLimit = override.Lookup.HistoryLimit
	}

	if len(override.Wikipedia) > 0 {
		base.Wikipedia = override.Wikipedia
	}

	if override.DuckDuckGo.Endpoint != "" {
		base.DuckDuckGo.Endpoint = override.DuckDuckGo.Endpoint
	}
	if override.DuckDuckGo.Region != "" {
		base.DuckDuckGo.Region = override.DuckDuckGo.Region
	}

	if override.Breaker.MaxRequests > 0 {
		base.Breaker.MaxRequests = override.Breaker.MaxRequests
	}
	if override.Breaker.Interval > 0 {
		base.Breaker.Interval = override.Breaker.Interval
	}
	if override.Breaker.Timeout > 0 {
		base.Breaker.Timeout = override.Breaker.Timeout
	}
	if override.Breaker.FailureThreshold > 0 {
		base.Breaker.FailureThreshold = override.Breaker.FailureThreshold
	}
	if override.Breaker.MinRequests > 0 {
		base.Breaker.MinRequests = override.Breaker.MinRequests
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Assistant.Endpoint != "" {
		base.Assistant.Endpoint = override.Assistant.Endpoint
	}
	if override.Assistant.Model != "" {
		base.Assistant.Model = override.Assistant.Model
	}
	if override.Assistant.APIKey != "" {
		base.Assistant.APIKey = override.Assistant.APIKey
	}
	if override.Assistant.SystemPrompt != "" {
		base.Assistant.SystemPrompt = override.Assistant.SystemPrompt
	}
	if override.Assistant.MaxSessions > 0 {
		base.Assistant.MaxSessions = override.Assistant.MaxSessions
	}
	if override.Assistant.MaxMessages > 0 {
		base.Assistant.MaxMessages = override.Assistant.MaxMessages
	}
	if override.Assistant.SessionTTL > 0 {
		base.Assistant.SessionTTL = override.Assistant.SessionTTL
	}
	if override.Assistant.SweepInterval > 0 {
		base.Assistant.SweepInterval = override.Assistant.SweepInterval
	}

	if override.Admin.Addr != "" {
		base.Admin.Addr = override.Admin.Addr
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Telegram: TelegramConfig{
			APIURL:      "https://api.telegram.org",
			PollTimeout: 30 * time.Second,
		},
		Lookup: LookupConfig{
			Sources:         []string{"wikipedia_ru", "wikipedia_en", "duckduckgo"},
			UserAgent:       "LookupBot/1.0 (https://t.me/LookupBot)",
			RequestTimeout:  5 * time.Second,
			FastPathTimeout: 13 * time.Second,
			ProgressSteps: []ProgressStepConfig{
				{Text: "⏳ Ищу... [25%]", Delay: 3 * time.Second},
				{Text: "⏳ Ищу... [50%]", Delay: 3 * time.Second},
				{Text: "⏳ Ищу... [75%]", Delay: 3 * time.Second},
				{Text: "⏳ Почти готово... [100%]", Delay: 4 * time.Second},
			},
			HistoryLimit: 10,
		},
		Wikipedia: []WikipediaConfig{
			{
				Name:          "wikipedia_ru",
				Label:         "Подробнее",
				APIURL:        "https://ru.wikipedia.org/w/api.php",
				RestURL:       "https://ru.wikipedia.org/api/rest_v1",
				HistoryPrefix: "история",
			},
			{
				Name:    "wikipedia_en",
				Label:   "Подробнее",
				APIURL:  "https://en.wikipedia.org/w/api.php",
				RestURL: "https://en.wikipedia.org/api/rest_v1",
			},
		},
		DuckDuckGo: DuckDuckGoConfig{
			Endpoint: "https://api.duckduckgo.com/",
			Region:   "ru-ru",
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "lookupbot.db"},
		Assistant: AssistantConfig{
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o-mini",
			SystemPrompt:  "Ты - полезный ИИ-ассистент. Отвечай кратко и информативно.",
			MaxSessions:   1000,
			MaxMessages:   20,
			SessionTTL:    time.Hour,
			SweepInterval: 10 * time.Minute,
		},
	}
}
