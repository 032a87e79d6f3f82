package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "CURATOR_CONFIG"
)

// Config holds high-level settings required across the application. It is
// built once by Load and handed to constructors; nothing reads it globally.
type Config struct {
	Workflow      WorkflowConfig     `yaml:"workflow"`
	News          NewsConfig         `yaml:"news"`
	Social        SocialConfig       `yaml:"social"`
	Generation    GenerationConfig   `yaml:"generation"`
	Search        SearchConfig       `yaml:"search"`
	LLM           LLMConfig          `yaml:"llm"`
	Paths         PathsConfig        `yaml:"paths"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// WorkflowConfig drives the supervisor's retry and failure policy.
type WorkflowConfig struct {
	MaxRetries              int  `yaml:"maxRetries"`
	RetryDelaySeconds       int  `yaml:"retryDelaySeconds"`
	ContinueOnFailure       bool `yaml:"continueOnFailure"`
	SaveIntermediateResults bool `yaml:"saveIntermediateResults"`
	// Parallel is accepted for compatibility; steps always run sequentially.
	Parallel bool `yaml:"parallel"`
}

// RetryDelay is the base backoff delay.
func (w WorkflowConfig) RetryDelay() time.Duration {
	return time.Duration(w.RetryDelaySeconds) * time.Second
}

// NewsConfig controls discovery.
type NewsConfig struct {
	Keywords       []string `yaml:"keywords"`
	DaysBack       int      `yaml:"daysBack"`
	MaxResults     int      `yaml:"maxResults"`
	Language       string   `yaml:"language"`
	CountryFocus   string   `yaml:"countryFocus"`
	SourceDomains  []string `yaml:"sourceDomains"`
	ResourceLinks  []string `yaml:"resourceLinks"`
	EventCalendars []string `yaml:"eventCalendars"`
	SkipKnownURLs  bool     `yaml:"skipKnownUrls"`
	SearchWorkers  int      `yaml:"searchWorkers"`
	EnrichWorkers  int      `yaml:"enrichWorkers"`
}

// SocialConfig controls the social-watch step.
type SocialConfig struct {
	Accounts           map[string][]string `yaml:"accounts"`
	Keywords           []string            `yaml:"keywords"`
	MaxPostsPerAccount int                 `yaml:"maxPostsPerAccount"`
	LookbackDays       int                 `yaml:"lookbackDays"`
	PriorityCategories []string            `yaml:"priorityCategories"`
}

// GenerationConfig carries brand settings handed to the content generator.
type GenerationConfig struct {
	BrandName          string            `yaml:"brandName"`
	BrandTagline       string            `yaml:"brandTagline"`
	BrandVoice         map[string]string `yaml:"brandVoice"`
	TargetAudience     map[string]string `yaml:"targetAudience"`
	DefaultContentType string            `yaml:"defaultContentType"`
	SummaryLength      string            `yaml:"summaryLength"`
	BlogPostLength     string            `yaml:"blogPostLength"`
	IncludeSEO         bool              `yaml:"includeSeo"`
	IncludeCTA         bool              `yaml:"includeCta"`
}

// SearchConfig points at the primary search capability and the feed fallback.
type SearchConfig struct {
	Endpoint     string `yaml:"endpoint"`
	APIKey       string `yaml:"apiKey"`
	EngineID     string `yaml:"engineId"`
	FeedTemplate string `yaml:"feedTemplate"`
}

// LLMConfig defines how to contact the chat completion API.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// PathsConfig lists the artifact directories.
type PathsConfig struct {
	Output  string `yaml:"output"`
	Content string `yaml:"content"`
	Logs    string `yaml:"logs"`
}

// DatabaseConfig describes the run-history store. Empty disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when scheduled runs fire.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration: defaults, then the YAML file named by
// CURATOR_CONFIG (if any), then .env, then environment variables.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = Default()
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg.applyEnvOverrides(os.LookupEnv)
	cfg.bindTimezone()

	return cfg
}

// Validate rejects settings the workflow cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.News.DaysBack < 0 {
		errs = append(errs, fmt.Errorf("news.daysBack must be >= 0, got %d", c.News.DaysBack))
	}
	if c.News.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("news.maxResults must be > 0, got %d", c.News.MaxResults))
	}
	if c.Workflow.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("workflow.maxRetries must be > 0, got %d", c.Workflow.MaxRetries))
	}
	if c.Workflow.RetryDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("workflow.retryDelaySeconds must be >= 0, got %d", c.Workflow.RetryDelaySeconds))
	}
	return errors.Join(errs...)
}

// StartDate is the discovery cutoff: midnight UTC, DaysBack days before now.
func (c Config) StartDate(now time.Time) time.Time {
	day := now.UTC().AddDate(0, 0, -c.News.DaysBack)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnvOverrides(lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = splitList(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				log.Printf("config: %s=%q is not an integer, keeping %d", key, v, *dst)
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				log.Printf("config: %s=%q is not a boolean, keeping %t", key, v, *dst)
				return
			}
			*dst = b
		}
	}

	str("WORKER_MODEL", &c.LLM.Model)
	str("LLM_API_KEY", &c.LLM.APIKey)
	str("LLM_ENDPOINT", &c.LLM.Endpoint)

	integer("DAYS_BACK", &c.News.DaysBack)
	integer("MAX_RESULTS", &c.News.MaxResults)
	str("LANGUAGE", &c.News.Language)
	str("COUNTRY_FOCUS", &c.News.CountryFocus)
	list("KEYWORDS", &c.News.Keywords)
	list("SOURCE_DOMAINS", &c.News.SourceDomains)
	list("RESOURCE_LINKS", &c.News.ResourceLinks)
	list("EVENT_CALENDARS", &c.News.EventCalendars)
	boolean("SKIP_KNOWN_URLS", &c.News.SkipKnownURLs)

	integer("MAX_RETRIES", &c.Workflow.MaxRetries)
	integer("RETRY_DELAY", &c.Workflow.RetryDelaySeconds)
	boolean("CONTINUE_ON_FAILURE", &c.Workflow.ContinueOnFailure)
	boolean("SAVE_INTERMEDIATE_RESULTS", &c.Workflow.SaveIntermediateResults)

	str("OUTPUT_DIRECTORY", &c.Paths.Output)
	str("CONTENT_OUTPUT_DIRECTORY", &c.Paths.Content)
	str("WORKFLOW_LOGS_DIRECTORY", &c.Paths.Logs)

	str("SEARCH_API_KEY", &c.Search.APIKey)
	str("SEARCH_ENDPOINT", &c.Search.Endpoint)
	str("SEARCH_ENGINE_ID", &c.Search.EngineID)

	str("TELEGRAM_BOT_TOKEN", &c.Notifications.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Notifications.Telegram.ChatID)
	str("DATABASE_DSN", &c.Database.DSN)

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("SCHEDULE_CRON", &c.Scheduler.CronExpression)
	str("SCHEDULE_TIMEZONE", &c.Scheduler.Timezone)
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
