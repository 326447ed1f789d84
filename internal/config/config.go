package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "REGFORM_"

// DefaultTimeout bounds each remote call.
const DefaultTimeout = 30 * time.Second

// Config holds the CLI settings. Values are layered: defaults, then the YAML
// config file, then environment variables (including a .env file), then
// flags.
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	Token         string        `yaml:"token"`
	EventID       int           `yaml:"event_id"`
	Fixture       string        `yaml:"fixture"`
	Timeout       time.Duration `yaml:"timeout"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	IncludeHidden bool          `yaml:"include_hidden_answers"`
	EventName     string        `yaml:"event_name"`
	InvitationURL string        `yaml:"invitation_url"`
	TemplateDir   string        `yaml:"template_dir"`
	// Serve, when set, is the listen address for serving the fixture as a
	// local registration API instead of running the prompts.
	Serve string `yaml:"serve"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timeout:   DefaultTimeout,
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Parse reads flags from args and fills the gaps from the environment and
// config files. getenv is usually os.Getenv; nil means no process
// environment.
func Parse(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	var (
		flags    Config
		path     string
		envFile  string
		eventRaw string
	)
	fs := flag.NewFlagSet("regform-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "YAML config file")
	fs.StringVar(&envFile, "env-file", "", "dotenv file (default .env when present)")
	fs.StringVar(&flags.BaseURL, "base-url", "", "registration API base URL")
	fs.StringVar(&flags.Token, "token", "", "bearer token forwarded to the API (prefer env)")
	fs.StringVar(&eventRaw, "event", "", "event id")
	fs.StringVar(&flags.Fixture, "fixture", "", "YAML or JSON fixture used instead of the API")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "timeout per remote call")
	fs.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&flags.LogFormat, "log-format", "", "text or json")
	fs.BoolVar(&flags.IncludeHidden, "include-hidden", false, "submit answers of hidden questions too")
	fs.StringVar(&flags.EventName, "event-name", "", "event name shown after registering")
	fs.StringVar(&flags.InvitationURL, "invitation-url", "", "invitation letter link shown after registering")
	fs.StringVar(&flags.TemplateDir, "templates", "", "directory overriding display templates")
	fs.StringVar(&flags.Serve, "serve", "", "serve the fixture as a registration API on this address")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) string {
		if value := getenv(EnvPrefix + key); value != "" {
			return value
		}
		return dotenv[EnvPrefix+key]
	}

	cfg := Default()
	if path == "" {
		path = lookup("CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["event"] {
		id, err := strconv.Atoi(strings.TrimSpace(eventRaw))
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid -event %q", eventRaw)
		}
		flags.EventID = id
	}
	cfg.applyFlags(flags, set)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readDotenv(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	setString := func(key string, dst *string) {
		if value := strings.TrimSpace(lookup(key)); value != "" {
			*dst = value
		}
	}
	setString("BASE_URL", &c.BaseURL)
	setString("TOKEN", &c.Token)
	setString("FIXTURE", &c.Fixture)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_FORMAT", &c.LogFormat)
	setString("EVENT_NAME", &c.EventName)
	setString("INVITATION_URL", &c.InvitationURL)
	setString("TEMPLATE_DIR", &c.TemplateDir)
	setString("SERVE", &c.Serve)

	if raw := strings.TrimSpace(lookup("EVENT_ID")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: invalid %sEVENT_ID %q", EnvPrefix, raw)
		}
		c.EventID = id
	}
	if raw := strings.TrimSpace(lookup("TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: invalid %sTIMEOUT %q: %w", EnvPrefix, raw, err)
		}
		c.Timeout = timeout
	}
	if raw := strings.TrimSpace(lookup("INCLUDE_HIDDEN_ANSWERS")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("config: invalid %sINCLUDE_HIDDEN_ANSWERS %q", EnvPrefix, raw)
		}
		c.IncludeHidden = include
	}
	return nil
}

func (c *Config) applyFlags(flags Config, set map[string]bool) {
	if set["base-url"] {
		c.BaseURL = flags.BaseURL
	}
	if set["token"] {
		c.Token = flags.Token
	}
	if set["event"] {
		c.EventID = flags.EventID
	}
	if set["fixture"] {
		c.Fixture = flags.Fixture
	}
	if set["timeout"] {
		c.Timeout = flags.Timeout
	}
	if set["log-level"] {
		c.LogLevel = flags.LogLevel
	}
	if set["log-format"] {
		c.LogFormat = flags.LogFormat
	}
	if set["include-hidden"] {
		c.IncludeHidden = flags.IncludeHidden
	}
	if set["event-name"] {
		c.EventName = flags.EventName
	}
	if set["invitation-url"] {
		c.InvitationURL = flags.InvitationURL
	}
	if set["templates"] {
		c.TemplateDir = flags.TemplateDir
	}
	if set["serve"] {
		c.Serve = flags.Serve
	}
}

// Validate checks that exactly one data source is configured and that the
// remaining settings are usable.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "" && c.Fixture == "":
		return errors.New("config: base URL or fixture required (use -base-url, -fixture or " + EnvPrefix + "BASE_URL)")
	case c.BaseURL != "" && c.Fixture != "":
		return errors.New("config: base URL and fixture are mutually exclusive")
	}
	if c.Serve != "" && c.Fixture == "" {
		return errors.New("config: -serve requires a fixture")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// Logger builds the structured logger described by the config.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
