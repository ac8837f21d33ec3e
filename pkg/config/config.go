package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables before mapping them onto
// config paths: INTAKE_DATABASE_HOST -> database.host.
const envPrefix = "INTAKE_"

// envPaths maps environment variable suffixes to config paths. Leaf keys
// containing underscores cannot be derived mechanically, so the table is
// explicit.
var envPaths = map[string]string{
	"DATABASE_CONN_STRING":            "database.conn_string",
	"DATABASE_HOST":                   "database.host",
	"DATABASE_PORT":                   "database.port",
	"DATABASE_USER":                   "database.user",
	"DATABASE_PASSWORD":               "database.password",
	"DATABASE_NAME":                   "database.name",
	"DATABASE_SSL_MODE":               "database.ssl_mode",
	"DATABASE_AUTO_MIGRATE":           "database.auto_migrate",
	"TRACKER_TOKEN":                   "tracker.token",
	"TRACKER_BASE_URL":                "tracker.base_url",
	"TRACKER_WORKSPACE_ID":            "tracker.workspace_id",
	"TRACKER_TIMEOUT":                 "tracker.timeout",
	"LLM_API_KEY":                     "llm.api_key",
	"LLM_MODEL":                       "llm.model",
	"RESOLVER_ALLOW_SECTION_CREATION": "resolver.allow_section_creation",
	"LOG_LEVEL":                       "log.level",
	"LOG_JSON":                        "log.json",
}

// Config is the full service configuration. Values come from struct
// defaults overridden by INTAKE_* environment variables.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	LLM      LLMConfig      `koanf:"llm"`
	Resolver ResolverConfig `koanf:"resolver"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig holds entity store connection settings.
type DatabaseConfig struct {
	ConnString  string `koanf:"conn_string"`
	Host        string `koanf:"host"`
	Port        string `koanf:"port"`
	User        string `koanf:"user"`
	Password    string `koanf:"password"`
	Name        string `koanf:"name"`
	SSLMode     string `koanf:"ssl_mode"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// TrackerConfig holds task tracker API settings.
type TrackerConfig struct {
	Token       string        `koanf:"token"`
	BaseURL     string        `koanf:"base_url"`
	WorkspaceID string        `koanf:"workspace_id"`
	Timeout     time.Duration `koanf:"timeout"`
}

// LLMConfig holds extraction model settings.
type LLMConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// ResolverConfig holds name resolution policy knobs.
type ResolverConfig struct {
	// AllowSectionCreation lets the section resolver create missing
	// sections on the tracker instead of falling back to the default
	// section.
	AllowSectionCreation bool `koanf:"allow_section_creation"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

// Default returns the built-in configuration baseline.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "intake",
			SSLMode: "disable",
		},
		Tracker: TrackerConfig{
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Load builds the configuration from defaults and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if path, ok := envPaths[strings.TrimPrefix(key, envPrefix)]; ok {
				return path, value
			}
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
