// Package config provides configuration loading and validation for skillboard.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Values come from defaults, an optional
// YAML file and environment variables, in that order of precedence.
type Config struct {
	Port           int      `yaml:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Rule table source: Postgres when DatabaseURL is set, else the CSV at DataPath
	DataPath    string `yaml:"data_path" validate:"required_without=DatabaseURL"`
	DatabaseURL string `yaml:"database_url"`
	RulesTable  string `yaml:"rules_table" validate:"required"`

	GeminiAPIKey   string        `yaml:"gemini_api_key"`
	GeminiBaseURL  string        `yaml:"gemini_base_url" validate:"omitempty,url"`
	PreferredModel string        `yaml:"preferred_model" validate:"required"`
	FallbackModel  string        `yaml:"fallback_model" validate:"required"`
	LLMTimeout     time.Duration `yaml:"llm_timeout" validate:"gt=0"`

	PreviewRows int `yaml:"preview_rows" validate:"min=1,max=1000"`
	FilterLimit int `yaml:"filter_limit" validate:"min=1,max=10000"`
	ContextRows int `yaml:"context_rows" validate:"min=1,max=50"`
	ExportRows  int `yaml:"export_rows" validate:"min=1,max=50"`
	ChartTop    int `yaml:"chart_top" validate:"min=1,max=100"`

	AssistantRate  float64       `yaml:"assistant_rate" validate:"gt=0"` // requests per second
	AssistantBurst int           `yaml:"assistant_burst" validate:"min=1"`
	SessionIdle    time.Duration `yaml:"session_idle" validate:"gt=0"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogDev   bool   `yaml:"log_dev"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:           8001,
		AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		DataPath:       "skill_rules_final.csv",
		RulesTable:     "skill_rules",
		PreferredModel: "gemini-1.5-flash",
		FallbackModel:  "models/gemini-1.5-flash",
		LLMTimeout:     30 * time.Second,
		PreviewRows:    10,
		FilterLimit:    50,
		ContextRows:    5,
		ExportRows:     25,
		ChartTop:       10,
		AssistantRate:  1,
		AssistantBurst: 5,
		SessionIdle:    24 * time.Hour,
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (optional)
// and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("DATABASE_URL", &c.DatabaseURL)
	str("SKILLBOARD_DATA_PATH", &c.DataPath)
	str("SKILLBOARD_RULES_TABLE", &c.RulesTable)
	str("SKILLBOARD_GEMINI_BASE_URL", &c.GeminiBaseURL)
	str("SKILLBOARD_PREFERRED_MODEL", &c.PreferredModel)
	str("SKILLBOARD_FALLBACK_MODEL", &c.FallbackModel)
	str("SKILLBOARD_LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be a number: %q", v)
		}
		c.Port = port
	}
	if v, ok := lookup("SKILLBOARD_LLM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config error: SKILLBOARD_LLM_TIMEOUT: %w", err)
		}
		c.LLMTimeout = d
	}
	if v, ok := lookup("SKILLBOARD_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
	if v, ok := lookup("SKILLBOARD_LOG_DEV"); ok && v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: SKILLBOARD_LOG_DEV: %w", err)
		}
		c.LogDev = dev
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("config error: %w", err)
}

// UsesDatabase reports whether rules are read from Postgres
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
