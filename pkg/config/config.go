package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Engine kinds understood by the model loader.
const (
	EngineTGI        = "tgi"
	EngineOllama     = "ollama"
	EngineOpenRouter = "openrouter"
)

// History drivers.
const (
	HistoryNone     = "none"
	HistoryPostgres = "postgres"
	HistorySQLite   = "sqlite"
)

type Config struct {
	Port       string           `mapstructure:"port"`
	Log        LogConfig        `mapstructure:"log"`
	Model      ModelConfig      `mapstructure:"model"`
	Generation GenerationConfig `mapstructure:"generation"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	History    HistoryConfig    `mapstructure:"history"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ModelConfig struct {
	Engine         string        `mapstructure:"engine"`
	Name           string        `mapstructure:"name"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// GenerationConfig holds the fixed sampling parameters sent with every request.
type GenerationConfig struct {
	MaxNewTokens     int     `mapstructure:"max_new_tokens"`
	DoSample         bool    `mapstructure:"do_sample"`
	Temperature      float64 `mapstructure:"temperature"`
	TopK             int     `mapstructure:"top_k"`
	TrimTrailingTurn bool    `mapstructure:"trim_trailing_turn"`
}

type PromptConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	SanitizeMarkers bool   `mapstructure:"sanitize_markers"`
}

type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("model.engine", EngineTGI)
	v.SetDefault("model.name", "TinyLlama/TinyLlama-1.1B-Chat-v1.0")
	v.SetDefault("model.base_url", "http://localhost:8081")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.max_concurrency", 0)
	v.SetDefault("model.timeout", "120s")

	v.SetDefault("generation.max_new_tokens", 512)
	v.SetDefault("generation.do_sample", true)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.top_k", 50)
	v.SetDefault("generation.trim_trailing_turn", true)

	v.SetDefault("prompt.default_currency", "INR")
	v.SetDefault("prompt.sanitize_markers", false)

	v.SetDefault("history.driver", HistoryNone)
	v.SetDefault("history.dsn", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "finadvice")
	v.SetDefault("auth.jwt_ttl", "60m")
}

// Load reads flags, the optional YAML file, FINADVICE_* environment variables and
// an optional .env file, in increasing order of precedence for the last three.
func Load(args []string) (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("finadvice", pflag.ContinueOnError)
	configFile := fs.String("config", "", "Path to a YAML config file")
	debug := fs.BoolP("debug", "d", false, "Enable debug logging")
	fs.String("port", "5000", "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FINADVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// plain names kept for container platforms that inject them
	_ = v.BindEnv("port", "FINADVICE_PORT", "PORT")
	_ = v.BindEnv("history.dsn", "FINADVICE_HISTORY_DSN", "DATABASE_URL")
	if err := v.BindPFlag("port", fs.Lookup("port")); err != nil {
		return Config{}, err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	switch c.Model.Engine {
	case EngineTGI, EngineOllama, EngineOpenRouter:
	default:
		return fmt.Errorf("unknown model.engine %q", c.Model.Engine)
	}
	if c.Model.Name == "" {
		return errors.New("model.name is required")
	}
	if c.Model.MaxConcurrency < 0 {
		return errors.New("model.max_concurrency must not be negative")
	}
	switch c.History.Driver {
	case HistoryNone, "":
	case HistoryPostgres, HistorySQLite:
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for driver %q", c.History.Driver)
		}
	default:
		return fmt.Errorf("unknown history.driver %q", c.History.Driver)
	}
	return nil
}
