package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dkeye/Pictionary/internal/domain"
)

const envPrefix = "PICTIONARY"

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadLimit       int64         `mapstructure:"read_limit"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"`
	MaxFanout       int           `mapstructure:"max_fanout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	Backpressure    string        `mapstructure:"backpressure"`
	Words           []string      `mapstructure:"words"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (or --config), then
// PICTIONARY_* env vars, then command line flags, on top of defaults.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("pictionary", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a yaml config file")
	fs.String("mode", "release", "gin mode: release, debug or test")
	fs.Int("port", 8000, "listen port")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "console", "log format: console or json")
	fs.String("backpressure", "log", "slow client policy: log or kick")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("send_timeout", "2s")
	v.SetDefault("max_fanout", 16)
	v.SetDefault("rate_limit", 60)
	v.SetDefault("rate_burst", 120)
	v.SetDefault("backpressure", "log")
	v.SetDefault("words", domain.DefaultWords)
	v.SetDefault("shutdown_timeout", "5s")

	for key, flag := range map[string]string{
		"mode":         "mode",
		"port":         "port",
		"log_level":    "log-level",
		"log_format":   "log-format",
		"backpressure": "backpressure",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	fileName := *configFile
	explicit := fileName != ""
	if !explicit {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		if explicit {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Int("words", len(cfg.Words)).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if !slices.Contains([]string{"console", "json"}, c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q must be console or json", c.LogFormat))
	}
	if !slices.Contains([]string{"log", "kick"}, c.Backpressure) {
		errs = append(errs, fmt.Errorf("backpressure %q must be log or kick", c.Backpressure))
	}
	if len(c.Words) == 0 {
		errs = append(errs, errors.New("words must not be empty"))
	}
	if c.SendBuffer <= 0 || c.MaxFanout <= 0 || c.ReadLimit <= 0 {
		errs = append(errs, errors.New("send_buffer, max_fanout and read_limit must be positive"))
	}
	if c.SendTimeout <= 0 || c.WriteWait <= 0 || c.PongWait <= 0 || c.PingPeriod <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.PingPeriod >= c.PongWait {
		errs = append(errs, fmt.Errorf("ping_period %s must be shorter than pong_wait %s", c.PingPeriod, c.PongWait))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("rate_limit and rate_burst must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
