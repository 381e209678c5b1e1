package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pion/stun/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	LogLevel          string        `mapstructure:"log_level"`
	Secret            string        `mapstructure:"secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	BodyLimit         int64         `mapstructure:"body_limit"`
	SendQueue         int           `mapstructure:"send_queue"`
	WriteWait         time.Duration `mapstructure:"write_wait"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit"`
	LoginRateInterval time.Duration `mapstructure:"login_rate_interval"`
	ICEServers        []ICEServer   `mapstructure:"ice_servers"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "secret")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("read_limit", 10*1024)
	v.SetDefault("body_limit", 10*1024)
	v.SetDefault("send_queue", 32)
	v.SetDefault("write_wait", "10s")
	v.SetDefault("login_rate_limit", 5)
	v.SetDefault("login_rate_interval", "1m")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

// Load reads config/config.<CONFIG_ENV>.yaml (CONFIG_ENV defaults to dev).
// A missing file is not an error; RENDEZVOUS_* environment variables
// override both the file and the defaults.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("RENDEZVOUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
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
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Str("addr", cfg.Addr()).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Secret == "" {
		errs = append(errs, errors.New("secret must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.SendQueue <= 0 {
		errs = append(errs, errors.New("send_queue must be positive"))
	}
	if c.ReadLimit <= 0 || c.BodyLimit <= 0 {
		errs = append(errs, errors.New("read_limit and body_limit must be positive"))
	}
	if c.LoginRateLimit <= 0 || c.LoginRateInterval <= 0 {
		errs = append(errs, errors.New("login rate limit and interval must be positive"))
	}
	for _, s := range c.ICEServers {
		for _, u := range s.URLs {
			if _, err := stun.ParseURI(u); err != nil {
				errs = append(errs, fmt.Errorf("ice server %q: %w", u, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
