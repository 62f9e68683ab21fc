package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Host                string        `mapstructure:"HOST"`
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DBPath              string        `mapstructure:"DB_PATH"`
	APIBaseURL          string        `mapstructure:"API_BASE_URL"`
	APITimeout          time.Duration `mapstructure:"API_TIMEOUT"`
	PhonePrefix         string        `mapstructure:"PHONE_PREFIX"`
	PollInterval        time.Duration `mapstructure:"POLL_INTERVAL"`
	PollTimeout         time.Duration `mapstructure:"POLL_TIMEOUT"`
	PollMaxAttempts     int           `mapstructure:"POLL_MAX_ATTEMPTS"`
	RedirectDelay       time.Duration `mapstructure:"REDIRECT_DELAY"`
	RedirectRoute       string        `mapstructure:"REDIRECT_ROUTE"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	StartingSoonMinutes int           `mapstructure:"STARTING_SOON_MINUTES"`
	AWSRegion           string        `mapstructure:"AWS_REGION"`
	CognitoClientID     string        `mapstructure:"COGNITO_CLIENT_ID"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"HOST", "PORT", "ENV", "DB_PATH", "API_BASE_URL", "API_TIMEOUT", "PHONE_PREFIX",
	"POLL_INTERVAL", "POLL_TIMEOUT", "POLL_MAX_ATTEMPTS", "REDIRECT_DELAY",
	"REDIRECT_ROUTE", "SESSION_TTL", "STARTING_SOON_MINUTES", "AWS_REGION", "COGNITO_CLIENT_ID",
	"CORS_ORIGINS",
}

// Load reads the environment (and .env, when present) into a Config.
// Callers pick the checks they need: Validate for serving,
// ValidateStorage for commands that only touch the local store.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// loopback only: the token store belongs to one device
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", "6060")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PATH", "./mibo.db")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("PHONE_PREFIX", "+91")
	v.SetDefault("POLL_INTERVAL", "3s")
	v.SetDefault("POLL_TIMEOUT", "15m")
	v.SetDefault("POLL_MAX_ATTEMPTS", 0)
	v.SetDefault("REDIRECT_DELAY", "3s")
	v.SetDefault("REDIRECT_ROUTE", "/profileDashboard")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("STARTING_SOON_MINUTES", 15)
	v.SetDefault("AWS_REGION", "ap-south-1")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// CognitoEnabled is false when no app client is configured; login and
// token refresh are then unavailable and stored tokens are used as-is.
func (c *Config) CognitoEnabled() bool {
	return c.CognitoClientID != ""
}

func (c *Config) StartingSoonThreshold() time.Duration {
	return time.Duration(c.StartingSoonMinutes) * time.Minute
}

func (c *Config) ValidateStorage() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.PhonePrefix == "" || !strings.HasPrefix(c.PhonePrefix, "+") {
		return fmt.Errorf("PHONE_PREFIX must start with '+', got %q", c.PhonePrefix)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.PollTimeout < 0 || c.PollMaxAttempts < 0 {
		return fmt.Errorf("POLL_TIMEOUT and POLL_MAX_ATTEMPTS must not be negative")
	}
	if c.PollTimeout == 0 && c.PollMaxAttempts == 0 {
		return fmt.Errorf("payment polling needs POLL_TIMEOUT or POLL_MAX_ATTEMPTS to be bounded")
	}
	if c.RedirectDelay < 0 {
		return fmt.Errorf("REDIRECT_DELAY must not be negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	if c.StartingSoonMinutes <= 0 {
		return fmt.Errorf("STARTING_SOON_MINUTES must be positive")
	}
	return nil
}
