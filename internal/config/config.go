package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingDatabaseURL is returned when no database DSN is configured.
var ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")

// DefaultEmailDomains is the provider allow-list used when none is configured.
var DefaultEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"icloud.com",
	"live.com",
}

const (
	defaultServerPort  = "3000"
	defaultLogLevel    = "info"
	defaultUserAgent   = "TVGate/1.0"
	defaultTimeout     = 30 * time.Second
	defaultMaxPageSize = 100
)

// Config holds application configuration.
type Config struct {
	DatabaseURL         string        `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL            string        `yaml:"redis_url" env:"REDIS_URL"`
	ServerPort          string        `yaml:"server_port" env:"SERVER_PORT"`
	LogLevel            string        `yaml:"log_level" env:"LOG_LEVEL"`
	UserAgent           string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout             time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT"`
	AllowedEmailDomains []string      `yaml:"allowed_email_domains" env:"ALLOWED_EMAIL_DOMAINS"`
	MaxPageSize         int           `yaml:"admin_max_page_size" env:"ADMIN_MAX_PAGE_SIZE"`
}

// Load builds config from environment variables.
// If DATABASE_URL is not set, Load tries to load .env.local and .env from the current directory.
// DATABASE_URL is required; everything else has a default.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ServerPort:  os.Getenv("SERVER_PORT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		UserAgent:   os.Getenv("FETCHER_USER_AGENT"),
	}
	if c.ServerPort == "" {
		c.ServerPort = os.Getenv("PORT")
	}
	if s := os.Getenv("FETCHER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.Timeout = d
		}
	}
	if s := os.Getenv("ALLOWED_EMAIL_DOMAINS"); s != "" {
		c.AllowedEmailDomains = splitList(s)
	}
	if s := os.Getenv("ADMIN_MAX_PAGE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			c.MaxPageSize = n
		}
	}
	c.applyDefaults()
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = defaultServerPort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if len(c.AllowedEmailDomains) == 0 {
		c.AllowedEmailDomains = append([]string(nil), DefaultEmailDomains...)
	}
	for i, d := range c.AllowedEmailDomains {
		c.AllowedEmailDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = defaultMaxPageSize
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
