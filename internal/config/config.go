package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Twitter application credentials
	ConsumerKey    string
	ConsumerSecret string

	// User context. Empty until `twapi login` has stored an account.
	AccessToken       string
	AccessTokenSecret string

	// Application-only bearer token
	BearerToken string

	// Logging
	LogLevel string

	// HTTP transport
	HTTPTimeout  time.Duration
	HTTPRetryMax int

	// Media
	MediaProcessingTimeout time.Duration

	// OAuth callback listener and the URL Twitter redirects to ("oob" for PIN)
	CallbackAddr string
	CallbackURL  string

	// Account Activity webhook receiver
	WebhookAddr string
	WebhookEnv  string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:      getEnv("DATABASE_PATH", "data/twapi.db"),
		ConsumerKey:       getEnv("TWITTER_CONSUMER_KEY", ""),
		ConsumerSecret:    getEnv("TWITTER_CONSUMER_SECRET", ""),
		AccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
		AccessTokenSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),
		BearerToken:       getEnv("TWITTER_BEARER_TOKEN", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CallbackAddr:      getEnv("CALLBACK_ADDR", "127.0.0.1:7878"),
		CallbackURL:       getEnv("CALLBACK_URL", "oob"),
		WebhookAddr:       getEnv("WEBHOOK_ADDR", "127.0.0.1:7878"),
		WebhookEnv:        getEnv("WEBHOOK_ENV", ""),
	}

	// Parse durations
	var err error
	cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	cfg.MediaProcessingTimeout, err = time.ParseDuration(getEnv("MEDIA_PROCESSING_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_PROCESSING_TIMEOUT: %w", err)
	}

	// Parse integers
	retryMax, err := strconv.Atoi(getEnv("HTTP_RETRY_MAX", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_RETRY_MAX: %w", err)
	}
	if retryMax < 0 {
		return nil, fmt.Errorf("invalid HTTP_RETRY_MAX: must not be negative")
	}
	cfg.HTTPRetryMax = retryMax

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForApp checks the consumer credentials every signed call needs.
func (c *Config) ValidateForApp() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ConsumerKey == "" {
		return fmt.Errorf("TWITTER_CONSUMER_KEY is required")
	}
	if c.ConsumerSecret == "" {
		return fmt.Errorf("TWITTER_CONSUMER_SECRET is required")
	}
	return nil
}

// ValidateForUser checks configuration needed for user-context calls.
func (c *Config) ValidateForUser() error {
	if err := c.ValidateForApp(); err != nil {
		return err
	}
	if c.AccessToken == "" {
		return fmt.Errorf("TWITTER_ACCESS_TOKEN is required (run `twapi login`)")
	}
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("TWITTER_ACCESS_TOKEN_SECRET is required (run `twapi login`)")
	}
	return nil
}

// ValidateForBearer checks configuration needed for application-only calls.
func (c *Config) ValidateForBearer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN is required")
	}
	return nil
}

// ValidateForWebhook checks configuration needed to serve webhooks.
func (c *Config) ValidateForWebhook() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ConsumerSecret == "" {
		return fmt.Errorf("TWITTER_CONSUMER_SECRET is required for webhook signatures")
	}
	if c.WebhookAddr == "" {
		return fmt.Errorf("WEBHOOK_ADDR is required")
	}
	return nil
}

// HasUserToken reports whether any part of an access token is configured.
// ValidateForUser reports a missing half.
func (c *Config) HasUserToken() bool {
	return c.AccessToken != "" || c.AccessTokenSecret != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
