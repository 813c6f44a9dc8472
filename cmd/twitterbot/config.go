package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	twitterbot "github.com/anatolykoptev/go-twitterbot"
)

// Config holds everything the CLI needs to build a Bot.
type Config struct {
	Credentials twitterbot.Credentials
	Client      twitterbot.ClientConfig
	Bot         twitterbot.BotConfig
	Log         twitterbot.LogConfig
}

// Load reads configuration from environment variables, then overlays the
// optional YAML file at path.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Credentials: twitterbot.Credentials{
			ConsumerKey:    os.Getenv("TWITTER_CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("TWITTER_CONSUMER_SECRET"),
			AccessToken:    os.Getenv("TWITTER_ACCESS_TOKEN"),
			AccessSecret:   os.Getenv("TWITTER_ACCESS_SECRET"),
		},
		Client: twitterbot.ClientConfig{
			Host:  os.Getenv("TWITTER_HOST"),
			Proxy: os.Getenv("TWITTER_PROXY"),
		},
		Log: twitterbot.LogConfig{
			Path:  getEnv("LOG_FILE", "bot.log"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	var err error
	if cfg.Client.Timeout, err = time.ParseDuration(getEnv("TWITTER_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("invalid TWITTER_TIMEOUT: %w", err)
	}
	if cfg.Client.RetryDelay, err = time.ParseDuration(getEnv("TWITTER_RETRY_DELAY", "0s")); err != nil {
		return nil, fmt.Errorf("invalid TWITTER_RETRY_DELAY: %w", err)
	}
	if cfg.Client.RetryCount, err = strconv.Atoi(getEnv("TWITTER_RETRY_COUNT", "0")); err != nil {
		return nil, fmt.Errorf("invalid TWITTER_RETRY_COUNT: %w", err)
	}
	if cfg.Client.WaitOnRateLimit, err = strconv.ParseBool(getEnv("TWITTER_WAIT_ON_RATE_LIMIT", "false")); err != nil {
		return nil, fmt.Errorf("invalid TWITTER_WAIT_ON_RATE_LIMIT: %w", err)
	}

	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// overlayFile replaces values with the non-empty ones from a YAML file.
func (c *Config) overlayFile(path string) error {
	fc, err := twitterbot.LoadFileConfig(path)
	if err != nil {
		return err
	}
	fileClient, err := fc.ClientConfig()
	if err != nil {
		return err
	}

	setString(&c.Credentials.ConsumerKey, fc.Credentials.ConsumerKey)
	setString(&c.Credentials.ConsumerSecret, fc.Credentials.ConsumerSecret)
	setString(&c.Credentials.AccessToken, fc.Credentials.AccessToken)
	setString(&c.Credentials.AccessSecret, fc.Credentials.AccessSecret)

	setString(&c.Client.Host, fileClient.Host)
	setString(&c.Client.UploadHost, fileClient.UploadHost)
	setString(&c.Client.Proxy, fileClient.Proxy)
	setString(&c.Client.UserAgent, fileClient.UserAgent)
	if fileClient.Timeout > 0 {
		c.Client.Timeout = fileClient.Timeout
	}
	if fileClient.RetryCount > 0 {
		c.Client.RetryCount = fileClient.RetryCount
	}
	if fileClient.RetryDelay > 0 {
		c.Client.RetryDelay = fileClient.RetryDelay
	}
	if fileClient.RetryErrors != nil {
		c.Client.RetryErrors = fileClient.RetryErrors
	}
	if fileClient.WaitOnRateLimit {
		c.Client.WaitOnRateLimit = true
	}
	if fileClient.Cache != nil {
		c.Client.Cache = fileClient.Cache
	}

	if fc.Bot.SearchCount > 0 {
		c.Bot.SearchCount = fc.Bot.SearchCount
	}
	if fc.Bot.TimelineCount > 0 {
		c.Bot.TimelineCount = fc.Bot.TimelineCount
	}

	setString(&c.Log.Path, fc.Log.Path)
	setString(&c.Log.Level, fc.Log.Level)
	if fc.Log.Append {
		c.Log.Append = true
	}
	return nil
}

// Validate checks that credentials are present.
func (c *Config) Validate() error {
	return c.Credentials.Validate()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
