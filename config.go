package twitterbot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"gopkg.in/yaml.v3"
)

// ClientConfig holds the transport options for the REST session.
// Zero values are replaced by defaults.
type ClientConfig struct {
	// Cache stores successful GET responses keyed by request URL. Nil disables caching.
	Cache Cache

	// Host is the API host, either a bare hostname or a full base URL.
	Host string

	// Unmarshal decodes response bodies. Default: encoding/json.
	Unmarshal func(data []byte, v any) error

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// RetryCount is the number of retries after the first attempt.
	RetryCount int

	// RetryDelay is the initial wait between retries; it doubles on each attempt.
	RetryDelay time.Duration

	// RetryErrors is the set of HTTP status codes that trigger a retry.
	RetryErrors []int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// UploadHost is the media upload host. No read operation uses it.
	UploadHost string

	// UserAgent overrides the default browser User-Agent.
	UserAgent string

	// WaitOnRateLimit makes requests block until a rate-limit window resets
	// instead of failing with ErrRateLimited.
	WaitOnRateLimit bool
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.Host == "" {
		cfg.Host = "api.twitter.com"
	}
	if cfg.UploadHost == "" {
		cfg.UploadHost = "upload.twitter.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if cfg.RetryErrors == nil {
		cfg.RetryErrors = []int{500, 502, 503, 504}
	}
	if cfg.UserAgent == "" && len(stealth.BuiltinProfiles) > 0 {
		cfg.UserAgent = stealth.BuiltinProfiles[0].UserAgent
	}
	if cfg.Unmarshal == nil {
		cfg.Unmarshal = json.Unmarshal
	}
}

// shouldRetry reports whether the status code is in the retry set.
func (cfg *ClientConfig) shouldRetry(status int) bool {
	for _, s := range cfg.RetryErrors {
		if s == status {
			return true
		}
	}
	return false
}

// BotConfig tunes the facade itself.
type BotConfig struct {
	// SearchCount is the page size for the reply search. 0 uses the API default.
	SearchCount int

	// TimelineCount is the page size for timeline fetches. 0 uses the API default.
	TimelineCount int

	// Out receives human-readable verification status lines. Default: os.Stdout.
	Out io.Writer
}

func (cfg *BotConfig) defaults() {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
}

// FileConfig is the on-disk YAML layout.
type FileConfig struct {
	Credentials Credentials `yaml:"credentials"`

	Client struct {
		Host            string `yaml:"host"`
		UploadHost      string `yaml:"upload_host"`
		Proxy           string `yaml:"proxy"`
		UserAgent       string `yaml:"user_agent"`
		Timeout         string `yaml:"timeout"`
		RetryCount      int    `yaml:"retry_count"`
		RetryDelay      string `yaml:"retry_delay"`
		RetryErrors     []int  `yaml:"retry_errors"`
		WaitOnRateLimit bool   `yaml:"wait_on_rate_limit"`
		CacheSize       int    `yaml:"cache_size"`
		CacheTTL        string `yaml:"cache_ttl"`
	} `yaml:"client"`

	Bot struct {
		SearchCount   int `yaml:"search_count"`
		TimelineCount int `yaml:"timeline_count"`
	} `yaml:"bot"`

	Log struct {
		Path   string `yaml:"path"`
		Level  string `yaml:"level"`
		Append bool   `yaml:"append"`
	} `yaml:"log"`
}

// LoadFileConfig reads a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// ClientConfig converts the file's client section, parsing durations.
func (fc *FileConfig) ClientConfig() (ClientConfig, error) {
	cfg := ClientConfig{
		Host:            fc.Client.Host,
		UploadHost:      fc.Client.UploadHost,
		Proxy:           fc.Client.Proxy,
		UserAgent:       fc.Client.UserAgent,
		RetryCount:      fc.Client.RetryCount,
		RetryErrors:     fc.Client.RetryErrors,
		WaitOnRateLimit: fc.Client.WaitOnRateLimit,
	}

	var err error
	if cfg.Timeout, err = parseOptionalDuration(fc.Client.Timeout); err != nil {
		return cfg, fmt.Errorf("invalid client.timeout: %w", err)
	}
	if cfg.RetryDelay, err = parseOptionalDuration(fc.Client.RetryDelay); err != nil {
		return cfg, fmt.Errorf("invalid client.retry_delay: %w", err)
	}

	if fc.Client.CacheSize > 0 {
		ttl, err := parseOptionalDuration(fc.Client.CacheTTL)
		if err != nil {
			return cfg, fmt.Errorf("invalid client.cache_ttl: %w", err)
		}
		cfg.Cache = NewMemoryCache(fc.Client.CacheSize, ttl)
	}
	return cfg, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
