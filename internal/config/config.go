package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "prodscout"

	// DefaultListenAddress is where the HTTP API listens.
	DefaultListenAddress = ":8080"

	// DefaultModelName is used when OPENAI_MODEL_NAME is not set.
	DefaultModelName = "gpt-4o-mini"

	// DefaultModelBaseURL is the OpenAI compatible API root.
	DefaultModelBaseURL = "https://api.openai.com/v1"

	// DefaultModelMaxRetries is how often the model client retries server
	// errors and network failures. Rate limit responses are left to the
	// rate limit manager.
	DefaultModelMaxRetries = 3

	// DefaultModelMaxConcurrency bounds in-flight generation calls.
	DefaultModelMaxConcurrency = 5

	// DefaultModelRequestsPerSecond paces generation calls. Zero disables pacing.
	DefaultModelRequestsPerSecond = 0

	// DefaultModelTimeout bounds one generation HTTP call.
	DefaultModelTimeout = 120 * time.Second

	// DefaultFetchTimeout bounds one page fetch and one URL validation.
	DefaultFetchTimeout = 5 * time.Second

	// DefaultMaxContentLength is the largest response body accepted, in bytes.
	DefaultMaxContentLength = 10_000_000

	// DefaultRateLimitWindow is the per-domain throttle window.
	DefaultRateLimitWindow = 60 * time.Second

	// DefaultRateLimitBudget is how many requests a domain may receive per window.
	DefaultRateLimitBudget = 60

	// DefaultRetryMax is the number of retries for rate limited operations.
	DefaultRetryMax = 6

	// DefaultRetryInitialBackoff is the first backoff delay.
	DefaultRetryInitialBackoff = 1 * time.Second

	// DefaultRetryMaxBackoff caps the exponential backoff.
	DefaultRetryMaxBackoff = 60 * time.Second

	// DefaultChunkSize is the document size in runes.
	DefaultChunkSize = 8000

	// DefaultChunkOverlap is the overlap between neighbouring documents in runes.
	DefaultChunkOverlap = 2000

	// DefaultResearchContextLimit is how many runes of re-fetched page text
	// the competitive research prompt may include.
	DefaultResearchContextLimit = 4000

	// DefaultBatchSize is the number of concurrent analyses for the analyze command.
	DefaultBatchSize = 3

	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultLogMaxSizeMB is the size at which the log file is rotated.
	DefaultLogMaxSizeMB = 50

	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = 3
)

// ModelConfig configures the language model client.
type ModelConfig struct {
	// Name is the model identifier sent with every request.
	Name string `yaml:"name,omitempty"`

	// BaseURL is the root of the OpenAI compatible API.
	BaseURL string `yaml:"baseURL,omitempty"`

	// APIKey is sent as a bearer token. It is normally taken from OPENAI_API_KEY.
	APIKey string `yaml:"apiKey,omitempty"`

	// MaxRetries is the number of retries for server errors.
	MaxRetries int `yaml:"maxRetries,omitempty"`

	// MaxConcurrency bounds in-flight calls.
	MaxConcurrency int `yaml:"maxConcurrency,omitempty"`

	// RequestsPerSecond paces calls when positive.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// Timeout bounds a single HTTP call.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// RateLimitConfig configures the domain throttle and the retry policy.
type RateLimitConfig struct {
	Window         time.Duration `yaml:"window,omitempty"`
	Budget         int           `yaml:"budget,omitempty"`
	MaxRetries     int           `yaml:"maxRetries,omitempty"`
	InitialBackoff time.Duration `yaml:"initialBackoff,omitempty"`
	MaxBackoff     time.Duration `yaml:"maxBackoff,omitempty"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	MaxContentLength int64         `yaml:"maxContentLength,omitempty"`

	// UserAgents replaces the built-in user agent pool when not empty.
	UserAgents []string `yaml:"userAgents,omitempty"`
}

// SplitterConfig configures document ingestion.
type SplitterConfig struct {
	ChunkSize    int `yaml:"chunkSize,omitempty"`
	ChunkOverlap int `yaml:"chunkOverlap,omitempty"`
}

// DatabaseConfig configures the history store.
type DatabaseConfig struct {
	// Enabled turns on recording of finished analyses.
	Enabled bool `yaml:"enabled,omitempty"`

	// Dir is where the SQLite file lives. Defaults to the XDG data directory.
	Dir string `yaml:"dir,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose    bool   `yaml:"verbose,omitempty"`
	JSON       bool   `yaml:"json,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"maxSizeMB,omitempty"`
	MaxBackups int    `yaml:"maxBackups,omitempty"`
}

// Config holds all configuration options for prodscout.
// It is populated from defaults, the YAML file, the environment and CLI
// flags, in that order, and passed to components explicitly.
type Config struct {
	// ListenAddress is the HTTP API address in "host:port" form.
	ListenAddress string `yaml:"listenAddress,omitempty"`

	// Model configures text generation.
	Model ModelConfig `yaml:"model,omitempty"`

	// Proxies is the rotating proxy pool. Empty means direct connections.
	Proxies []ProxyConfig `yaml:"proxies,omitempty"`

	// RateLimit configures the domain throttle and retries.
	RateLimit RateLimitConfig `yaml:"rateLimit,omitempty"`

	// Fetch configures page fetching and URL validation.
	Fetch FetchConfig `yaml:"fetch,omitempty"`

	// Splitter configures document ingestion.
	Splitter SplitterConfig `yaml:"splitter,omitempty"`

	// ResearchContextLimit bounds the re-fetched context in the research prompt.
	ResearchContextLimit int `yaml:"researchContextLimit,omitempty"`

	// Database configures the history store.
	Database DatabaseConfig `yaml:"database,omitempty"`

	// Log configures logging.
	Log LogConfig `yaml:"log,omitempty"`

	// BatchSize is the number of concurrent analyses run by the CLI.
	BatchSize int `yaml:"batchSize,omitempty"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`

	// ConfigFilePath is the file the configuration was loaded from, if any.
	ConfigFilePath string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		Model: ModelConfig{
			Name:              DefaultModelName,
			BaseURL:           DefaultModelBaseURL,
			MaxRetries:        DefaultModelMaxRetries,
			MaxConcurrency:    DefaultModelMaxConcurrency,
			RequestsPerSecond: DefaultModelRequestsPerSecond,
			Timeout:           DefaultModelTimeout,
		},
		RateLimit: RateLimitConfig{
			Window:         DefaultRateLimitWindow,
			Budget:         DefaultRateLimitBudget,
			MaxRetries:     DefaultRetryMax,
			InitialBackoff: DefaultRetryInitialBackoff,
			MaxBackoff:     DefaultRetryMaxBackoff,
		},
		Fetch: FetchConfig{
			Timeout:          DefaultFetchTimeout,
			MaxContentLength: DefaultMaxContentLength,
		},
		Splitter: SplitterConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		ResearchContextLimit: DefaultResearchContextLimit,
		Database: DatabaseConfig{
			Dir: XDGDataDir(),
		},
		Log: LogConfig{
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
		BatchSize:       DefaultBatchSize,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// XDGDataDir returns the XDG data directory for prodscout.
// On Linux: ~/.local/share/prodscout
// On macOS: ~/Library/Application Support/prodscout
// On Windows: %LOCALAPPDATA%\prodscout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for prodscout.
// On Linux: ~/.config/prodscout
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return ErrInvalidListenAddress
	}

	if c.Model.Name == "" {
		return ErrMissingModelName
	}
	if c.Model.BaseURL == "" {
		return ErrMissingModelBaseURL
	}
	if c.Model.MaxRetries < 0 {
		return ErrInvalidModelRetries
	}
	if c.Model.MaxConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Model.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}

	if c.Fetch.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Fetch.MaxContentLength <= 0 {
		return ErrInvalidMaxContentLength
	}

	if c.RateLimit.Window <= 0 {
		return ErrInvalidRateLimitWindow
	}
	if c.RateLimit.Budget <= 0 {
		return ErrInvalidRateLimitBudget
	}
	if c.RateLimit.MaxRetries < 0 ||
		c.RateLimit.InitialBackoff <= 0 ||
		c.RateLimit.MaxBackoff < c.RateLimit.InitialBackoff {
		return ErrInvalidRetryPolicy
	}

	// The overlap must leave room for progress in every chunk.
	if c.Splitter.ChunkSize <= 0 ||
		c.Splitter.ChunkOverlap < 0 ||
		c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return ErrInvalidChunkConfig
	}

	for _, p := range c.Proxies {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	return nil
}
