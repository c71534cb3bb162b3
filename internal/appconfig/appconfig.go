// internal/appconfig/appconfig.go
// Package appconfig builds the immutable settings value shared by every command.
package appconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mwiater/grounded/internal/apperr"
)

const (
	// DefaultConfigPath is where the root command looks for an optional config file.
	DefaultConfigPath = "config/grounded.yaml"
	// DefaultBaseURL is the OpenAI-compatible API root used when none is configured.
	DefaultBaseURL = "https://api.openai.com/v1"
	// defaultTimeoutSeconds bounds every outbound provider call.
	defaultTimeoutSeconds = "30"
	// defaultLogFile receives log output when no logFile is configured.
	defaultLogFile = "grounded.log"
)

// Config holds the merged runtime settings. It is built once at the program
// boundary and passed by value; nothing below the command layer reads the
// environment.
type Config struct {
	OpenAIAPIKey      string   `mapstructure:"openaiApiKey" json:"openaiApiKey,omitempty"`
	OpenAIBaseURL     string   `mapstructure:"openaiBaseUrl" json:"openaiBaseUrl"`
	OpenAIModel       string   `mapstructure:"openaiModel" json:"openaiModel"`
	OpenAIEmbedModel  string   `mapstructure:"openaiEmbedModel" json:"openaiEmbedModel"`
	TimeoutSeconds    float64  `mapstructure:"-" json:"timeout"`
	DocsDir           string   `mapstructure:"docsDir" json:"docsDir"`
	StorePath         string   `mapstructure:"store" json:"store"`
	ChunkSize         int      `mapstructure:"chunkSize" json:"chunkSize"`
	ChunkOverlap      int      `mapstructure:"chunkOverlap" json:"chunkOverlap"`
	BatchSize         int      `mapstructure:"batchSize" json:"batchSize"`
	EmbedConcurrency  int      `mapstructure:"embedConcurrency" json:"embedConcurrency"`
	RequestsPerSecond float64  `mapstructure:"requestsPerSecond" json:"requestsPerSecond"`
	TopK              int      `mapstructure:"topK" json:"topK"`
	MaxRetries        int      `mapstructure:"maxRetries" json:"maxRetries"`
	AllowedExtensions []string `mapstructure:"allowedExtensions" json:"allowedExtensions"`
	ExcludeGlobs      []string `mapstructure:"excludeGlobs" json:"excludeGlobs,omitempty"`
	LogFile           string   `mapstructure:"logFile" json:"logFile,omitempty"`
	Debug             bool     `mapstructure:"debug" json:"debug"`
	MetricsFile       string   `mapstructure:"metricsFile" json:"metricsFile,omitempty"`
	ConfigPath        string   `mapstructure:"-" json:"-"`
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"openaiApiKey":     "OPENAI_API_KEY",
	"openaiBaseUrl":    "OPENAI_BASE_URL",
	"openaiModel":      "OPENAI_MODEL",
	"openaiEmbedModel": "OPENAI_EMBED_MODEL",
	"timeout":          "REQUEST_TIMEOUT_SECONDS",
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("openaiBaseUrl", DefaultBaseURL)
	v.SetDefault("openaiModel", "gpt-4o-mini")
	v.SetDefault("openaiEmbedModel", "text-embedding-3-small")
	v.SetDefault("timeout", defaultTimeoutSeconds)
	v.SetDefault("docsDir", "./sample_docs")
	v.SetDefault("store", "./data/vectorstore.json")
	v.SetDefault("chunkSize", 800)
	v.SetDefault("chunkOverlap", 150)
	v.SetDefault("batchSize", 32)
	v.SetDefault("embedConcurrency", 1)
	v.SetDefault("requestsPerSecond", 0)
	v.SetDefault("topK", 5)
	v.SetDefault("maxRetries", 2)
	v.SetDefault("allowedExtensions", []string{".txt", ".md", ".markdown"})
	v.SetDefault("logFile", defaultLogFile)
}

// BindEnv wires the provider environment variables into v.
func BindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Config("read .env", err)
	}
	if err := godotenv.Load(path); err != nil {
		return apperr.Config("load .env", err)
	}
	return nil
}

// FromViper materialises and validates a Config from the merged viper state.
func FromViper(v *viper.Viper) (Config, error) {
	timeoutRaw := strings.TrimSpace(v.GetString("timeout"))
	if timeoutRaw == "" {
		timeoutRaw = defaultTimeoutSeconds
	}
	timeout, err := strconv.ParseFloat(timeoutRaw, 64)
	if err != nil {
		return Config{}, apperr.Configf("REQUEST_TIMEOUT_SECONDS must be a number: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, apperr.Config("unmarshal config", err)
	}
	cfg.TimeoutSeconds = timeout
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks numeric settings for consistency.
func (c Config) Validate() error {
	var problems []string
	if c.TimeoutSeconds <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT_SECONDS must be greater than zero")
	}
	if c.ChunkSize <= 0 {
		problems = append(problems, "chunkSize must be greater than zero")
	}
	if c.ChunkOverlap < 0 {
		problems = append(problems, "chunkOverlap must be zero or greater")
	}
	if c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize {
		problems = append(problems, "chunkOverlap must be smaller than chunkSize")
	}
	if c.BatchSize <= 0 {
		problems = append(problems, "batchSize must be greater than zero")
	}
	if c.EmbedConcurrency < 1 {
		problems = append(problems, "embedConcurrency must be at least 1")
	}
	if c.RequestsPerSecond < 0 {
		problems = append(problems, "requestsPerSecond must be zero or greater")
	}
	if c.MaxRetries < 0 {
		problems = append(problems, "maxRetries must be zero or greater")
	}
	if strings.TrimSpace(c.OpenAIBaseURL) == "" {
		problems = append(problems, "openaiBaseUrl must not be empty")
	}
	if strings.TrimSpace(c.OpenAIModel) == "" || strings.TrimSpace(c.OpenAIEmbedModel) == "" {
		problems = append(problems, "openaiModel and openaiEmbedModel must not be empty")
	}
	if len(problems) > 0 {
		return apperr.Configf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequireOpenAI validates that an API key is present.
func (c Config) RequireOpenAI() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return apperr.Configf("OPENAI_API_KEY is required for this command")
	}
	return nil
}

// RequestTimeout returns the per-call deadline for provider requests.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		seconds, _ := strconv.ParseFloat(defaultTimeoutSeconds, 64)
		return time.Duration(seconds * float64(time.Second))
	}
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// Redacted returns a copy safe to print, with the API key masked.
func (c Config) Redacted() Config {
	out := c
	if key := c.OpenAIAPIKey; key != "" {
		if len(key) > 8 {
			out.OpenAIAPIKey = key[:3] + strings.Repeat("*", 8) + key[len(key)-4:]
		} else {
			out.OpenAIAPIKey = strings.Repeat("*", len(key))
		}
	}
	out.AllowedExtensions = append([]string(nil), c.AllowedExtensions...)
	out.ExcludeGlobs = append([]string(nil), c.ExcludeGlobs...)
	return out
}
