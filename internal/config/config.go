package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jfmyers9/crates/pkg/discogs"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Output format for command results: table, json or yaml
	// Default: "table"
	Output string

	// Log level for stderr logging
	// Default: "warn"
	LogLevel string

	// Directory holding the request log database
	// Default: "" (~/.local/share/crates)
	DataDir string

	// Discogs API credentials and request settings
	Discogs DiscogsConfig

	// Request log settings
	RequestLog RequestLogConfig
}

// DiscogsConfig holds Discogs specific configuration
type DiscogsConfig struct {
	Username string

	// Personal access token (simplest way to authenticate)
	UserToken string

	// Application credentials, used alone or for OAuth
	ConsumerKey    string
	ConsumerSecret string

	// OAuth access token from `crates auth --oauth`
	OAuthToken       string
	OAuthTokenSecret string

	Host                 string
	Port                 int
	UserAgent            string
	APIVersion           string
	OutputFormat         string
	RequestLimit         int
	RequestLimitAuth     int
	RequestLimitInterval time.Duration
	BackoffMaxRetries    int
	BackoffInterval      time.Duration
	BackoffRate          float64
}

// RequestLogConfig holds request log configuration
type RequestLogConfig struct {
	Enabled bool

	// Entries older than this are removed on exit; 0 keeps everything
	Retention time.Duration
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return loadFrom(getConfigDir())
}

func loadFrom(configDir string) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	d := discogs.DefaultSettings()
	v.SetDefault("output", "table")
	v.SetDefault("log_level", "warn")
	v.SetDefault("data_dir", "")
	v.SetDefault("discogs.host", d.Host)
	v.SetDefault("discogs.port", d.Port)
	v.SetDefault("discogs.user_agent", d.UserAgent)
	v.SetDefault("discogs.api_version", d.APIVersion)
	v.SetDefault("discogs.output_format", d.OutputFormat)
	v.SetDefault("discogs.request_limit", d.RequestLimit)
	v.SetDefault("discogs.request_limit_auth", d.RequestLimitAuth)
	v.SetDefault("discogs.request_limit_interval", d.RequestLimitInterval)
	v.SetDefault("discogs.backoff_max_retries", 2)
	v.SetDefault("discogs.backoff_interval", d.BackoffInterval)
	v.SetDefault("discogs.backoff_rate", d.BackoffRate)
	v.SetDefault("request_log.enabled", true)
	v.SetDefault("request_log.retention", 7*24*time.Hour)

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Read from environment variables, e.g. CRATES_DISCOGS_USER_TOKEN
	v.SetEnvPrefix("CRATES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		Output:   v.GetString("output"),
		LogLevel: v.GetString("log_level"),
		DataDir:  v.GetString("data_dir"),
		Discogs: DiscogsConfig{
			Username:             v.GetString("discogs.username"),
			UserToken:            v.GetString("discogs.user_token"),
			ConsumerKey:          v.GetString("discogs.consumer_key"),
			ConsumerSecret:       v.GetString("discogs.consumer_secret"),
			OAuthToken:           v.GetString("discogs.oauth_token"),
			OAuthTokenSecret:     v.GetString("discogs.oauth_token_secret"),
			Host:                 v.GetString("discogs.host"),
			Port:                 v.GetInt("discogs.port"),
			UserAgent:            v.GetString("discogs.user_agent"),
			APIVersion:           v.GetString("discogs.api_version"),
			OutputFormat:         v.GetString("discogs.output_format"),
			RequestLimit:         v.GetInt("discogs.request_limit"),
			RequestLimitAuth:     v.GetInt("discogs.request_limit_auth"),
			RequestLimitInterval: v.GetDuration("discogs.request_limit_interval"),
			BackoffMaxRetries:    v.GetInt("discogs.backoff_max_retries"),
			BackoffInterval:      v.GetDuration("discogs.backoff_interval"),
			BackoffRate:          v.GetFloat64("discogs.backoff_rate"),
		},
		RequestLog: RequestLogConfig{
			Enabled:   v.GetBool("request_log.enabled"),
			Retention: v.GetDuration("request_log.retention"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "crates")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to file
func (c *Config) Save() error {
	return c.saveTo(getConfigDir())
}

func (c *Config) saveTo(configDir string) error {
	v := viper.New()

	// Set config file path
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("output", c.Output)
	v.Set("log_level", c.LogLevel)
	v.Set("data_dir", c.DataDir)
	v.Set("discogs.username", c.Discogs.Username)
	v.Set("discogs.user_token", c.Discogs.UserToken)
	v.Set("discogs.consumer_key", c.Discogs.ConsumerKey)
	v.Set("discogs.consumer_secret", c.Discogs.ConsumerSecret)
	v.Set("discogs.oauth_token", c.Discogs.OAuthToken)
	v.Set("discogs.oauth_token_secret", c.Discogs.OAuthTokenSecret)
	v.Set("discogs.host", c.Discogs.Host)
	v.Set("discogs.port", c.Discogs.Port)
	v.Set("discogs.user_agent", c.Discogs.UserAgent)
	v.Set("discogs.api_version", c.Discogs.APIVersion)
	v.Set("discogs.output_format", c.Discogs.OutputFormat)
	v.Set("discogs.request_limit", c.Discogs.RequestLimit)
	v.Set("discogs.request_limit_auth", c.Discogs.RequestLimitAuth)
	v.Set("discogs.request_limit_interval", c.Discogs.RequestLimitInterval.String())
	v.Set("discogs.backoff_max_retries", c.Discogs.BackoffMaxRetries)
	v.Set("discogs.backoff_interval", c.Discogs.BackoffInterval.String())
	v.Set("discogs.backoff_rate", c.Discogs.BackoffRate)
	v.Set("request_log.enabled", c.RequestLog.Enabled)
	v.Set("request_log.retention", c.RequestLog.Retention.String())

	// Write to file (0600: the file holds credentials)
	if err := v.WriteConfigAs(configFile); err != nil {
		return err
	}
	return os.Chmod(configFile, 0600)
}

// Auth returns the Discogs credentials the configuration describes, or nil
// when none are set. OAuth tokens take precedence over a personal token,
// which takes precedence over bare consumer credentials.
func (c *Config) Auth() *discogs.Auth {
	d := c.Discogs
	switch {
	case d.OAuthToken != "" && d.ConsumerKey != "" && d.ConsumerSecret != "":
		return discogs.NewOAuth(d.ConsumerKey, d.ConsumerSecret, d.OAuthToken, d.OAuthTokenSecret)
	case d.UserToken != "":
		return discogs.NewTokenAuth(d.UserToken)
	case d.ConsumerKey != "" && d.ConsumerSecret != "":
		return discogs.NewKeyAuth(d.ConsumerKey, d.ConsumerSecret)
	default:
		return nil
	}
}

// ClientConfig maps the configuration onto a Discogs client configuration.
// Callers add a logger and response hook as needed.
func (c *Config) ClientConfig() discogs.Config {
	d := c.Discogs
	return discogs.Config{
		Settings: discogs.Settings{
			Host:                 d.Host,
			Port:                 d.Port,
			UserAgent:            d.UserAgent,
			APIVersion:           d.APIVersion,
			OutputFormat:         d.OutputFormat,
			RequestLimit:         d.RequestLimit,
			RequestLimitAuth:     d.RequestLimitAuth,
			RequestLimitInterval: d.RequestLimitInterval,
			BackoffMaxRetries:    d.BackoffMaxRetries,
			BackoffInterval:      d.BackoffInterval,
			BackoffRate:          d.BackoffRate,
		},
		Auth: c.Auth(),
	}
}
