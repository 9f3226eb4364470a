package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	API struct {
		BaseURL   string        `mapstructure:"base_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
		LoginPath string        `mapstructure:"login_path"`
	} `mapstructure:"api"`
	Server struct {
		Addr         string        `mapstructure:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
	Session struct {
		File string `mapstructure:"file"`
	} `mapstructure:"session"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Workflow struct {
		CompensateOnFailure bool `mapstructure:"compensate_on_failure"`
		DefaultTimeoutHours int  `mapstructure:"default_timeout_hours"`
	} `mapstructure:"workflow"`
	MCP struct {
		Enable bool   `mapstructure:"enable"`
		Token  string `mapstructure:"token"`
		UserID int64  `mapstructure:"user_id"`
	} `mapstructure:"mcp"`

	// ConfigFile is the config file that was read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// LoadConfig loads the configuration from an optional .env file, an optional
// config.yaml and HRM_-prefixed environment variables, in increasing priority.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("HRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	config.ConfigFile = v.ConfigFileUsed()
	config.API.BaseURL = normalizeBaseURL(config.API.BaseURL)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5103/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.login_path", "/Auth/login")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("tls.enable", false)
	v.SetDefault("tls.cert_file", "certs/server.crt")
	v.SetDefault("tls.key_file", "certs/server.key")
	v.SetDefault("tls.hostnames", []string{"localhost", "127.0.0.1"})
	v.SetDefault("session.file", defaultSessionFile())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("workflow.compensate_on_failure", false)
	v.SetDefault("workflow.default_timeout_hours", 3)
	v.SetDefault("mcp.enable", true)
	v.SetDefault("mcp.token", "")
	v.SetDefault("mcp.user_id", 0)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hrm-session.json"
	}
	return filepath.Join(home, ".hrm-admin", "session.json")
}

// Validate checks the settings the clients cannot run without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.TLS.Enable && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls.cert_file and tls.key_file are required when tls.enable is set")
	}
	if c.Workflow.DefaultTimeoutHours <= 0 {
		return errors.New("workflow.default_timeout_hours must be positive")
	}
	return nil
}

// normalizeBaseURL strips surrounding space and any trailing slash so paths
// can be appended directly.
func normalizeBaseURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}
