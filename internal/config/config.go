package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("resy version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Provider     ProviderConfig     `mapstructure:"provider"`
	Secrets      SecretsConfig      `mapstructure:"secrets"`
	Session      SessionConfig      `mapstructure:"session"`
	Reservations ReservationsConfig `mapstructure:"reservations"`
	Database     DatabaseConfig     `mapstructure:"database"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// ProviderConfig describes the upstream reservation provider
type ProviderConfig struct {
	BaseURL      string            `mapstructure:"base_url"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	DeviceTypeID string            `mapstructure:"device_type_id"`
	PageSize     int               `mapstructure:"page_size"`
	Headers      map[string]string `mapstructure:"headers"`
}

// SecretSource selects where provider credentials come from
type SecretSource string

const (
	SecretSourceStatic SecretSource = "static"
	SecretSourceFile   SecretSource = "file"
	SecretSourceAWS    SecretSource = "aws"
)

type SecretsConfig struct {
	Source     SecretSource `mapstructure:"source"`
	APIKey     string       `mapstructure:"api_key"`
	AuthToken  string       `mapstructure:"auth_token"`
	File       string       `mapstructure:"file"`
	SecretName string       `mapstructure:"secret_name"`
	Region     string       `mapstructure:"region"`
}

type SessionConfig struct {
	// Path of the session file; empty keeps the session in memory
	Path string `mapstructure:"path"`
}

// PartitionMode selects where past/upcoming filtering happens
type PartitionMode string

const (
	PartitionServer PartitionMode = "server"
	PartitionClient PartitionMode = "client"
)

type ReservationsConfig struct {
	Partition PartitionMode `mapstructure:"partition"`
	Timezone  string        `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	// DSN of the Postgres database holding booked reservation records; empty uses memory
	DSN string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("provider.base_url", "https://api.resy.com/3")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.device_type_id", "3")
	v.SetDefault("provider.page_size", 50)

	v.SetDefault("secrets.source", string(SecretSourceStatic))
	v.SetDefault("secrets.api_key", "")
	v.SetDefault("secrets.auth_token", "")
	v.SetDefault("secrets.file", "")
	v.SetDefault("secrets.secret_name", "resy/api-credentials")
	v.SetDefault("secrets.region", "")

	v.SetDefault("session.path", defaultSessionPath())

	v.SetDefault("reservations.partition", string(PartitionServer))
	v.SetDefault("reservations.timezone", "Local")

	v.SetDefault("database.dsn", "")
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".resy", "session.yaml")
}

// BindFlags registers the command line flags that override config keys
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
	fs.String("provider-url", "", "Base URL of the reservation provider")
	fs.String("session-file", "", "Path of the session file")
}

// Load reads the configuration from flags, RESY_* environment variables and config.yaml
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("RESY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if fs != nil {
		for key, flag := range map[string]string{
			"logging.level":     "log-level",
			"provider.base_url": "provider-url",
			"session.path":      "session-file",
		} {
			if f := fs.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".resy"))
		}
		v.AddConfigPath("/etc/resy")
	}

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional, only an explicitly named one must exist
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required, please adjust the config or pass --provider-url or RESY_PROVIDER_BASE_URL environment variable")
	}

	switch c.Secrets.Source {
	case SecretSourceStatic:
		// api key may still be supplied later through the environment
	case SecretSourceFile:
		if c.Secrets.File == "" {
			return fmt.Errorf("secrets.file is required for the file secret source, set RESY_SECRETS_FILE environment variable")
		}
	case SecretSourceAWS:
		if c.Secrets.SecretName == "" {
			return fmt.Errorf("secrets.secret_name is required for the aws secret source, set RESY_SECRETS_SECRET_NAME environment variable")
		}
	default:
		return fmt.Errorf("unsupported secrets.source %q (static|file|aws)", c.Secrets.Source)
	}

	switch c.Reservations.Partition {
	case PartitionServer, PartitionClient:
	default:
		return fmt.Errorf("unsupported reservations.partition %q (server|client)", c.Reservations.Partition)
	}

	if _, err := c.Reservations.Location(); err != nil {
		return fmt.Errorf("invalid reservations.timezone: %w", err)
	}
	return nil
}

// Location resolves the timezone used to decide which reservations are past
func (r ReservationsConfig) Location() (*time.Location, error) {
	if r.Timezone == "" || r.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}
