// Package config loads the bot configuration from config.yaml, the
// environment, and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. OCULAR_DISCORD_TOKEN.
	EnvPrefix = "OCULAR"

	// EnvLegacyToken is the variable older deployments keep the bot token in.
	EnvLegacyToken = "TOKEN"
)

// Config keys.
const (
	KeyDataDir            = "data_dir"
	KeyCatalogFile        = "catalog_file"
	KeyLogLevel           = "log_level"
	KeyDiscordToken       = "discord.token"
	KeyDiscordAppID       = "discord.application_id"
	KeyDiscordGuildID     = "discord.guild_id"
	KeyDiscordAdminRoleID = "discord.admin_role_id"
	KeyDiscordReplyTTL    = "discord.reply_ttl"
	KeyMetricsListen      = "metrics.listen"
)

// Defaults.
const (
	DefaultLogLevel = "info"
	DefaultReplyTTL = 90 * time.Second
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Ocular configuration
# Every key can be overridden with an OCULAR_ environment variable,
# e.g. OCULAR_DISCORD_TOKEN. Keep the bot token out of this file.

# Data directory holding bot.db (default: ./data)
# data_dir:

# YAML catalog seeded into a fresh database (default: built-in catalog)
# catalog_file:

log_level: info

discord:
  # application_id:
  # guild_id:
  # admin_role_id:
  reply_ttl: 90s

metrics:
  # Prometheus endpoint, e.g. 127.0.0.1:9090. Empty disables it.
  listen: ""
`

// Config is the process configuration.
type Config struct {
	DataDir     string        `mapstructure:"data_dir" yaml:"data_dir"`
	CatalogFile string        `mapstructure:"catalog_file" yaml:"catalog_file" validate:"omitempty,file"`
	LogLevel    string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Discord     DiscordConfig `mapstructure:"discord" yaml:"discord"`
	Metrics     MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// DiscordConfig configures the gateway session and slash commands.
type DiscordConfig struct {
	Token string `mapstructure:"token" yaml:"-" validate:"required"`

	// ApplicationID defaults to the bot user id once the session is open.
	ApplicationID string `mapstructure:"application_id" yaml:"application_id" validate:"omitempty,numeric"`

	// GuildID registers commands in one guild; empty registers them globally.
	GuildID string `mapstructure:"guild_id" yaml:"guild_id" validate:"omitempty,numeric"`

	// AdminRoleID gates the admin and db commands. Empty disables them.
	AdminRoleID string `mapstructure:"admin_role_id" yaml:"admin_role_id" validate:"omitempty,numeric"`

	// ReplyTTL deletes ephemeral replies after this long. Zero keeps them.
	ReplyTTL time.Duration `mapstructure:"reply_ttl" yaml:"reply_ttl" validate:"gte=0"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen" validate:"omitempty,hostname_port"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Discord: DiscordConfig{
			ReplyTTL: DefaultReplyTTL,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks everything except the Discord section, which only the
// run command needs.
func (c *Config) Validate() error {
	if err := validate.StructExcept(c, "Discord"); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateDiscord checks the Discord section.
func (c *Config) ValidateDiscord() error {
	if err := validate.Struct(c.Discord); err != nil {
		return fmt.Errorf("invalid discord config: %w", err)
	}
	return nil
}

// Store returns the store configuration for dataDir.
func (c *Config) Store(dataDir string) types.Config {
	return types.Config{
		Backend:     types.BackendSQLite,
		DataDir:     dataDir,
		CatalogFile: c.CatalogFile,
	}
}

// Load reads configDir/config.yaml, creating it with defaults on first run.
// envFile, when it exists, is loaded into the environment first; variables
// already set are not overwritten. Environment variables win over the file.
func Load(configDir, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := newViper()
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if v.GetString(KeyDiscordToken) == "" {
		if token := os.Getenv(EnvLegacyToken); token != "" {
			v.Set(KeyDiscordToken, token)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns a viper instance with every key defaulted so that
// AutomaticEnv can override keys missing from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyCatalogFile, "")
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyDiscordToken, "")
	v.SetDefault(KeyDiscordAppID, "")
	v.SetDefault(KeyDiscordGuildID, "")
	v.SetDefault(KeyDiscordAdminRoleID, "")
	v.SetDefault(KeyDiscordReplyTTL, DefaultReplyTTL)
	v.SetDefault(KeyMetricsListen, "")
	return v
}

// ensureDefaultConfigFile writes the default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
