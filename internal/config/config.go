// Package config provides Viper-based configuration loading for the
// encounter tracker.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hearthrpg/tracker/internal/game/party"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TrackerConfig holds the combat-rules toggles and collaborator locations.
type TrackerConfig struct {
	// RPGSystem selects the difficulty strategy, e.g. "daggerheart".
	RPGSystem string `mapstructure:"rpg_system"`
	// MassiveDamage enables the tier-4 damage severity band.
	MassiveDamage bool `mapstructure:"massive_damage"`
	// Clamp keeps HP and stress from going below zero.
	Clamp bool `mapstructure:"clamp"`
	// HPOverflow is "allow" or "ignore" (clamp healing at max HP).
	HPOverflow string `mapstructure:"hp_overflow"`
	// AutoStatus applies the configured statuses at zero stress/HP.
	AutoStatus bool `mapstructure:"auto_status"`
	// UnconsciousID is the id of the condition applied when HP reaches zero.
	UnconsciousID string `mapstructure:"unconscious_id"`
	// VulnerableID is the id of the condition applied when stress reaches zero.
	VulnerableID string `mapstructure:"vulnerable_id"`
	// LogEnabled turns the markdown combat log on.
	LogEnabled bool `mapstructure:"log_enabled"`
	// LogFolder is where session transcripts are written.
	LogFolder string `mapstructure:"log_folder"`
	// ConditionsDir optionally holds extra condition definitions (*.yaml).
	ConditionsDir string `mapstructure:"conditions_dir"`
	// BestiaryDir optionally holds creature definitions (*.yaml).
	BestiaryDir string `mapstructure:"bestiary_dir"`
	// CustomSystemScript optionally points at a Lua difficulty strategy.
	CustomSystemScript string `mapstructure:"custom_system_script"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Parties  []party.Party  `mapstructure:"parties"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTracker(c.Tracker); err != nil {
		errs = append(errs, err.Error())
	}
	for _, p := range c.Parties {
		if p.Name == "" {
			errs = append(errs, "parties entries must have a name")
		}
		if p.Players < 0 {
			errs = append(errs, fmt.Sprintf("party %q players must be >= 0, got %d", p.Name, p.Players))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateTracker(t TrackerConfig) error {
	var errs []string
	if t.RPGSystem == "" {
		errs = append(errs, "tracker.rpg_system must not be empty")
	}
	validOverflow := map[string]bool{"allow": true, "ignore": true}
	if !validOverflow[t.HPOverflow] {
		errs = append(errs, fmt.Sprintf("tracker.hp_overflow must be one of [allow, ignore], got %q", t.HPOverflow))
	}
	if t.AutoStatus {
		if t.UnconsciousID == "" {
			errs = append(errs, "tracker.unconscious_id must not be empty when tracker.auto_status is set")
		}
		if t.VulnerableID == "" {
			errs = append(errs, "tracker.vulnerable_id must not be empty when tracker.auto_status is set")
		}
	}
	if t.LogEnabled && t.LogFolder == "" {
		errs = append(errs, "tracker.log_folder must not be empty when tracker.log_enabled is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with TRACKER_ prefix
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tracker")
	v.SetDefault("database.password", "tracker")
	v.SetDefault("database.name", "tracker")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("tracker.rpg_system", "daggerheart")
	v.SetDefault("tracker.massive_damage", true)
	v.SetDefault("tracker.clamp", true)
	v.SetDefault("tracker.hp_overflow", "ignore")
	v.SetDefault("tracker.auto_status", true)
	v.SetDefault("tracker.unconscious_id", "Unconscious")
	v.SetDefault("tracker.vulnerable_id", "Vulnerable")
	v.SetDefault("tracker.log_enabled", false)
	v.SetDefault("tracker.log_folder", "logs")
}
