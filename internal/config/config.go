// Package config provides Viper-based configuration loading for the
// menagerie server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
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

// CombatConfig holds the tunable combat ruleset values.
type CombatConfig struct {
	// KnockoutRecovery is how long a knocked-out avatar stays down.
	KnockoutRecovery time.Duration `mapstructure:"knockout_recovery"`
	// FleeCooldown bars a successful fleer from new combat.
	FleeCooldown time.Duration `mapstructure:"flee_cooldown"`
	// DamageDie is the base damage expression, e.g. "1d8".
	DamageDie string `mapstructure:"damage_die"`
}

// DispatchConfig holds action cooldown windows.
type DispatchConfig struct {
	// DefaultCooldown applies to any action without an explicit entry.
	DefaultCooldown time.Duration `mapstructure:"default_cooldown"`
	// Cooldowns maps action name to its minimum re-use interval.
	Cooldowns map[string]time.Duration `mapstructure:"cooldowns"`
}

// EncounterConfig holds encounter housekeeping settings.
type EncounterConfig struct {
	// IdleTimeout ends encounters with no action for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// SweepInterval is how often the idle sweeper runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Encounter EncounterConfig `mapstructure:"encounter"`
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
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDispatch(c.Dispatch); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
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

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.KnockoutRecovery <= 0 {
		errs = append(errs, "combat.knockout_recovery must be positive")
	}
	if c.FleeCooldown <= 0 {
		errs = append(errs, "combat.flee_cooldown must be positive")
	}
	if c.DamageDie == "" {
		errs = append(errs, "combat.damage_die must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDispatch(d DispatchConfig) error {
	if d.DefaultCooldown <= 0 {
		return fmt.Errorf("dispatch.default_cooldown must be positive, got %s", d.DefaultCooldown)
	}
	for action, cd := range d.Cooldowns {
		if cd <= 0 {
			return fmt.Errorf("dispatch.cooldowns.%s must be positive, got %s", action, cd)
		}
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if e.IdleTimeout <= 0 {
		errs = append(errs, "encounter.idle_timeout must be positive")
	}
	if e.SweepInterval <= 0 {
		errs = append(errs, "encounter.sweep_interval must be positive")
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

	// Environment variable overrides with MENAGERIE_ prefix
	v.SetEnvPrefix("MENAGERIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
	v.SetDefault("database.user", "menagerie")
	v.SetDefault("database.password", "menagerie")
	v.SetDefault("database.name", "menagerie")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.knockout_recovery", "24h")
	v.SetDefault("combat.flee_cooldown", "24h")
	v.SetDefault("combat.damage_die", "1d8")

	v.SetDefault("dispatch.default_cooldown", "1h")
	v.SetDefault("dispatch.cooldowns.attack", "10s")
	v.SetDefault("dispatch.cooldowns.defend", "10s")
	v.SetDefault("dispatch.cooldowns.hide", "20s")
	v.SetDefault("dispatch.cooldowns.flee", "30s")

	v.SetDefault("encounter.idle_timeout", "10m")
	v.SetDefault("encounter.sweep_interval", "1m")
}
