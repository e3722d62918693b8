// Package config provides Viper-based configuration loading for the
// Ironveil combat engine and its battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig holds the locations of the static game data catalogs.
type ContentConfig struct {
	// Root is the directory containing the classes, terrain, statuses,
	// skills, items, and stages catalog subdirectories.
	Root string `mapstructure:"root"`
	// ScriptInstructionLimit caps the Lua opcodes per stage script hook
	// call; 0 uses the scripting package default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// EngineConfig holds combat engine tuning.
type EngineConfig struct {
	// Variance is the half-width of the damage variance window; 0.1 means
	// every strike's offense scales by a uniform draw from [0.9, 1.1].
	Variance float64 `mapstructure:"variance"`
	// MaxRounds caps simulated battles; a battle still undecided after
	// this many rounds scores as a defeat. 0 means no cap.
	MaxRounds int `mapstructure:"max_rounds"`
}

// SimConfig holds battle simulator settings.
type SimConfig struct {
	// Stage is the stage id to fight.
	Stage string `mapstructure:"stage"`
	// Team lists the class ids fielded on the player side.
	Team []string `mapstructure:"team"`
	// Level is the player team's level.
	Level int `mapstructure:"level"`
	// Battles is how many battles to run.
	Battles int `mapstructure:"battles"`
	// Parallel is how many battles may run concurrently.
	Parallel int `mapstructure:"parallel"`
	// Seed seeds the first battle's RNG; battle i adds i to it. 0 draws
	// a fresh crypto seed per battle instead.
	Seed uint64 `mapstructure:"seed"`
	// Items stocks the shared inventory per battle, item id to count.
	Items map[string]int `mapstructure:"items"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Content ContentConfig `mapstructure:"content"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Sim     SimConfig     `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Root == "" {
		errs = append(errs, "content.root must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.Variance < 0 || e.Variance >= 1 {
		errs = append(errs, fmt.Sprintf("engine.variance must be in [0, 1), got %g", e.Variance))
	}
	if e.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_rounds must be >= 0, got %d", e.MaxRounds))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.Stage == "" {
		errs = append(errs, "sim.stage must not be empty")
	}
	if len(s.Team) < 1 {
		errs = append(errs, "sim.team must field at least one class")
	}
	if s.Level < 1 {
		errs = append(errs, fmt.Sprintf("sim.level must be >= 1, got %d", s.Level))
	}
	if s.Battles < 1 {
		errs = append(errs, fmt.Sprintf("sim.battles must be >= 1, got %d", s.Battles))
	}
	if s.Parallel < 1 {
		errs = append(errs, fmt.Sprintf("sim.parallel must be >= 1, got %d", s.Parallel))
	}
	for id, n := range s.Items {
		if n < 0 {
			errs = append(errs, fmt.Sprintf("sim.items[%s] must be >= 0, got %d", id, n))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with IRONVEIL_ prefix
	v.SetEnvPrefix("IRONVEIL")
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
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.root", "content")
	v.SetDefault("content.script_instruction_limit", 0)

	v.SetDefault("engine.variance", 0.1)
	v.SetDefault("engine.max_rounds", 200)

	v.SetDefault("sim.stage", "verdant_approach")
	v.SetDefault("sim.team", []string{"vanguard", "arcanist"})
	v.SetDefault("sim.level", 1)
	v.SetDefault("sim.battles", 1)
	v.SetDefault("sim.parallel", 1)
	v.SetDefault("sim.seed", 0)
}
