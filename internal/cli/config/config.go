package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/fmacia/subclass-ide-helper/internal/registry"
)

// Config represents the sih configuration
type Config struct {
	EntityTypes     string                `mapstructure:"entity_types"`
	ResultFile      string                `mapstructure:"result_file"`
	ExcludedClasses string                `mapstructure:"excluded_classes"`
	Template        string                `mapstructure:"template"`
	Source          registry.SourceConfig `mapstructure:"source"`
	TypedData       TypedDataConfig       `mapstructure:"typed_data"`

	// File is the config file that was read, or "" when none was found
	File string `mapstructure:"-"`
}

// TypedDataConfig overrides how field types resolve to item list classes
type TypedDataConfig struct {
	DefaultListClass string            `mapstructure:"default_list_class"`
	ListClasses      map[string]string `mapstructure:"list_classes"`
}

// Defaults
const (
	DefaultEntityTypes = "node"
	DefaultManifest    = "sih-metadata.yml"
	EnvPrefix          = "SIH"
)

// New creates a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("entity_types", DefaultEntityTypes)
	v.SetDefault("result_file", "")
	v.SetDefault("excluded_classes", "")
	v.SetDefault("template", "")
	v.SetDefault("source.kind", registry.KindManifest)
	v.SetDefault("source.manifest", DefaultManifest)
	v.SetDefault("source.driver", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("typed_data.default_list_class", "")

	// SIH_SOURCE_DSN -> source.dsn
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads sih.yml or sih.yaml from the working directory, or the file
// given by path, into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sih")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Source.Kind {
	case registry.KindManifest:
		if cfg.Source.Manifest == "" {
			return fmt.Errorf("source.manifest must be set when source.kind is %q", registry.KindManifest)
		}
	case registry.KindDatabase:
		if cfg.Source.DSN == "" {
			return fmt.Errorf("source.dsn must be set when source.kind is %q", registry.KindDatabase)
		}
		switch cfg.Source.Driver {
		case "", registry.DriverPgx, registry.DriverPostgres, registry.DriverSQLite:
		default:
			return fmt.Errorf("source.driver must be one of %s, %s or %s, got: %s",
				registry.DriverPgx, registry.DriverPostgres, registry.DriverSQLite, cfg.Source.Driver)
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got: %s", registry.KindManifest, registry.KindDatabase, cfg.Source.Kind)
	}
	return nil
}
