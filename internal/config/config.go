package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MAPPER_ENGINE_HOST_URL.
const EnvPrefix = "MAPPER_ENGINE"

// Config holds all configuration for the engine
type Config struct {
	Host    HostConfig    `mapstructure:"host"`
	Drafts  DraftsConfig  `mapstructure:"drafts"`
	Logging LoggingConfig `mapstructure:"logging"`
	Mapper  MapperConfig  `mapstructure:"mapper"`
}

// HostConfig holds metadata host configuration
type HostConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// DraftsConfig holds draft persistence configuration
type DraftsConfig struct {
	Dir      string        `mapstructure:"dir" validate:"required"`
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// MapperConfig holds mapper editing configuration
type MapperConfig struct {
	// Variant narrows the provider catalog: "" for plain mappers,
	// "config_item", "request" or "record_type".
	Variant string `mapstructure:"variant" validate:"omitempty,oneof=config_item request record_type"`
	// SuggestLimit caps the candidates returned per output field.
	SuggestLimit int `mapstructure:"suggest_limit" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host.url", "http://localhost:8011/api/latest")
	v.SetDefault("host.timeout", 30*time.Second)
	v.SetDefault("drafts.dir", ".mapper-drafts")
	v.SetDefault("drafts.debounce", 500*time.Millisecond)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("mapper.variant", "")
	v.SetDefault("mapper.suggest_limit", 3)
}

// Load reads configuration from defaults, an optional mapper-engine.yaml
// and MAPPER_ENGINE_* environment variables. A non-empty path names the
// config file explicitly; it must then exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mapper-engine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
