package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// FASTBRIDGE_EMITTER_SINK.
const EnvPrefix = "FASTBRIDGE"

// Event sinks.
const (
	SinkStdout = "stdout"
	SinkStderr = "stderr"
	SinkFile   = "file"
	SinkZap    = "zap"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Emitter EmitterConfig `mapstructure:"emitter"`
	Display DisplayConfig `mapstructure:"display"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error off"`
	Format     string `mapstructure:"format" default:"console" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path" default:"stderr" validate:"required"`
}

// EmitterConfig selects where event log lines are written.
type EmitterConfig struct {
	Sink string `mapstructure:"sink" default:"stdout" validate:"oneof=stdout stderr file zap"`
	Path string `mapstructure:"path" validate:"required_if=Sink file"`
}

// DisplayConfig controls how amounts are rendered by the CLI.
type DisplayConfig struct {
	// Decimals scales raw token amounts for human display. 24 is the NEAR
	// yocto denomination.
	Decimals int32 `mapstructure:"decimals" default:"24" validate:"gte=0,lte=38"`
}

var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output_path",
	"emitter.sink",
	"emitter.path",
	"display.decimals",
}

// Default returns a configuration populated from struct defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from an optional YAML file and environment
// variables. An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := Default()
	if err != nil {
		return nil, err
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks config against its struct tags.
func Validate(config *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Namespace()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
