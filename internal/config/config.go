package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/lptimetabling/pkg/model"
	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Solvers SolversConfig `mapstructure:"solvers"`
	Model   ModelConfig   `mapstructure:"model"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// SolversConfig holds the executables of the external solvers
type SolversConfig struct {
	Cbc   string `mapstructure:"cbc"`
	Highs string `mapstructure:"highs"`
}

type ModelConfig struct {
	Parallel  bool   `mapstructure:"parallel"`
	Direction string `mapstructure:"direction"` // min | max | feasible
}

// Load reads the configuration from a file and LPTT_* environment variables.
// Precedence: environment, then file, then defaults. An empty path looks for config.json
// in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("solvers.cbc", "cbc")
	v.SetDefault("solvers.highs", "highs")
	v.SetDefault("model.parallel", false)
	v.SetDefault("model.direction", "min")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LPTT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	if !slices.Contains([]string{"console", "json"}, cfg.Log.Format) {
		return fmt.Errorf("invalid config: log.format must be \"console\" or \"json\", got %q", cfg.Log.Format)
	}
	if _, err := model.ParseDirection(cfg.Model.Direction); err != nil {
		return fmt.Errorf("invalid config: model.direction: %w", err)
	}
	if cfg.Solvers.Cbc == "" || cfg.Solvers.Highs == "" {
		return errors.New("invalid config: solver paths must not be empty")
	}
	return nil
}

// Direction is valid once the config has been validated
func (cfg *Config) Direction() model.Direction {
	direction, _ := model.ParseDirection(cfg.Model.Direction)
	return direction
}

// Builder returns the model builder selected by model.parallel
func (cfg *Config) Builder() model.ModelBuilder {
	if cfg.Model.Parallel {
		return model.NewParallelBuilder(cfg.Direction())
	}
	return model.NewSequentialBuilder(cfg.Direction())
}
