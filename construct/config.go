package construct

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const DEFAULT_DEGREE = 2

// Config tunes the constructor and the default priority policy
type Config struct {
	// MaxIterations bounds the number of collapses, 0 means the initial node count
	MaxIterations int `yaml:"max_iterations"`
	// Degree is the number of children the priority policy gathers before creating a BV node
	Degree int `yaml:"degree"`
}

func DefaultConfig() Config {
	return Config{Degree: DEFAULT_DEGREE}
}

func (c Config) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations %d is negative", ErrInvalidConfig, c.MaxIterations)
	}
	if c.Degree < 2 {
		return fmt.Errorf("%w: degree %d is lower than 2", ErrInvalidConfig, c.Degree)
	}
	return nil
}

// LoadConfig decodes a YAML document over the default config.
// Missing keys keep their default value and an empty document yields DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("construct: decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads the YAML config at path
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("construct: open config: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}
