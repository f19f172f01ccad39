package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/quadtree"
)

// ErrInvalidConfig wraps every precondition failure reported by Validate.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// Population
	Population int    `json:"population" yaml:"population"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"` // only the first two axes are partitioned
	Seed       uint64 `json:"seed" yaml:"seed"`

	// Partition limits
	BucketMaxSize int `json:"bucketMaxSize" yaml:"bucketMaxSize"`
	DepthBudget   int `json:"depthBudget" yaml:"depthBudget"`

	// Steering rules (squared quantities)
	flock.Params `yaml:",inline"`

	// Driver
	Workers         int     `json:"workers" yaml:"workers"` // 0 or 1 updates buckets serially
	TicksPerSecond  float64 `json:"ticksPerSecond" yaml:"ticksPerSecond"`
	VerifyPartition bool    `json:"verifyPartition" yaml:"verifyPartition"`
	TelemetryPath   string  `json:"telemetryPath" yaml:"telemetryPath"` // .csv or .csv.zst, empty disables

	// Viewers
	ScreenWidth  int `json:"screenWidth" yaml:"screenWidth"`
	ScreenHeight int `json:"screenHeight" yaml:"screenHeight"`
}

func DefaultConfig() *Config {
	return &Config{
		Population:      1000,
		Dimensions:      2,
		Seed:            1,
		BucketMaxSize:   16,
		DepthBudget:     20,
		Params:          flock.DefaultParams(),
		Workers:         1,
		TicksPerSecond:  60,
		VerifyPartition: false,
		ScreenWidth:     800,
		ScreenHeight:    800,
	}
}

// Validate checks the preconditions of the engine and the viewers.
func (c *Config) Validate() error {
	if c.Population < 0 {
		return fmt.Errorf("%w: population must not be negative, got %d", ErrInvalidConfig, c.Population)
	}
	if c.Dimensions < 2 {
		return fmt.Errorf("%w: dimensions must be at least 2, got %d", ErrInvalidConfig, c.Dimensions)
	}
	if err := quadtree.ValidateLimits(c.BucketMaxSize, c.DepthBudget); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.TicksPerSecond < 0 {
		return fmt.Errorf("%w: ticksPerSecond must not be negative, got %v", ErrInvalidConfig, c.TicksPerSecond)
	}
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("%w: screen must be positive, got %dx%d", ErrInvalidConfig, c.ScreenWidth, c.ScreenHeight)
	}
	return nil
}

// LoadConfig loads configuration from a JSON or YAML file and validates it against the schema.
// Fields missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, YAML is converted to JSON so both go through the same schema
	b, err := readDocument(configFile)
	if err != nil {
		return nil, err
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readDocument(configFile string) ([]byte, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		var doc map[string]interface{}
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		if doc == nil {
			doc = map[string]interface{}{}
		}
		b, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert config yaml: %w", err)
		}
	}
	return b, nil
}

// WriteYAML saves the configuration, for instance to keep the tuning of a run.
func (c *Config) WriteYAML(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
