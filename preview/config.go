package preview

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/locomotion/config"
)

// Default tunables of a preview engine.
const (
	DefaultSampleTime     = 0.001
	DefaultStepHeight     = 0.1
	DefaultForceThreshold = 0.
	DefaultWorkers        = 1
)

// Config holds the tunables of a preview engine.
type Config struct {
	// SampleTime is the interval between preview samples in seconds.
	SampleTime float64 `json:"sample_time"`
	// StepHeight is the apex height of swing trajectories above the higher foothold.
	StepHeight float64 `json:"step_height"`
	// ForceThreshold is the contact force above which a foot is considered in support.
	ForceThreshold float64 `json:"force_threshold"`
	// Workers bounds the number of samples of a phase computed concurrently.
	Workers int `json:"workers"`
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		SampleTime:     DefaultSampleTime,
		StepHeight:     DefaultStepHeight,
		ForceThreshold: DefaultForceThreshold,
		Workers:        DefaultWorkers,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	var err error
	if cfg.SampleTime <= 0 {
		err = multierr.Append(err, errors.Errorf("sample_time must be positive, got %v", cfg.SampleTime))
	}
	if cfg.StepHeight < 0 {
		err = multierr.Append(err, errors.Errorf("step_height cannot be negative, got %v", cfg.StepHeight))
	}
	if cfg.ForceThreshold < 0 {
		err = multierr.Append(err, errors.Errorf("force_threshold cannot be negative, got %v", cfg.ForceThreshold))
	}
	if cfg.Workers < 1 {
		err = multierr.Append(err, errors.Errorf("workers must be at least 1, got %d", cfg.Workers))
	}
	return err
}

// ConfigFromAttributes decodes tunables from an attribute map. Missing attributes keep their default
// values and unknown ones are logged.
func ConfigFromAttributes(attrs config.AttributeMap, logger golog.Logger) (Config, error) {
	cfg := DefaultConfig()
	decoded, unused, err := config.TransformAttributeMap[Config](attrs)
	if err != nil {
		return cfg, errors.Wrap(err, "cannot decode preview config")
	}
	if len(unused) > 0 {
		logger.Warnw("ignoring unknown preview config attributes", "attributes", unused)
	}
	if attrs.Has("sample_time") {
		cfg.SampleTime = decoded.SampleTime
	}
	if attrs.Has("step_height") {
		cfg.StepHeight = decoded.StepHeight
	}
	if attrs.Has("force_threshold") {
		cfg.ForceThreshold = decoded.ForceThreshold
	}
	if attrs.Has("workers") {
		cfg.Workers = decoded.Workers
	}
	return cfg, cfg.Validate()
}

// ReadConfig reads tunables from a JSON or YAML file.
func ReadConfig(filePath string, logger golog.Logger) (Config, error) {
	attrs, err := config.ReadAttributes(filePath)
	if err != nil {
		return DefaultConfig(), err
	}
	return ConfigFromAttributes(attrs, logger)
}
