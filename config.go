package refobj

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config controls the behavior of an Allocator. The zero value is an
// unlimited allocator with payload pooling and no leak checking.
type Config struct {
	// MaxBytes bounds the payload bytes outstanding at once. Zero means
	// unlimited.
	MaxBytes int64 `yaml:"max_bytes"`

	// LeakCheck logs a warning for every object that is garbage collected
	// while it still has references.
	LeakCheck bool `yaml:"leak_check"`

	// DisablePool allocates every byte payload fresh instead of reusing
	// freed ones.
	DisablePool bool `yaml:"disable_pool"`
}

// LoadConfig decodes a yaml Config from r. Unknown keys are an error and
// empty input is the zero Config.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("refobj: decoding config: %w", err)
	}
	if cfg.MaxBytes < 0 {
		return Config{}, fmt.Errorf("refobj: max_bytes must not be negative: %d", cfg.MaxBytes)
	}
	return cfg, nil
}

// Option configures the collaborators of an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for failures and leak reports.
func WithLogger(log *zap.Logger) Option {
	return func(a *Allocator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics reports the Allocator's activity to m.
func WithMetrics(m *Metrics) Option {
	return func(a *Allocator) { a.metrics = m }
}
