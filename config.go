package prism

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth bounds how deep projection descends into nested models.
const DefaultMaxDepth = 32

// Config holds process-wide projection defaults. Build it once at startup and
// hand it to New or NewProcessor; projectors never read ambient state.
type Config struct {
	// DefaultMarker is used when a request names no marker.
	DefaultMarker Marker `yaml:"default_marker" mapstructure:"default_marker"`

	// MaskSymbol replaces masked runes for rules without an explicit symbol.
	MaskSymbol string `yaml:"mask_symbol" mapstructure:"mask_symbol"`

	// FailClosed zeroes an element whose projection failed instead of
	// passing it through unmodified.
	FailClosed bool `yaml:"fail_closed" mapstructure:"fail_closed"`

	// MaxDepth bounds recursion into nested models. A non-nil model deeper
	// than this is a projection failure.
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaskSymbol: DefaultMaskSymbol,
		MaxDepth:   DefaultMaxDepth,
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if utf8.RuneCountInString(c.MaskSymbol) != 1 {
		return newConfigError(ErrInvalidConfig, c.MaskSymbol, "mask_symbol",
			errors.New("must be a single character"))
	}
	if c.MaxDepth < 1 {
		return newConfigError(ErrInvalidConfig, fmt.Sprint(c.MaxDepth), "max_depth",
			errors.New("must be at least 1"))
	}
	if c.DefaultMarker == AnyMarker {
		return newConfigError(ErrInvalidConfig, string(c.DefaultMarker), "default_marker",
			errors.New("the wildcard marker is only meaningful in tags"))
	}
	return nil
}

// LoadConfig loads configuration from a YAML file on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DecodeConfig builds a configuration from a generic map, as produced by
// service configuration loaders, on top of DefaultConfig.
func DecodeConfig(input map[string]any) (Config, error) {
	cfg := DefaultConfig()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}

	if err := decoder.Decode(input); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures a Projector or Processor.
type Option func(*options)

type options struct {
	cfg     Config
	maskers map[MaskKind]Masker
	hashers map[HashAlgo]Hasher
}

func buildOptions(opts []Option) options {
	o := options{
		cfg:     DefaultConfig(),
		maskers: make(map[MaskKind]Masker),
		hashers: make(map[HashAlgo]Hasher),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithDefaultMarker sets the marker used when a request names none.
func WithDefaultMarker(m Marker) Option {
	return func(o *options) {
		o.cfg.DefaultMarker = m
	}
}

// WithMaskSymbol sets the symbol for rules without an explicit one.
func WithMaskSymbol(symbol string) Option {
	return func(o *options) {
		o.cfg.MaskSymbol = symbol
	}
}

// WithFailClosed zeroes elements whose projection failed.
func WithFailClosed() Option {
	return func(o *options) {
		o.cfg.FailClosed = true
	}
}

// WithMaxDepth bounds recursion into nested models.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.cfg.MaxDepth = depth
	}
}

// WithMasker overrides the masker for a kind.
func WithMasker(kind MaskKind, m Masker) Option {
	return func(o *options) {
		o.maskers[kind] = m
	}
}

// WithHasher overrides the hasher for an algorithm.
func WithHasher(algo HashAlgo, h Hasher) Option {
	return func(o *options) {
		o.hashers[algo] = h
	}
}
