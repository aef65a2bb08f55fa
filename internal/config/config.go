// Package config defines service configuration and its loading from
// defaults, a .env file, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// TargetCoefficient multiplies body weight into the assessment force target.
	TargetCoefficient float64 `koanf:"target_coefficient" validate:"gt=0"`

	// MaxBodyBytes caps request bodies on the API.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`

	// RateLimitRPS is the sustained API request rate. Zero disables limiting.
	RateLimitRPS float64 `koanf:"rate_limit_rps" validate:"gte=0"`

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int `koanf:"rate_limit_burst" validate:"gte=0"`

	// IdempotencySize bounds the remembered Idempotency-Key values.
	IdempotencySize int `koanf:"idempotency_size" validate:"gt=0"`

	// HistoryLimit caps records returned by an athlete history query.
	HistoryLimit int `koanf:"history_limit" validate:"gt=0"`
}

// Option mutates a Config built by New.
type Option func(*Config)

// WithAddr overrides the listen address.
func WithAddr(addr string) Option {
	return func(c *Config) { c.Addr = addr }
}

// WithTargetCoefficient overrides the assessment target coefficient.
func WithTargetCoefficient(coef float64) Option {
	return func(c *Config) { c.TargetCoefficient = coef }
}

// WithRateLimit sets the sustained rate and burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Config) {
		c.RateLimitRPS = rps
		c.RateLimitBurst = burst
	}
}

// New creates a Config with defaults and applies opts.
func New(opts ...Option) *Config {
	c := &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		TargetCoefficient: 6.68,
		MaxBodyBytes:      1 << 20,
		RateLimitRPS:      50,
		RateLimitBurst:    100,
		IdempotencySize:   10_000,
		HistoryLimit:      100,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}

// Validate checks every field constraint and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return wrap(ErrInvalidConfig, "validate", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
