package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment conventions.
const (
	EnvPrefix  = "COACHBOARD_"
	EnvConfig  = EnvPrefix + "CONFIG"
	EnvDotFile = EnvPrefix + "ENV_FILE"

	defaultDotFile = ".env"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. a .env file (COACHBOARD_ENV_FILE, default ".env"), never overriding
//     variables already set in the process
//  3. a YAML file if COACHBOARD_CONFIG is set
//  4. COACHBOARD_* environment variables
//
// The result is validated before it is returned.
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, wrap(ErrLoadConfig, "read "+path, err)
		}
	}

	// COACHBOARD_RATE_LIMIT_RPS -> rate_limit_rps. Underscores are kept to
	// match the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, wrap(ErrLoadConfig, "read env", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, wrap(ErrInvalidConfig, "decode", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(EnvDotFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return wrap(ErrLoadConfig, "read "+path, err)
}
