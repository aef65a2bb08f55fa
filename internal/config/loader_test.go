package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/coachboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// Keep a stray .env in the package directory out of the picture.
		_ = os.Setenv(config.EnvDotFile, writeTemp(t, "env", ""))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COACHBOARD_ADDR", ":8080")
			_ = os.Setenv("COACHBOARD_TARGET_COEFFICIENT", "7.1")
			_ = os.Setenv("COACHBOARD_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("COACHBOARD_HISTORY_LIMIT", "20")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TargetCoefficient, convey.ShouldEqual, 7.1)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			_ = os.Setenv(config.EnvConfig, writeTemp(t, "yaml", `
# comment
addr: ":9090"  # inline
log_format: json
idempotency_size: 5
max_body_bytes: 2048
`))
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.IdempotencySize, convey.ShouldEqual, 5)
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(2048))
				convey.So(cfg.TargetCoefficient, convey.ShouldEqual, 6.68)
			})

			convey.Convey("And environment variables override file values", func() {
				_ = os.Setenv("COACHBOARD_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When a .env file is present", func() {
			_ = os.Setenv(config.EnvDotFile, writeTemp(t, "env", "COACHBOARD_LOG_LEVEL=debug\nCOACHBOARD_ADDR=:6060\n"))
			_ = os.Setenv("COACHBOARD_ADDR", ":5050")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills unset variables without overriding set ones", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
			})
		})

		convey.Convey("When the named .env file does not exist", func() {
			_ = os.Setenv(config.EnvDotFile, "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML", func() {
			_ = os.Setenv(config.EnvConfig, writeTemp(t, "yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv(config.EnvConfig, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("COACHBOARD_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr failed required")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-numeric values", func() {
			_ = os.Setenv("COACHBOARD_HISTORY_LIMIT", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a decode error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with out of range values", func() {
			_ = os.Setenv("COACHBOARD_IDEMPOTENCY_SIZE", "0")
			_ = os.Setenv("COACHBOARD_RATE_LIMIT_BURST", "-1")

			_, err := config.Load(ctx)

			convey.Convey("Then both violations are reported", func() {
				convey.So(err.Error(), convey.ShouldContainSubstring, "idempotency_size")
				convey.So(err.Error(), convey.ShouldContainSubstring, "rate_limit_burst")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		config.EnvConfig,
		config.EnvDotFile,
		"COACHBOARD_ADDR",
		"COACHBOARD_LOG_LEVEL",
		"COACHBOARD_LOG_FORMAT",
		"COACHBOARD_TARGET_COEFFICIENT",
		"COACHBOARD_MAX_BODY_BYTES",
		"COACHBOARD_RATE_LIMIT_RPS",
		"COACHBOARD_RATE_LIMIT_BURST",
		"COACHBOARD_IDEMPOTENCY_SIZE",
		"COACHBOARD_HISTORY_LIMIT",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func writeTemp(t *testing.T, ext, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coachboard."+ext)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
