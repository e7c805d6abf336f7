// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	forceMock      = pflag.Bool("force-mock-captions", false, "Skips the caption model probe and always uses mock captions")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.expiry_hours", "jwt_expiry_hours")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_extensions", "upload_allowed_extensions")

	v.BindEnv("storage.root", "storage_root")
	v.BindEnv("storage.public_prefix", "storage_public_prefix")
	v.BindEnv("storage.sweep_schedule", "storage_sweep_schedule")

	v.BindEnv("caption.force_mock", "caption_force_mock")
	v.BindEnv("caption.api_key", "caption_api_key")
	v.BindEnv("caption.base_url", "caption_base_url")
	v.BindEnv("caption.model", "caption_model")
	v.BindEnv("caption.timeout", "caption_timeout")
	v.BindEnv("caption.max_tokens", "caption_max_tokens")
	v.BindEnv("caption.frames", "caption_frames")
	v.BindEnv("caption.workers", "caption_workers")
	v.BindEnv("caption.max_jobs", "caption_max_jobs")

	v.BindEnv("cors.origins", "cors_origins")

	v.BindEnv("rate.rps", "rate_rps")
	v.BindEnv("rate.burst", "rate_burst")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("upload.max_size", 500)
	v.SetDefault("upload.allowed_extensions", []string{"mp4", "webm", "ogg"})

	v.SetDefault("storage.root", "./uploads")
	v.SetDefault("storage.public_prefix", "/uploads")
	v.SetDefault("storage.sweep_schedule", "@hourly")

	v.SetDefault("caption.force_mock", false)
	v.SetDefault("caption.model", "gpt-4o-mini")
	v.SetDefault("caption.timeout", "60s")
	v.SetDefault("caption.max_tokens", 120)
	v.SetDefault("caption.frames", 3)
	v.SetDefault("caption.workers", 2)
	v.SetDefault("caption.max_jobs", 16)

	v.SetDefault("cors.origins", []string{"http://localhost:3000"})

	v.SetDefault("rate.rps", 5)
	v.SetDefault("rate.burst", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		// Everything can come from the environment, so a missing
		// config.toml is not fatal
	}

	if *forceMock {
		v.Set("caption.force_mock", true)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return errors.New("jwt.secret is missing. Set it in config.toml or as the JWT_SECRET environment variable")
	}

	if v.GetInt("jwt.expiry_hours") <= 0 {
		return errors.New("jwt.expiry_hours must be bigger than 0")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_extensions")) == 0 {
		return errors.New("upload.allowed_extensions can't be empty")
	}

	if v.GetString("storage.root") == "" {
		return errors.New("storage.root can't be empty")
	}

	if v.GetInt("caption.workers") <= 0 {
		return errors.New("caption.workers must be bigger than 0")
	}

	if !v.GetBool("caption.force_mock") && v.GetString("caption.api_key") == "" {
		zap.L().Warn("No caption.api_key configured, the mock caption provider will be used")
	}

	// Stored in MB for humans, used in bytes everywhere else
	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
