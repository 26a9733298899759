// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	defaultMorningCron = "0 7 * * *"
	defaultEveningCron = "0 21 * * *"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// missing env files are fine, real deployments use the environment
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("bot.poll_timeout", "10s")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.file.path", "./data/users.json")
	v.SetDefault("jobs.concurrency", 10)
	v.SetDefault("digest.morning_cron", defaultMorningCron)
	v.SetDefault("digest.evening_cron", defaultEveningCron)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	if err := validateCrons(cfg.Digest); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// validateCrons rejects malformed digest schedules at boot instead of letting
// the scheduler fail hours later.
func validateCrons(d DigestConfig) error {
	parser := cron.ParseStandard

	if _, err := parser(d.MorningCron); err != nil {
		return fmt.Errorf("digest.morning_cron %q: %w", d.MorningCron, err)
	}
	if _, err := parser(d.EveningCron); err != nil {
		return fmt.Errorf("digest.evening_cron %q: %w", d.EveningCron, err)
	}
	return nil
}

// Watch logs config file changes. Schedules and connections are fixed at boot;
// the watch exists so operators can see that an edit landed and needs a restart.
func Watch(v *viper.Viper, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("config file changed, restart to apply",
			slog.String("file", e.Name),
			slog.String("op", e.Op.String()),
		)
	})
	v.WatchConfig()
}
