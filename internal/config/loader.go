package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig reads the YAML file at path, applies BOT_* environment
// overrides over it and validates the result. A missing file is not an
// error; defaults and environment variables are used instead.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	// AutomaticEnv only sees keys viper already knows about. Secrets have no
	// defaults, so they are bound explicitly.
	for _, key := range []string{"telegram.token", "ai.api_key", "conversation.redis.password"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	switch cfg.Storage.Backend {
	case "sqlite":
		if cfg.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path is required for the sqlite backend"))
		}
	case "mongo":
		if cfg.Storage.Mongo.URI == "" || cfg.Storage.Mongo.Database == "" {
			errs = append(errs, errors.New("storage.mongo.uri and storage.mongo.database are required for the mongo backend"))
		}
	case "file":
		if cfg.Storage.File.Dir == "" {
			errs = append(errs, errors.New("storage.file.dir is required for the file backend"))
		}
	}
	if cfg.Conversation.Backend == "redis" && cfg.Conversation.Redis.Addr == "" {
		errs = append(errs, errors.New("conversation.redis.addr is required for the redis backend"))
	}
	if cfg.HTTP.Enabled && cfg.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required when http is enabled"))
	}
	for name, task := range cfg.Scheduler.Tasks {
		if task.Enabled && strings.TrimSpace(task.Schedule) == "" {
			errs = append(errs, fmt.Errorf("scheduler.tasks.%s.schedule is required when the task is enabled", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
