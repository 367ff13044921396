package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml alongside the binary; env vars override it.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// VOCAL_SERVER_PORT maps to server.port, and so on.
	v.SetEnvPrefix("VOCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("llm.transcription_model", "gemini-2.0-flash")
	v.SetDefault("llm.intent_model", "gemini-2.0-flash")
	v.SetDefault("speech.voice", "alloy")
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.sweep_schedule", "17 * * * *")
	v.SetDefault("storage.max_artifact_age", 24*time.Hour)
	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.queue_size", 100)
	v.SetDefault("worker.retry_attempts", 3)
	v.SetDefault("worker.retry_base_delay", 2*time.Second)
}

// bindEnvKeys forces viper to consult the environment for every known key.
// AutomaticEnv alone misses keys absent from both defaults and config file.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"auth.jwt_secret",
		"calendar.credentials_file",
		"calendar.calendar_id",
		"llm.gemini_api_key",
		"speech.endpoint",
		"speech.api_key",
	} {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}
