package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Calendar CalendarConfig `mapstructure:"calendar" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes bounds how long issued tokens stay valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// CalendarConfig contains the remote calendar store settings.
type CalendarConfig struct {
	// CredentialsFile is the path to the service account key used to reach
	// the calendar API.
	CredentialsFile string `mapstructure:"credentials_file" validate:"required"`

	// CalendarID names the calendar all events live on.
	CalendarID string `mapstructure:"calendar_id" validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// TranscriptionModel handles speech-to-text over uploaded audio.
	TranscriptionModel string `mapstructure:"transcription_model"`

	// IntentModel turns transcripts into structured calendar intents.
	IntentModel string `mapstructure:"intent_model"`
}

// SpeechConfig contains text-to-speech synthesis settings. Synthesis is
// optional; with no endpoint configured, jobs skip audio generation.
type SpeechConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	APIKey   string `mapstructure:"api_key"`
	Voice    string `mapstructure:"voice"`
}

// StorageConfig contains audio artifact storage settings.
type StorageConfig struct {
	// BaseDir is where uploaded and synthesized audio files live.
	BaseDir string `mapstructure:"base_dir" validate:"required"`

	// SweepSchedule is the cron expression for the artifact janitor.
	SweepSchedule string `mapstructure:"sweep_schedule"`

	// MaxArtifactAge is how long artifacts survive before the janitor
	// removes them.
	MaxArtifactAge time.Duration `mapstructure:"max_artifact_age"`
}

// WorkerConfig contains background processing settings.
type WorkerConfig struct {
	Count     int `mapstructure:"count" validate:"omitempty,gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"omitempty,gt=0"`

	// RetryAttempts and RetryBaseDelay shape the exponential backoff applied
	// to remote calls made while processing a job.
	RetryAttempts  int           `mapstructure:"retry_attempts" validate:"omitempty,gt=0"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}
