package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`
	Redis  Redis  `yaml:"redis"`
	OpenAI OpenAI `yaml:"openai"`
}

type OpenAI struct {
	Classifier ModelConfig `yaml:"classifier" validate:"required"`
	Reply      ModelConfig `yaml:"reply" validate:"required"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// OpenAI model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free" validate:"required"`
}

type Server struct {
	// Listen address
	Listen string `yaml:"listen" example:":8080"`
	// Allowed x-api-key values, requests are not authenticated when empty
	APIKeys []string `yaml:"api_keys"`
}

type Redis struct {
	// Skip redis entirely and keep conversations in process memory
	Disabled bool `yaml:"disabled" example:"false"`
	// Redis connection url
	URL string `yaml:"url" example:"redis://localhost:6379/0"`
	// Conversation time-to-live in seconds, refreshed on every write
	TTLSeconds int `yaml:"ttl_seconds" example:"86400"`
}

type Log struct {
	// Minimum log level: debug, info, warn or error
	Level string `yaml:"level" example:"debug"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Listen == "" {
		result.Server.Listen = ":8080"
	}
	if result.Redis.URL == "" {
		result.Redis.URL = "redis://localhost:6379/0"
	}
	if result.Redis.TTLSeconds == 0 {
		result.Redis.TTLSeconds = 86400
	}
	if result.Log.Level == "" {
		result.Log.Level = "debug"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
