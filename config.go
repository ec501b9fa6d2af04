package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// Config represents the application configuration structure
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Attachment AttachmentConfig `koanf:"attachment"`
	Chat       ChatConfig       `koanf:"chat"`
}

// ServerConfig holds backend connection configuration
type ServerConfig struct {
	BaseURL       string `koanf:"base_url"`
	TimeoutSec    int    `koanf:"timeout"`
	StreamTimeout int    `koanf:"stream_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AttachmentConfig holds file attachment limits
type AttachmentConfig struct {
	MaxSize int `koanf:"max_size"`
}

// ChatConfig holds chat behavior configuration
type ChatConfig struct {
	Model string `koanf:"model"`
}

// defaultConfig returns the configuration populated with sensible defaults.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:    "http://127.0.0.1:5000",
			TimeoutSec: 30,
		},
		Attachment: AttachmentConfig{
			MaxSize: DefaultAttachmentLimit,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// StreamIdleTimeout returns the idle deadline between stream reads, zero
// meaning no deadline.
func (s ServerConfig) StreamIdleTimeout() time.Duration {
	return time.Duration(s.StreamTimeout) * time.Second
}

// LoadConfig loads configuration from multiple sources
func LoadConfig() (*Config, error) {
	// Create a new koanf instance
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get user home directory: %v", err)
	} else {
		userConfigPath := filepath.Join(homeDir, ".config", "slate", "conf.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := k.Load(file.Provider(userConfigPath), koanftoml.Parser()); err != nil {
				log.Printf("Failed to load user config from %s: %v", userConfigPath, err)
			}
		}
	}

	projectConfigPath := filepath.Join(".slate", "conf.toml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := k.Load(file.Provider(projectConfigPath), koanftoml.Parser()); err != nil {
			log.Printf("Failed to load project config from %s: %v", projectConfigPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Unable to stat project config at %s: %v", projectConfigPath, err)
	}

	// Environment variables with prefix "SLATE_" override config values,
	// e.g. SLATE_SERVER_BASE_URL overrides server.base_url
	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix: "SLATE_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "SLATE_"))
			if idx := strings.Index(key, "_"); idx != -1 {
				key = key[:idx] + "." + key[idx+1:]
			}
			return key, value
		},
	}), nil); err != nil {
		log.Printf("Failed to load environment variables: %v", err)
	}

	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// SaveModel saves the default model to the project-level conf.toml file
func SaveModel(model string) error {
	projectConfigPath := filepath.Join(".slate", "conf.toml")

	if err := os.MkdirAll(".slate", 0o755); err != nil {
		return fmt.Errorf("failed to create .slate directory: %w", err)
	}

	k := koanf.New(".")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := k.Load(file.Provider(projectConfigPath), koanftoml.Parser()); err != nil {
			return fmt.Errorf("failed to load existing project config: %w", err)
		}
	}

	if err := k.Set("chat.model", model); err != nil {
		return fmt.Errorf("failed to update model in config: %w", err)
	}

	data, err := k.Marshal(koanftoml.Parser())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(projectConfigPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
