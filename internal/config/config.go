package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the flat wixport configuration.
type Config struct {
	Version       string `json:"version"`
	ClientID      string `json:"client_id"`                 // Wix application client id
	UploadsDir    string `json:"uploads_dir,omitempty"`     // where imported media lands
	UploadBaseURL string `json:"upload_base_url,omitempty"` // public prefix for imported media
}

// ConfigDir returns the wixport config directory (~/.wixport).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".wixport"), nil
}

// LoadConfig reads ~/.wixport/config.json. Returns an error when no
// config exists - caller should handle accordingly.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(dir)
}

// LoadConfigFrom reads config.json from the specified directory.
func LoadConfigFrom(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults(dir)

	return &cfg, nil
}

// SaveConfig writes config.json to ~/.wixport.
func SaveConfig(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(dir, cfg)
}

// SaveConfigTo writes config.json to the specified directory.
func SaveConfigTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults(dir string) {
	if c.UploadsDir == "" {
		c.UploadsDir = filepath.Join(dir, "uploads")
	}
	if c.UploadBaseURL == "" {
		c.UploadBaseURL = "/uploads"
	}
}

// FailedPostsPath returns the path of the persisted failed-posts file.
func FailedPostsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "failed-posts.json"), nil
}
