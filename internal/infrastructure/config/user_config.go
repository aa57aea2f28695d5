package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// UserConfig represents user preferences stored in ~/.factory-economy/config.json
// This file stores ONLY preferences, never tokens or secrets
type UserConfig struct {
	// Player acting when --player is not given on the CLI
	DefaultPlayer string `json:"default_player,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a new user config handler
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".factory-economy"))
}

// NewUserConfigHandlerAt stores the preferences under dir
func NewUserConfigHandlerAt(dir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: filepath.Join(dir, "config.json")}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(h.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// SetDefaultPlayer sets the default player
func (h *UserConfigHandler) SetDefaultPlayer(player shared.PlayerID) error {
	config, err := h.Load()
	if err != nil {
		return err
	}
	config.DefaultPlayer = player.String()
	return h.Save(config)
}

// ClearDefaultPlayer removes the default player setting
func (h *UserConfigHandler) ClearDefaultPlayer() error {
	config, err := h.Load()
	if err != nil {
		return err
	}
	config.DefaultPlayer = ""
	return h.Save(config)
}

// DefaultPlayer returns the stored default player, if any
func (h *UserConfigHandler) DefaultPlayer() (shared.PlayerID, bool, error) {
	config, err := h.Load()
	if err != nil {
		return shared.PlayerID{}, false, err
	}
	if config.DefaultPlayer == "" {
		return shared.PlayerID{}, false, nil
	}
	player, err := shared.ParsePlayerID(config.DefaultPlayer)
	if err != nil {
		return shared.PlayerID{}, false, fmt.Errorf("stored default player is invalid: %w", err)
	}
	return player, true, nil
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
