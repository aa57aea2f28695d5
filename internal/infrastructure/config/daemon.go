package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Player action endpoint (host:port) used by the CLI while the daemon runs
	APIAddress string `mapstructure:"api_address" validate:"required"`

	// Websocket notification endpoint (host:port). Empty disables it.
	NotifyAddress string `mapstructure:"notify_address"`
	NotifyPath    string `mapstructure:"notify_path"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
