package config

import "time"

// Config holds server configuration values.
type Config struct {
	// Addr is the TCP listen address for the chat protocol.
	Addr string `mapstructure:"addr" yaml:"addr"`
	// StatusAddr enables the HTTP status endpoint when non-empty.
	StatusAddr string `mapstructure:"status_addr" yaml:"status_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// AuditDBPath enables the SQLite audit log when non-empty.
	AuditDBPath string `mapstructure:"audit_db_path" yaml:"audit_db_path"`
	// HandshakeTimeout bounds how long a new connection may take to send
	// its username line.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
	// ShutdownTimeout bounds the status server's graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DefaultPort is the historical default chat port.
const DefaultPort = 1500

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:             ":1500",
		StatusAddr:       "",
		LogLevel:         "info",
		AuditDBPath:      "",
		HandshakeTimeout: 10 * time.Second,
		ShutdownTimeout:  5 * time.Second,
	}
}
