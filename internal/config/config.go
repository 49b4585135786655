package config

import (
	"errors"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	MaxMessageBytes int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	PingInterval    time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	SendBuffer      int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// MaxMessagesPerMinute caps inbound frames per connection; 0 disables the limit.
	MaxMessagesPerMinute int `mapstructure:"max_messages_per_minute" yaml:"max_messages_per_minute"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// ServiceToken authenticates the account service on the user sync API.
	ServiceToken string `mapstructure:"service_token" yaml:"service_token"`

	DatabasePath     string        `mapstructure:"database_path" yaml:"database_path"`
	IdentityCacheTTL time.Duration `mapstructure:"identity_cache_ttl" yaml:"identity_cache_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                 ":8080",
		ReadHeaderTimeout:    5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		LogLevel:             "info",
		LogFormat:            "console",
		MaxMessageBytes:      64 << 10,
		PingInterval:         25 * time.Second,
		WriteTimeout:         10 * time.Second,
		SendBuffer:           32,
		MaxMessagesPerMinute: 600,
		DatabasePath:         "pinlive.db",
		IdentityCacheTTL:     30 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.ServiceToken != "" {
		c.ServiceToken = other.ServiceToken
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if c.ServiceToken == "" {
		errs = append(errs, errors.New("service_token is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.MaxMessageBytes <= 0 {
		errs = append(errs, errors.New("max_message_bytes must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.MaxMessagesPerMinute < 0 {
		errs = append(errs, errors.New("max_messages_per_minute must not be negative"))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("write_timeout must be positive"))
	}
	return errors.Join(errs...)
}
