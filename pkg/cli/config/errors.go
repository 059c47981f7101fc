package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig           = goerr.New("invalid configuration")
	ErrUnsupportedConfigFormat = goerr.New("unsupported configuration file format")
	ErrIncompleteSlackConfig   = goerr.New("slack bot token and channel ID must be set together")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	StatusKey     = "status"
)
