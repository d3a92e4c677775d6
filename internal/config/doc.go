// Package config handles configuration loading for coven-vars.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. Every section has a sensible default; a missing config file
// is not an error (Default() is used instead).
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COVEN_VARS_CONFIG environment variable
//  2. ~/.config/coven-vars/config.yaml (or $XDG_CONFIG_HOME equivalent)
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	model:
//	  api_key: "${ANTHROPIC_API_KEY}"
//
// # Configuration Sections
//
// Variable storage:
//
//	store:
//	  path: "~/.config/coven-vars/variables.json"
//
// Gateway listener:
//
//	gateway:
//	  socket: "~/.local/share/coven-vars/gateway.sock"
//	  http_addr: "127.0.0.1:7411"   # optional TCP listener
//	  request_timeout: "10s"
//
// Authentication (bearer tokens are required when a secret is set):
//
//	auth:
//	  jwt_secret: "${COVEN_VARS_JWT_SECRET}"
//
// Audit log:
//
//	audit:
//	  enabled: true
//	  path: "~/.local/share/coven-vars/audit.db"
//
// Remote model client:
//
//	model:
//	  enabled: true
//	  api_key: "${ANTHROPIC_API_KEY}"
//	  model: "claude-sonnet-4-20250514"
//	  max_tokens: 1024
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
