// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each subsystem declares its own Config struct with `env` tags and sane
// defaults; nothing in the application reads the environment directly.
package config
