// Package config loads the server settings from a .env file, TASKIE_
// environment variables and an optional config.yaml, applies defaults and
// validates the result.
package config
