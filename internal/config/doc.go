// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional config.yaml and an optional .env
// file. It provides type-safe access to the settings needed by the server,
// the stores, the token service and the mail dispatcher.
package config
