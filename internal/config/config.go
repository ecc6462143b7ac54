// Package config builds the helper's Config from cobra flags with
// environment-variable overrides, per SPEC_FULL.md §1.1. Grounded on the
// teacher's cmd/cmd/scan.go flag-definition style (StringP/Bool flags
// read back via cmd.Flags()), generalized to a one-shot helper with no
// subcommands.
package config

import (
	"os"

	"github.com/flashkit/priv-helper/internal/logger"
)

// Config is the fully resolved, validated configuration for one helper
// invocation.
type Config struct {
	SocketPath       string
	ClientBundleID   string
	ClientTeamID     string
	LogLevel         logger.Level
}

const (
	envClientBundleID = "HELPER_CLIENT_BUNDLE_ID"
	envClientTeamID   = "HELPER_CLIENT_TEAM_ID"
	envSocketPath     = "HELPER_SOCKET_PATH"
	envLogLevel       = "HELPER_LOG_LEVEL"
)

// FromFlags resolves a Config from parsed cobra flag values, with any
// matching HELPER_* environment variable taking precedence — the GUI's
// launcher sets these, and a bare CLI invocation (for manual testing)
// falls back to flags.
func FromFlags(socketPath, clientBundleID, clientTeamID, logLevel string) Config {
	return Config{
		SocketPath:     overrideFromEnv(envSocketPath, socketPath),
		ClientBundleID: overrideFromEnv(envClientBundleID, clientBundleID),
		ClientTeamID:   overrideFromEnv(envClientTeamID, clientTeamID),
		LogLevel:       logger.ParseLevel(overrideFromEnv(envLogLevel, logLevel)),
	}
}

func overrideFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
