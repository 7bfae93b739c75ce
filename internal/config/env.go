package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvDB           = "AGENT_LEDGER_DB"
	EnvProject      = "AGENT_LEDGER_PROJECT"
	EnvMaxCost      = "AGENT_LEDGER_MAX_COST"
	EnvLogLevel     = "AGENT_LEDGER_LOG_LEVEL"
	EnvQueryTimeout = "AGENT_LEDGER_QUERY_TIMEOUT"
)

// stringOr returns the named variable, or def if it is unset or empty.
func stringOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// intOr parses the named variable as a decimal integer, falling back to def
// when it is unset or unparsable.
func intOr(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// durationOr parses the named variable as a time.Duration ("5s", "1m").
func durationOr(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
