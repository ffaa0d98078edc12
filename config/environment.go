package config

import (
	"os"
	"strconv"
)

// CounterPolicy controls how a session's accepted counters react to repeated
// review batches: each batch either overwrites the counters or adds to them.
type CounterPolicy string

const (
	CounterOverwrite  CounterPolicy = "overwrite"
	CounterAccumulate CounterPolicy = "accumulate"
)

type Environment struct {
	IsDevelopment bool
	Auth0Domain   string
	Auth0Audience string

	DefaultModel        string
	CounterPolicy       CounterPolicy
	OrphanRetentionDays int
}

var Env Environment

func init() {
	Env = Load()
}

// Load reads environment settings with development defaults. Auth0 settings
// absent means development mode: local HS256 tokens are accepted instead.
func Load() Environment {
	domain := os.Getenv("AUTH0_DOMAIN")

	model := os.Getenv("GENERATION_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	policy := CounterPolicy(os.Getenv("COUNTER_POLICY"))
	if policy != CounterAccumulate {
		policy = CounterOverwrite
	}

	retention := 7
	if v := os.Getenv("ORPHAN_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			retention = n
		}
	}

	return Environment{
		IsDevelopment:       domain == "",
		Auth0Domain:         domain,
		Auth0Audience:       os.Getenv("AUTH0_AUDIENCE"),
		DefaultModel:        model,
		CounterPolicy:       policy,
		OrphanRetentionDays: retention,
	}
}
