package config

import (
	"fmt"
	"strings"
)

// Environment names accepted in server.environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ParseEnvironment normalises a configured environment name. Empty means
// development; anything else unknown is an error.
func ParseEnvironment(raw string) (string, error) {
	env := strings.ToLower(strings.TrimSpace(raw))
	switch env {
	case "":
		return EnvDevelopment, nil
	case EnvDevelopment, EnvStaging, EnvProduction:
		return env, nil
	}
	return "", fmt.Errorf("unknown environment %q (want %s, %s or %s)", raw, EnvDevelopment, EnvStaging, EnvProduction)
}

// IsProductionLike reports whether env must refuse development defaults.
func IsProductionLike(env string) bool {
	return env == EnvStaging || env == EnvProduction
}
