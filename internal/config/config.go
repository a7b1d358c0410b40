package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	SecurityConfig
	SessionConfig
	ProviderConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
	GetHomePath() string
}

// mainConfig is parsed once at start up and never mutated afterwards.
type mainConfig struct {
	values envValues
}

var _ Config = mainConfig{}

// New reads the configuration from the process environment.
func New() (Config, error) {
	return parse(env.Options{})
}

// NewFromMap reads the configuration from the given variables instead of the
// process environment.
func NewFromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var values envValues
	if err := env.ParseWithOptions(&values, opts); err != nil {
		return nil, fmt.Errorf("[config parse] %w", err)
	}
	return mainConfig{values: values}, nil
}
