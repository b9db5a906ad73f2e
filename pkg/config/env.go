package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/mathfmt/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MATHFMT_"

// applyEnv overrides fields from MATHFMT_* variables, as named by the env
// struct tags. A nil environ reads the process environment. Unset variables
// leave the current value in place.
func (c *Config) applyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment overrides")
	}
	return nil
}
