package config

import (
	"strconv"
	"time"

	"github.com/matzehuels/depforce/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEPFORCE_"

// envVars maps each override, without EnvPrefix, to its setter.
var envVars = map[string]func(c *Config, v string) error{
	"SOURCE":         func(c *Config, v string) error { c.Source.Endpoint = v; return nil },
	"SOURCE_RETRIES": func(c *Config, v string) error { return setInt(&c.Source.Attempts, v) },
	"ADDR":           func(c *Config, v string) error { c.Server.Addr = v; return nil },
	"MAX_FPS":        func(c *Config, v string) error { return setFloat(&c.Server.MaxFPS, v) },
	"TICK_INTERVAL":  func(c *Config, v string) error { return setDuration(&c.Server.TickInterval, v) },
	"WIDTH":          func(c *Config, v string) error { return setFloat(&c.Layout.Width, v) },
	"HEIGHT":         func(c *Config, v string) error { return setFloat(&c.Layout.Height, v) },
	"SEED": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.Layout.Seed = n
		return nil
	},
	"THEME":          func(c *Config, v string) error { c.Layout.Theme = v; return nil },
	"CACHE_BACKEND":  func(c *Config, v string) error { c.Cache.Backend = v; return nil },
	"CACHE_DIR":      func(c *Config, v string) error { c.Cache.Dir = v; return nil },
	"REDIS_ADDR":     func(c *Config, v string) error { c.Cache.Redis.Addr = v; return nil },
	"REDIS_PASSWORD": func(c *Config, v string) error { c.Cache.Redis.Password = v; return nil },
	"REDIS_DB":       func(c *Config, v string) error { return setInt(&c.Cache.Redis.DB, v) },
	"MONGO_URI":      func(c *Config, v string) error { c.Cache.Mongo.URI = v; return nil },
	"MONGO_DATABASE": func(c *Config, v string) error { c.Cache.Mongo.Database = v; return nil },
}

// applyEnv applies every set DEPFORCE_* variable. Empty values are ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envVars {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		if err := set(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s=%q", EnvPrefix, name, v)
		}
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
