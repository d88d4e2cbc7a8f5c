package cache

import (
	"context"

	"github.com/matzehuels/depforce/pkg/errors"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config selects and configures a backend. Redis and Mongo settings are
// validated only when their backend is selected.
type Config struct {
	Backend string      `toml:"backend" yaml:"backend" validate:"omitempty,oneof=file memory redis mongo none"`
	Dir     string      `toml:"dir" yaml:"dir"`
	Redis   RedisConfig `toml:"redis" yaml:"redis" validate:"-"`
	Mongo   MongoConfig `toml:"mongo" yaml:"mongo" validate:"-"`
}

// Open creates the configured backend. An empty backend selects the file
// cache when Dir is set and the memory cache otherwise.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
		if cfg.Dir != "" {
			backend = BackendFile
		}
	}

	switch backend {
	case BackendFile:
		if cfg.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file cache needs a directory")
		}
		return nonNil(NewFileCache(cfg.Dir))
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		return nonNil(NewRedisCache(ctx, cfg.Redis))
	case BackendMongo:
		return nonNil(NewMongoCache(ctx, cfg.Mongo))
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", backend)
	}
}

// nonNil keeps a failed constructor's typed nil out of the interface.
func nonNil[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
