package cache

import (
	"context"
	"fmt"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend    string // file, memory, redis, mongo, none
	Dir        string // file backend directory
	MaxEntries int    // memory backend bound
	RedisAddr  string
	MongoURI   string
}

// New builds a cache backend from options. An empty backend name means file,
// which suits CLI usage; servers typically choose redis or mongo.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileCache(opts.Dir)
	case "memory":
		return NewMemoryCache(opts.MaxEntries), nil
	case "redis":
		return NewRedisCache(ctx, opts.RedisAddr)
	case "mongo":
		return NewMongoCache(ctx, opts.MongoURI)
	case "none":
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
