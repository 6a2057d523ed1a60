package pipeline

import (
	"context"

	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/errors"
)

// DefaultMongoDatabase is the database used when none is configured.
const DefaultMongoDatabase = "archviews"

// OpenCache opens the cache backend selected by opts.Cache. The file backend
// requires opts.CacheDir; the redis and mongo backends require their URL.
func OpenCache(ctx context.Context, opts Options) (cache.Cache, error) {
	name := opts.Cache
	if name == "" {
		name = CacheNone
	}
	if err := ValidateCache(name); err != nil {
		return nil, err
	}

	switch name {
	case CacheFile:
		if opts.CacheDir == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file cache requires a cache directory")
		}
		c, err := cache.NewFileCache(opts.CacheDir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCacheBackend, err, "open file cache %s", opts.CacheDir)
		}
		return c, nil
	case CacheRedis:
		if opts.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "redis cache requires redis_url")
		}
		c, err := cache.NewRedisCache(ctx, opts.RedisURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCacheBackend, err, "connect to redis")
		}
		return c, nil
	case CacheMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo cache requires mongo_uri")
		}
		db := opts.MongoDatabase
		if db == "" {
			db = DefaultMongoDatabase
		}
		c, err := cache.NewMongoCache(ctx, opts.MongoURI, db)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCacheBackend, err, "connect to mongo")
		}
		return c, nil
	default:
		return cache.NewNullCache(), nil
	}
}
