package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

// RedisClient owns the shared redis connection.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the connection.
func (r *RedisClient) Shutdown() error {
	return r.Close()
}

// RedisPackage provides the redis client. Only register it when a redis address is configured.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

func redisEnabled(i *do.Injector) bool {
	return do.MustInvoke[*Options](i).RedisAddr != ""
}
