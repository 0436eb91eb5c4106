package infra_redis_init

import (
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/kinoshelf/internal/config"
)

var ErrConnect = errors.New("local storage redis unreachable")

func Options(cfg config.RedisCache) *redis.Options {
	return &redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
	}
}

// Connect pings once and closes the client when the ping fails.
func Connect(cfg config.RedisCache) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return client, nil
}

func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	client, err := Connect(cfg)
	if err != nil {
		log.Fatalf("[redis] %v", err)
	}
	return client
}
