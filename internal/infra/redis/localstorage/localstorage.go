package infra_redis_localstorage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis"
)

// Driver stores client entries as plain string keys
// "<namespace>:<client id>:<key>" without expiration.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

func (d *Driver) Get(ctx context.Context, clientID string, key string) (string, bool, error) {
	val, err := d.client.WithContext(ctx).Get(d.getFullKey(clientID, key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return val, true, nil
}

// Set writes all entries inside one MULTI/EXEC block.
func (d *Driver) Set(ctx context.Context, clientID string, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := d.client.WithContext(ctx).TxPipelined(func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(d.getFullKey(clientID, k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store entries: %w", err)
	}

	return nil
}

func (d *Driver) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	fullKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		fullKeys = append(fullKeys, d.getFullKey(clientID, k))
	}

	if err := d.client.WithContext(ctx).Del(fullKeys...).Err(); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	return nil
}

func (d *Driver) getFullKey(clientID, key string) string {
	if d.key != "" {
		return d.key + ":" + clientID + ":" + key
	}
	return clientID + ":" + key
}
