package cache

import (
	"time"

	"github.com/go-redis/redis"
	"github.com/vmihailenco/msgpack"
)

// Redis is a Cache backed by a Redis server, for deployments where several
// processes should share one fetch window.
type Redis struct {
	client *redis.Client
}

func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

func (c *Redis) SaveItem(key string, item interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(item)
	if err != nil {
		return err
	}

	return c.client.Set(key, data, ttl).Err()
}

func (c *Redis) GetItem(key string, item interface{}) error {
	data, err := c.client.Get(key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	return msgpack.Unmarshal(data, item)
}

func (c *Redis) Invalidate(keys ...string) error {
	return c.client.Del(keys...).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}
