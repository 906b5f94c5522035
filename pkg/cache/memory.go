package cache

import (
	"sync"
	"time"

	"github.com/vmihailenco/msgpack"
)

// Memory is an in-process Cache. Items are serialized the same way the Redis
// variant does it, so both backends accept the same item types. The clock is
// a field so tests can control expiry.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (c *Memory) SaveItem(key string, item interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(item)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = memoryItem{data: data, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Memory) GetItem(key string, item interface{}) error {
	c.mu.Lock()
	entry, ok := c.items[key]
	if ok && c.now().After(entry.expiresAt) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	return msgpack.Unmarshal(entry.data, item)
}

func (c *Memory) Invalidate(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}

	return nil
}

func (c *Memory) Close() error {
	return nil
}
