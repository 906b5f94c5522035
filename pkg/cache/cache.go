// Package cache keeps the last fetched remote video list around so repeated
// sync runs within the TTL window don't hit the YouTube API again.
package cache

import (
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// Cache is a TTL key/value store for serializable items.
type Cache interface {
	SaveItem(key string, item interface{}, ttl time.Duration) error
	GetItem(key string, item interface{}) error
	Invalidate(keys ...string) error
	Close() error
}
