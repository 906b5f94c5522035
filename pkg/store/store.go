// Package store persists videos and newsletter subscribers behind backend
// neutral repository contracts. Two implementations exist: an in-memory map
// for development and tests, and Postgres for deployments. The backend is
// picked from configuration at startup.
package store

import (
	"time"

	"github.com/pkg/errors"

	"github.com/reelpage/reelpage/pkg/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// VideoRepository is the video persistence contract.
//
// Showreel falls back to the newest featured record, then to any record, so
// the homepage hero has content whenever at least one video exists. Listings
// are ordered by published_at descending. Featured returns the unbounded set;
// the serving layer truncates. ByCategory treats model.CategoryAll as All.
//
// VideoID uniqueness is enforced by the sync job's pre-insert check (and by a
// UNIQUE constraint on the Postgres backend); Create itself does not dedupe.
type VideoRepository interface {
	GetByID(id int) (*model.Video, error)
	GetByVideoID(videoID string) (*model.Video, error)
	Showreel() (*model.Video, error)
	Featured() ([]model.Video, error)
	All() ([]model.Video, error)
	ByCategory(category string) ([]model.Video, error)
	Longest() (*model.Video, error)
	Create(video *model.Video) error
	Update(id int, patch VideoPatch) (*model.Video, error)
}

// SubscriberRepository is the newsletter persistence contract. Create returns
// ErrAlreadyExists for a duplicate email; there is no update or delete.
type SubscriberRepository interface {
	GetByEmail(email string) (*model.Subscriber, error)
	Create(subscriber *model.Subscriber) error
	All() ([]model.Subscriber, error)
}

// VideoPatch is a partial update; nil fields are left untouched.
type VideoPatch struct {
	Title           *string
	Description     *string
	ThumbnailURL    *string
	Category        *string
	Duration        *string
	DurationSeconds *int
	ViewCount       *int
	Featured        *bool
	Showreel        *bool
	PublishedAt     *time.Time
}
