package store

import (
	"sort"
	"sync"
	"time"

	"github.com/reelpage/reelpage/pkg/duration"
	"github.com/reelpage/reelpage/pkg/model"
)

// MemoryVideos keeps videos in process memory. Handlers read while the sync
// job writes, so access goes through an RWMutex. Returned records are copies.
type MemoryVideos struct {
	mu     sync.RWMutex
	videos map[int]model.Video
	nextID int
}

var _ VideoRepository = (*MemoryVideos)(nil)

func NewMemoryVideos() *MemoryVideos {
	return &MemoryVideos{
		videos: make(map[int]model.Video),
		nextID: 1,
	}
}

func (m *MemoryVideos) GetByID(id int) (*model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	video, ok := m.videos[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &video, nil
}

func (m *MemoryVideos) GetByVideoID(videoID string) (*model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, video := range m.videos {
		if video.VideoID == videoID {
			video := video
			return &video, nil
		}
	}

	return nil, ErrNotFound
}

func (m *MemoryVideos) Showreel() (*model.Video, error) {
	m.mu.RLock()
	videos := m.sorted(func(model.Video) bool { return true })
	m.mu.RUnlock()

	for _, video := range videos {
		if video.Showreel {
			video := video
			return &video, nil
		}
	}

	for _, video := range videos {
		if video.Featured {
			video := video
			return &video, nil
		}
	}

	if len(videos) > 0 {
		return &videos[0], nil
	}

	return nil, ErrNotFound
}

func (m *MemoryVideos) Featured() ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(v model.Video) bool { return v.Featured }), nil
}

func (m *MemoryVideos) All() ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(model.Video) bool { return true }), nil
}

func (m *MemoryVideos) ByCategory(category string) ([]model.Video, error) {
	if category == model.CategoryAll {
		return m.All()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(v model.Video) bool { return v.Category == category }), nil
}

func (m *MemoryVideos) Longest() (*model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var longest *model.Video
	best := -1

	for _, video := range m.videos {
		seconds := video.DurationSeconds
		if seconds == 0 {
			// Hand-inserted records may carry only the display form.
			seconds = duration.ParseDisplay(video.Duration)
		}

		if seconds > best {
			video := video
			longest, best = &video, seconds
		}
	}

	if longest == nil {
		return nil, ErrNotFound
	}

	return longest, nil
}

func (m *MemoryVideos) Create(video *model.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	video.ID = m.nextID
	m.nextID++

	m.videos[video.ID] = *video
	return nil
}

func (m *MemoryVideos) Update(id int, patch VideoPatch) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	video, ok := m.videos[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyPatch(&video, patch)
	m.videos[id] = video

	return &video, nil
}

// sorted returns matching videos ordered by published_at descending.
// Callers must hold at least a read lock.
func (m *MemoryVideos) sorted(match func(model.Video) bool) []model.Video {
	videos := make([]model.Video, 0, len(m.videos))
	for _, video := range m.videos {
		if match(video) {
			videos = append(videos, video)
		}
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})

	return videos
}

func applyPatch(video *model.Video, patch VideoPatch) {
	if patch.Title != nil {
		video.Title = *patch.Title
	}
	if patch.Description != nil {
		video.Description = *patch.Description
	}
	if patch.ThumbnailURL != nil {
		video.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.Category != nil {
		video.Category = *patch.Category
	}
	if patch.Duration != nil {
		video.Duration = *patch.Duration
	}
	if patch.DurationSeconds != nil {
		video.DurationSeconds = *patch.DurationSeconds
	}
	if patch.ViewCount != nil {
		video.ViewCount = *patch.ViewCount
	}
	if patch.Featured != nil {
		video.Featured = *patch.Featured
	}
	if patch.Showreel != nil {
		video.Showreel = *patch.Showreel
	}
	if patch.PublishedAt != nil {
		video.PublishedAt = *patch.PublishedAt
	}
}

// MemorySubscribers keeps newsletter subscribers in process memory. The
// duplicate-email check runs under the write lock, so concurrent subscribes
// can't both succeed.
type MemorySubscribers struct {
	mu          sync.RWMutex
	subscribers map[int]model.Subscriber
	nextID      int
}

var _ SubscriberRepository = (*MemorySubscribers)(nil)

func NewMemorySubscribers() *MemorySubscribers {
	return &MemorySubscribers{
		subscribers: make(map[int]model.Subscriber),
		nextID:      1,
	}
}

func (m *MemorySubscribers) GetByEmail(email string) (*model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, subscriber := range m.subscribers {
		if subscriber.Email == email {
			subscriber := subscriber
			return &subscriber, nil
		}
	}

	return nil, ErrNotFound
}

func (m *MemorySubscribers) Create(subscriber *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.subscribers {
		if existing.Email == subscriber.Email {
			return ErrAlreadyExists
		}
	}

	subscriber.ID = m.nextID
	m.nextID++
	subscriber.CreatedAt = time.Now().UTC()

	m.subscribers[subscriber.ID] = *subscriber
	return nil
}

func (m *MemorySubscribers) All() ([]model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subscribers := make([]model.Subscriber, 0, len(m.subscribers))
	for _, subscriber := range m.subscribers {
		subscribers = append(subscribers, subscriber)
	}

	sort.Slice(subscribers, func(i, j int) bool {
		return subscribers[i].ID < subscribers[j].ID
	})

	return subscribers, nil
}
