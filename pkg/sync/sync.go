// Package sync reconciles locally stored video metadata against the
// channel's catalog on the video platform.
package sync

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/reelpage/reelpage/pkg/cache"
	"github.com/reelpage/reelpage/pkg/duration"
	"github.com/reelpage/reelpage/pkg/model"
	"github.com/reelpage/reelpage/pkg/store"
	"github.com/reelpage/reelpage/pkg/youtube"
)

const uploadsCacheKey = "youtube/uploads"

// Source lists the channel's uploads and the platform's category taxonomy.
type Source interface {
	Uploads(ctx context.Context) ([]youtube.Video, error)
	Categories(ctx context.Context) (map[string]string, error)
}

// Syncer inserts videos the store hasn't seen yet, keyed by the platform's
// video id. Already known videos are left untouched. Fetched upload lists
// are kept in the cache for ttl, so a re-sync inside that window doesn't
// call the platform again.
type Syncer struct {
	source Source
	videos store.VideoRepository
	cache  cache.Cache
	ttl    time.Duration
}

func New(source Source, videos store.VideoRepository, c cache.Cache, ttl time.Duration) *Syncer {
	return &Syncer{source: source, videos: videos, cache: c, ttl: ttl}
}

// Sync runs one reconciliation pass. Errors abort the pass but keep records
// inserted so far, each insert is independently durable.
func (s *Syncer) Sync(ctx context.Context) error {
	remote, err := s.fetchUploads(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch channel uploads")
	}

	if len(remote) == 0 {
		log.Info("no videos found, skipping sync")
		return nil
	}

	taxonomy, err := s.source.Categories(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch category taxonomy")
	}

	existing, err := s.videos.All()
	if err != nil {
		return errors.Wrap(err, "failed to list stored videos")
	}

	known := make(map[string]struct{}, len(existing))
	hasShowreel := false
	for _, video := range existing {
		known[video.VideoID] = struct{}{}
		if video.Showreel {
			hasShowreel = true
		}
	}

	added := 0
	for _, item := range remote {
		if _, ok := known[item.ID]; ok {
			continue
		}

		video := s.convert(item, taxonomy)

		// The first video ever synced becomes the default showreel.
		if !hasShowreel {
			video.Showreel = true
			video.Featured = true
			hasShowreel = true
		}

		if err := s.videos.Create(video); err != nil {
			return errors.Wrapf(err, "failed to store video %s", item.ID)
		}

		known[item.ID] = struct{}{}
		added++

		log.WithFields(log.Fields{
			"video_id": video.VideoID,
			"title":    video.Title,
			"category": video.Category,
		}).Info("added video")
	}

	log.WithFields(log.Fields{"fetched": len(remote), "added": added}).Info("sync completed")
	return nil
}

func (s *Syncer) convert(item youtube.Video, taxonomy map[string]string) *model.Video {
	seconds, err := duration.FromISO8601(item.Duration)
	if err != nil {
		// Degrade to 0:00 so one odd duration doesn't abort the run.
		log.WithError(err).WithField("video_id", item.ID).Warn("unparseable video duration")
		seconds = 0
	}

	return &model.Video{
		VideoID:         item.ID,
		Title:           item.Title,
		Description:     item.Description,
		ThumbnailURL:    item.ThumbnailURL,
		Category:        model.MapCategory(item.CategoryID, taxonomy),
		Duration:        duration.FormatSeconds(seconds),
		DurationSeconds: seconds,
		ViewCount:       item.ViewCount,
		PublishedAt:     item.PublishedAt,
	}
}

func (s *Syncer) fetchUploads(ctx context.Context) ([]youtube.Video, error) {
	videos := []youtube.Video{}

	err := s.cache.GetItem(uploadsCacheKey, &videos)
	if err == nil {
		log.Debug("using cached video list")
		return videos, nil
	}

	if err != cache.ErrNotFound {
		log.WithError(err).Warn("failed to read video list from cache")
	}

	videos, err = s.source.Uploads(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SaveItem(uploadsCacheKey, videos, s.ttl); err != nil {
		log.WithError(err).Warn("failed to cache video list")
	}

	return videos, nil
}
