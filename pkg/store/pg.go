package store

import (
	"time"

	"github.com/go-pg/pg"
	"github.com/pkg/errors"

	"github.com/reelpage/reelpage/pkg/model"
)

// Pg holds the shared Postgres connection and hands out repositories bound
// to it. The table structure is installed on connect.
type Pg struct {
	db *pg.DB
}

func NewPg(connectionURL string) (*Pg, error) {
	opts, err := pg.ParseURL(connectionURL)
	if err != nil {
		return nil, err
	}

	db := pg.Connect(opts)

	// Check database connectivity
	if _, err := db.ExecOne("SELECT 1"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to check database connectivity")
	}

	if _, err := db.Exec(installScript); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to install database structure")
	}

	return &Pg{db: db}, nil
}

func (p *Pg) Videos() *PgVideos {
	return &PgVideos{db: p.db}
}

func (p *Pg) Subscribers() *PgSubscribers {
	return &PgSubscribers{db: p.db}
}

func (p *Pg) Close() error {
	return p.db.Close()
}

type PgVideos struct {
	db *pg.DB
}

var _ VideoRepository = (*PgVideos)(nil)

func (p *PgVideos) GetByID(id int) (*model.Video, error) {
	video := &model.Video{}
	err := p.db.Model(video).Where("id = ?", id).Select()
	if err == pg.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query video by id")
	}

	return video, nil
}

func (p *PgVideos) GetByVideoID(videoID string) (*model.Video, error) {
	video := &model.Video{}
	err := p.db.Model(video).Where("video_id = ?", videoID).Select()
	if err == pg.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query video by external id")
	}

	return video, nil
}

func (p *PgVideos) Showreel() (*model.Video, error) {
	// Fallback chain: the flagged record, else the newest featured one,
	// else the newest record at all.
	for _, cond := range []struct {
		column string
		apply  bool
	}{
		{"showreel", true},
		{"featured", true},
		{"", false},
	} {
		video := &model.Video{}
		q := p.db.Model(video).Order("published_at DESC").Limit(1)
		if cond.apply {
			q = q.Where(cond.column+" = ?", true)
		}

		err := q.Select()
		if err == pg.ErrNoRows {
			continue
		} else if err != nil {
			return nil, errors.Wrap(err, "failed to query showreel")
		}

		return video, nil
	}

	return nil, ErrNotFound
}

func (p *PgVideos) Featured() ([]model.Video, error) {
	videos := []model.Video{}
	err := p.db.Model(&videos).Where("featured = ?", true).Order("published_at DESC").Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query featured videos")
	}

	return videos, nil
}

func (p *PgVideos) All() ([]model.Video, error) {
	videos := []model.Video{}
	err := p.db.Model(&videos).Order("published_at DESC").Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query videos")
	}

	return videos, nil
}

func (p *PgVideos) ByCategory(category string) ([]model.Video, error) {
	if category == model.CategoryAll {
		return p.All()
	}

	videos := []model.Video{}
	err := p.db.Model(&videos).Where("category = ?", category).Order("published_at DESC").Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query videos by category")
	}

	return videos, nil
}

func (p *PgVideos) Longest() (*model.Video, error) {
	video := &model.Video{}
	err := p.db.Model(video).Order("duration_seconds DESC").Limit(1).Select()
	if err == pg.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query longest video")
	}

	return video, nil
}

func (p *PgVideos) Create(video *model.Video) error {
	_, err := p.db.Model(video).Insert()
	if isIntegrityViolation(err) {
		return ErrAlreadyExists
	} else if err != nil {
		return errors.Wrap(err, "failed to create video")
	}

	return nil
}

func (p *PgVideos) Update(id int, patch VideoPatch) (*model.Video, error) {
	video := &model.Video{}
	q := p.db.Model(video).Where("id = ?", id).Returning("*")

	touched := false
	set := func(column string, value interface{}) {
		q = q.Set(column+" = ?", value)
		touched = true
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.ThumbnailURL != nil {
		set("thumbnail_url", *patch.ThumbnailURL)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Duration != nil {
		set("duration", *patch.Duration)
	}
	if patch.DurationSeconds != nil {
		set("duration_seconds", *patch.DurationSeconds)
	}
	if patch.ViewCount != nil {
		set("view_count", *patch.ViewCount)
	}
	if patch.Featured != nil {
		set("featured", *patch.Featured)
	}
	if patch.Showreel != nil {
		set("showreel", *patch.Showreel)
	}
	if patch.PublishedAt != nil {
		set("published_at", *patch.PublishedAt)
	}

	if !touched {
		return p.GetByID(id)
	}

	res, err := q.Update()
	if err != nil {
		return nil, errors.Wrap(err, "failed to update video")
	}

	if res.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return video, nil
}

type PgSubscribers struct {
	db *pg.DB
}

var _ SubscriberRepository = (*PgSubscribers)(nil)

func (p *PgSubscribers) GetByEmail(email string) (*model.Subscriber, error) {
	subscriber := &model.Subscriber{}
	err := p.db.Model(subscriber).Where("email = ?", email).Select()
	if err == pg.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query subscriber by email")
	}

	return subscriber, nil
}

func (p *PgSubscribers) Create(subscriber *model.Subscriber) error {
	if subscriber.CreatedAt.IsZero() {
		subscriber.CreatedAt = time.Now().UTC()
	}

	_, err := p.db.Model(subscriber).Insert()
	if isIntegrityViolation(err) {
		// UNIQUE (email) closes the check-then-insert race.
		return ErrAlreadyExists
	} else if err != nil {
		return errors.Wrap(err, "failed to create subscriber")
	}

	return nil
}

func (p *PgSubscribers) All() ([]model.Subscriber, error) {
	subscribers := []model.Subscriber{}
	err := p.db.Model(&subscribers).Order("id ASC").Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query subscribers")
	}

	return subscribers, nil
}

func isIntegrityViolation(err error) bool {
	pgErr, ok := err.(pg.Error)
	return ok && pgErr.IntegrityViolation()
}
