package model

import "time"

// Video is a single published video synced from the channel.
// Duration keeps the display form ("3:24", "1:02:03") the frontend renders,
// DurationSeconds the canonical value used for ranking.
type Video struct {
	ID              int       `json:"id"`
	VideoID         string    `json:"videoId" sql:",notnull"`
	Title           string    `json:"title" sql:",notnull"`
	Description     string    `json:"description,omitempty"`
	ThumbnailURL    string    `json:"thumbnailUrl" sql:",notnull"`
	Category        string    `json:"category" sql:",notnull"`
	Duration        string    `json:"duration" sql:",notnull"`
	DurationSeconds int       `json:"-" sql:",notnull"`
	ViewCount       int       `json:"viewCount" sql:",notnull"`
	Featured        bool      `json:"featured" sql:",notnull"`
	Showreel        bool      `json:"showreel" sql:",notnull"`
	PublishedAt     time.Time `json:"publishedAt"`
}

// Subscriber is a newsletter opt-in. Email is unique.
type Subscriber struct {
	ID           int       `json:"id"`
	Name         string    `json:"name" sql:",notnull"`
	Email        string    `json:"email" sql:",notnull"`
	ConsentGiven bool      `json:"consentGiven" sql:",notnull"`
	CreatedAt    time.Time `json:"createdAt"`
}
