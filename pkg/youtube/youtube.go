// Package youtube wraps the parts of the YouTube Data API the sync job and
// the stats endpoint need. All calls are read-only and quota-priced, so the
// uploads listing is a single bounded page, not full pagination.
package youtube

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

var ErrNotFound = errors.New("not found")

const maxPageSize = 50

// Video is one uploaded video as the platform reports it. Duration is the
// raw ISO 8601 period ("PT3M24S").
type Video struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	CategoryID   string
	Duration     string
	ViewCount    int
	PublishedAt  time.Time
}

type ChannelStats struct {
	Subscribers uint64 `json:"subscribers"`
	Views       uint64 `json:"views"`
	Videos      uint64 `json:"videos"`
}

type Client struct {
	service   *youtube.Service
	channelID string
	pageSize  int64
}

func NewClient(ctx context.Context, apiKey, channelID string, pageSize int) (*Client, error) {
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create youtube client")
	}

	return &Client{service: service, channelID: channelID, pageSize: int64(pageSize)}, nil
}

// Uploads returns up to one page of the channel's most recent uploads with
// snippet, contentDetails and statistics populated.
//
// Cost: 1 (channels) + 1 (playlistItems) + 1 (videos) quota units per call.
func (c *Client) Uploads(ctx context.Context) ([]Video, error) {
	uploadsID, err := c.uploadsPlaylistID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := c.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(uploadsID).
		MaxResults(c.pageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query playlist items")
	}

	ids := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		ids = append(ids, item.Snippet.ResourceId.VideoId)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query video details")
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		video, err := convertVideo(item)
		if err != nil {
			return nil, err
		}

		videos = append(videos, video)
	}

	return videos, nil
}

// Categories returns the platform's category id to name taxonomy.
func (c *Client) Categories(ctx context.Context) (map[string]string, error) {
	resp, err := c.service.VideoCategories.List([]string{"snippet"}).
		RegionCode("US").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query video categories")
	}

	taxonomy := make(map[string]string, len(resp.Items))
	for _, item := range resp.Items {
		taxonomy[item.Id] = item.Snippet.Title
	}

	return taxonomy, nil
}

// ChannelStats returns subscriber, view and video counts for the channel.
func (c *Client) ChannelStats(ctx context.Context) (*ChannelStats, error) {
	resp, err := c.service.Channels.List([]string{"statistics"}).
		Id(c.channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query channel statistics")
	}

	if len(resp.Items) == 0 || resp.Items[0].Statistics == nil {
		return nil, ErrNotFound
	}

	stats := resp.Items[0].Statistics
	return &ChannelStats{
		Subscribers: stats.SubscriberCount,
		Views:       stats.ViewCount,
		Videos:      stats.VideoCount,
	}, nil
}

func (c *Client) uploadsPlaylistID(ctx context.Context) (string, error) {
	resp, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(c.channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "failed to query channel")
	}

	if len(resp.Items) == 0 {
		return "", ErrNotFound
	}

	uploadsID := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploadsID == "" {
		return "", errors.New("channel has no uploads playlist")
	}

	return uploadsID, nil
}

func convertVideo(item *youtube.Video) (Video, error) {
	snippet := item.Snippet

	publishedAt, err := time.Parse(time.RFC3339, snippet.PublishedAt)
	if err != nil {
		return Video{}, errors.Wrapf(err, "failed to parse video publish date: %s", snippet.PublishedAt)
	}

	video := Video{
		ID:           item.Id,
		Title:        snippet.Title,
		Description:  snippet.Description,
		ThumbnailURL: selectThumbnail(snippet.Thumbnails),
		CategoryID:   snippet.CategoryId,
		PublishedAt:  publishedAt,
	}

	if item.ContentDetails != nil {
		video.Duration = item.ContentDetails.Duration
	}

	if item.Statistics != nil {
		video.ViewCount = int(item.Statistics.ViewCount)
	}

	return video, nil
}

// Prefer higher resolution variants when the platform provides them.
func selectThumbnail(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}

	if details.Maxres != nil {
		return details.Maxres.Url
	}

	if details.High != nil {
		return details.High.Url
	}

	if details.Medium != nil {
		return details.Medium.Url
	}

	if details.Default != nil {
		return details.Default.Url
	}

	return ""
}
