package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelpage/reelpage/pkg/model"
	"github.com/reelpage/reelpage/pkg/store"
	"github.com/reelpage/reelpage/pkg/youtube"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStats struct {
	stats *youtube.ChannelStats
	err   error
}

func (f *fakeStats) ChannelStats(context.Context) (*youtube.ChannelStats, error) {
	return f.stats, f.err
}

type env struct {
	videos      *store.MemoryVideos
	subscribers *store.MemorySubscribers
	stats       *fakeStats
	router      http.Handler
}

func newEnv() *env {
	e := &env{
		videos:      store.NewMemoryVideos(),
		subscribers: store.NewMemorySubscribers(),
		stats:       &fakeStats{stats: &youtube.ChannelStats{Subscribers: 1200, Views: 34000, Videos: 42}},
	}
	e.router = New(e.videos, e.subscribers, e.stats)
	return e
}

func (e *env) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) addVideo(t *testing.T, v model.Video) model.Video {
	t.Helper()

	if v.Title == "" {
		v.Title = "Video " + v.VideoID
	}
	if v.ThumbnailURL == "" {
		v.ThumbnailURL = "https://i.ytimg.com/vi/" + v.VideoID + "/maxresdefault.jpg"
	}
	if v.Category == "" {
		v.Category = model.CategoryAnimation
	}
	if v.PublishedAt.IsZero() {
		v.PublishedAt = time.Now().UTC()
	}

	require.NoError(t, e.videos.Create(&v))
	return v
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestPing(t *testing.T) {
	e := newEnv()

	w := e.get(t, "/api/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestShowreel(t *testing.T) {
	e := newEnv()

	w := e.get(t, "/api/videos/showreel")
	assert.Equal(t, http.StatusNotFound, w.Code)

	e.addVideo(t, model.Video{VideoID: "reel1", Showreel: true})

	w = e.get(t, "/api/videos/showreel")
	require.Equal(t, http.StatusOK, w.Code)

	body := map[string]string{}
	decode(t, w, &body)
	assert.Equal(t, "reel1", body["videoId"])
}

func TestFeaturedTruncatedToSix(t *testing.T) {
	e := newEnv()

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		e.addVideo(t, model.Video{
			VideoID:     "feat" + string(rune('a'+i)),
			Featured:    true,
			PublishedAt: base.AddDate(0, 0, i),
		})
	}

	w := e.get(t, "/api/videos/featured")
	require.Equal(t, http.StatusOK, w.Code)

	videos := []model.Video{}
	decode(t, w, &videos)
	require.Len(t, videos, 6)

	// Newest first, capped at the serving layer.
	assert.Equal(t, "feath", videos[0].VideoID)
	for i := 1; i < len(videos); i++ {
		assert.False(t, videos[i].PublishedAt.After(videos[i-1].PublishedAt))
	}
}

func TestAllVideos(t *testing.T) {
	e := newEnv()

	e.addVideo(t, model.Video{VideoID: "a1", PublishedAt: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)})
	e.addVideo(t, model.Video{VideoID: "b2", PublishedAt: time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC)})

	w := e.get(t, "/api/videos/all")
	require.Equal(t, http.StatusOK, w.Code)

	videos := []model.Video{}
	decode(t, w, &videos)
	require.Len(t, videos, 2)
	assert.Equal(t, "b2", videos[0].VideoID)

	// The wire format is camelCase.
	assert.Contains(t, w.Body.String(), `"videoId"`)
	assert.Contains(t, w.Body.String(), `"thumbnailUrl"`)
	assert.Contains(t, w.Body.String(), `"publishedAt"`)
	assert.NotContains(t, w.Body.String(), `"durationSeconds"`)
}

func TestVideosByCategory(t *testing.T) {
	e := newEnv()

	e.addVideo(t, model.Video{VideoID: "char1", Category: model.CategoryCharacter})
	e.addVideo(t, model.Video{VideoID: "mg1", Category: model.CategoryMotionGraphics})

	w := e.get(t, "/api/videos/category/Character")
	require.Equal(t, http.StatusOK, w.Code)

	videos := []model.Video{}
	decode(t, w, &videos)
	require.Len(t, videos, 1)
	assert.Equal(t, "char1", videos[0].VideoID)

	w = e.get(t, "/api/videos/category/All")
	require.Equal(t, http.StatusOK, w.Code)

	videos = []model.Video{}
	decode(t, w, &videos)
	assert.Len(t, videos, 2)
}

func TestLongestVideo(t *testing.T) {
	e := newEnv()

	w := e.get(t, "/api/videos/longest")
	assert.Equal(t, http.StatusNotFound, w.Code)

	e.addVideo(t, model.Video{VideoID: "a", Duration: "3:24", DurationSeconds: 204})
	e.addVideo(t, model.Video{VideoID: "b", Duration: "1:02:03", DurationSeconds: 3723})
	e.addVideo(t, model.Video{VideoID: "c", Duration: "0:45", DurationSeconds: 45})

	w = e.get(t, "/api/videos/longest")
	require.Equal(t, http.StatusOK, w.Code)

	video := model.Video{}
	decode(t, w, &video)
	assert.Equal(t, "1:02:03", video.Duration)
}

func TestVideoByID(t *testing.T) {
	e := newEnv()

	w := e.get(t, "/api/videos/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.get(t, "/api/videos/42")
	assert.Equal(t, http.StatusNotFound, w.Code)

	added := e.addVideo(t, model.Video{VideoID: "a1"})

	w = e.get(t, "/api/videos/1")
	require.Equal(t, http.StatusOK, w.Code)

	video := model.Video{}
	decode(t, w, &video)
	assert.Equal(t, added.VideoID, video.VideoID)
}

func TestSubscribe(t *testing.T) {
	e := newEnv()

	w := e.post(t, "/api/newsletter/subscribe", `{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	subscriber := model.Subscriber{}
	decode(t, w, &subscriber)
	assert.Equal(t, "jane@example.com", subscriber.Email)
	assert.True(t, subscriber.ConsentGiven)
	assert.NotZero(t, subscriber.ID)

	// Same email twice: 201 then 409, never two 201s.
	w = e.post(t, "/api/newsletter/subscribe", `{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already subscribed")
}

func TestSubscribeValidation(t *testing.T) {
	e := newEnv()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"jane@example.com"}`},
		{"missing email", `{"name":"Jane"}`},
		{"malformed email", `{"name":"Jane","email":"not-an-email"}`},
		{"email without tld", `{"name":"Jane","email":"jane@example"}`},
		{"broken json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.post(t, "/api/newsletter/subscribe", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	all, err := e.subscribers.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubscribeExplicitConsent(t *testing.T) {
	e := newEnv()

	w := e.post(t, "/api/newsletter/subscribe", `{"name":"Joe","email":"joe@example.com","consentGiven":false}`)
	require.Equal(t, http.StatusCreated, w.Code)

	subscriber := model.Subscriber{}
	decode(t, w, &subscriber)
	assert.False(t, subscriber.ConsentGiven)
}

func TestChannelStats(t *testing.T) {
	e := newEnv()

	w := e.get(t, "/api/channel/stats")
	require.Equal(t, http.StatusOK, w.Code)

	stats := youtube.ChannelStats{}
	decode(t, w, &stats)
	assert.EqualValues(t, 1200, stats.Subscribers)

	e.stats.stats, e.stats.err = nil, errors.New("upstream down")

	w = e.get(t, "/api/channel/stats")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "upstream down")
}
