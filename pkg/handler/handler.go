// Package handler exposes the read endpoints the site renders from, plus the
// newsletter subscribe endpoint.
package handler

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/reelpage/reelpage/pkg/model"
	"github.com/reelpage/reelpage/pkg/store"
	"github.com/reelpage/reelpage/pkg/youtube"
)

// The featured listing is capped here, not in the store.
const maxFeaturedVideos = 6

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type statsProvider interface {
	ChannelStats(ctx context.Context) (*youtube.ChannelStats, error)
}

type handler struct {
	videos      store.VideoRepository
	subscribers store.SubscriberRepository
	stats       statsProvider
}

func New(videos store.VideoRepository, subscribers store.SubscriberRepository, stats statsProvider) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	h := handler{
		videos:      videos,
		subscribers: subscribers,
		stats:       stats,
	}

	r.GET("/api/ping", h.ping)

	r.GET("/api/videos/showreel", h.showreel)
	r.GET("/api/videos/featured", h.featured)
	r.GET("/api/videos/all", h.all)
	r.GET("/api/videos/longest", h.longest)
	r.GET("/api/videos/category/:category", h.byCategory)
	r.GET("/api/videos/:id", h.byID)

	r.GET("/api/channel/stats", h.channelStats)

	r.POST("/api/newsletter/subscribe", h.subscribe)

	return r
}

func (h handler) ping(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h handler) showreel(c *gin.Context) {
	video, err := h.videos.Showreel()
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "Showreel not found"})
		return
	} else if err != nil {
		internalError(c, err, "Failed to fetch showreel")
		return
	}

	c.JSON(http.StatusOK, gin.H{"videoId": video.VideoID})
}

func (h handler) featured(c *gin.Context) {
	videos, err := h.videos.Featured()
	if err != nil {
		internalError(c, err, "Failed to fetch featured videos")
		return
	}

	if len(videos) > maxFeaturedVideos {
		videos = videos[:maxFeaturedVideos]
	}

	c.JSON(http.StatusOK, videos)
}

func (h handler) all(c *gin.Context) {
	videos, err := h.videos.All()
	if err != nil {
		internalError(c, err, "Failed to fetch all videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (h handler) byCategory(c *gin.Context) {
	videos, err := h.videos.ByCategory(c.Param("category"))
	if err != nil {
		internalError(c, err, "Failed to fetch videos by category")
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (h handler) longest(c *gin.Context) {
	video, err := h.videos.Longest()
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "No videos found"})
		return
	} else if err != nil {
		internalError(c, err, "Failed to fetch longest video")
		return
	}

	c.JSON(http.StatusOK, video)
}

func (h handler) byID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid video ID"})
		return
	}

	video, err := h.videos.GetByID(id)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "Video not found"})
		return
	} else if err != nil {
		internalError(c, err, "Failed to fetch video")
		return
	}

	c.JSON(http.StatusOK, video)
}

type subscribeRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ConsentGiven *bool  `json:"consentGiven"`
}

func (h handler) subscribe(c *gin.Context) {
	req := subscribeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and email are required"})
		return
	}

	if !emailRe.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email address"})
		return
	}

	if _, err := h.subscribers.GetByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already subscribed"})
		return
	} else if err != store.ErrNotFound {
		internalError(c, err, "Failed to subscribe to newsletter")
		return
	}

	subscriber := &model.Subscriber{
		Name:         req.Name,
		Email:        req.Email,
		ConsentGiven: true,
	}
	if req.ConsentGiven != nil {
		subscriber.ConsentGiven = *req.ConsentGiven
	}

	err := h.subscribers.Create(subscriber)
	if err == store.ErrAlreadyExists {
		// Lost the race against a concurrent subscribe.
		c.JSON(http.StatusConflict, gin.H{"message": "Email already subscribed"})
		return
	} else if err != nil {
		internalError(c, err, "Failed to subscribe to newsletter")
		return
	}

	c.JSON(http.StatusCreated, subscriber)
}

func (h handler) channelStats(c *gin.Context) {
	stats, err := h.stats.ChannelStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to fetch channel statistics")
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to fetch channel statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// internalError logs the cause server side and returns a generic message,
// upstream detail never reaches the client.
func internalError(c *gin.Context, err error, message string) {
	log.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"message": message})
}
