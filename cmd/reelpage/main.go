package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/reelpage/reelpage/pkg/cache"
	"github.com/reelpage/reelpage/pkg/config"
	"github.com/reelpage/reelpage/pkg/handler"
	"github.com/reelpage/reelpage/pkg/store"
	"github.com/reelpage/reelpage/pkg/sync"
	"github.com/reelpage/reelpage/pkg/youtube"
)

type Opts struct {
	ConfigPath string `long:"config" short:"c" default:"config.toml" env:"REELPAGE_CONFIG_PATH"`
	Debug      bool   `long:"debug"`
}

var (
	version = "dev"
	commit  = "none"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	// Parse args
	opts := Opts{}
	if _, err := flags.Parse(&opts); err != nil {
		log.WithError(err).Fatal("failed to parse command line arguments")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
	}).Info("running reelpage")

	// Load TOML file
	log.Debugf("loading configuration %q", opts.ConfigPath)
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration file")
	}

	// Stores
	videos, subscribers, closeStore, err := buildStores(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create store")
	}
	defer closeStore()

	// Remote fetch cache
	fetchCache, err := buildCache(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create cache")
	}
	defer fetchCache.Close()

	// YouTube client and sync job
	source, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, cfg.YouTube.ChannelID, cfg.YouTube.PageSize)
	if err != nil {
		log.WithError(err).Fatal("failed to create youtube client")
	}

	syncer := sync.New(source, videos, fetchCache, cfg.Cache.TTL.Duration)

	group.Go(func() error {
		// Initial sync. Failures are logged only, the server keeps
		// serving whatever was last persisted.
		if err := syncer.Sync(ctx); err != nil {
			log.WithError(err).Error("failed to sync videos")
		}
		return nil
	})

	if cfg.YouTube.UpdateSchedule != "" {
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

		if _, err := c.AddFunc(cfg.YouTube.UpdateSchedule, func() {
			if err := syncer.Sync(ctx); err != nil {
				log.WithError(err).Error("failed to sync videos")
			}
		}); err != nil {
			log.WithError(err).Fatal("invalid update schedule")
		}

		c.Start()

		group.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down cron")
			c.Stop()
			return ctx.Err()
		})
	}

	// Web server
	srv := http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.New(videos, subscribers, source),
	}

	group.Go(func() error {
		log.Infof("running listener at %s", srv.Addr)
		return srv.ListenAndServe()
	})

	group.Go(func() error {
		defer func() {
			log.Info("shutting down web server")
			if err := srv.Shutdown(context.Background()); err != nil {
				log.WithError(err).Error("server shutdown failed")
			}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			cancel()
			return nil
		}
	})

	if err := group.Wait(); err != nil && err != context.Canceled && err != http.ErrServerClosed {
		log.WithError(err).Error("wait error")
	}

	log.Info("gracefully stopped")
}

func buildStores(cfg *config.Config) (store.VideoRepository, store.SubscriberRepository, func(), error) {
	switch cfg.Database.Backend {
	case config.BackendPostgres:
		db, err := store.NewPg(cfg.Database.PostgresURL)
		if err != nil {
			return nil, nil, nil, err
		}

		log.Info("using postgres store")
		return db.Videos(), db.Subscribers(), func() { db.Close() }, nil

	default:
		log.Info("using in-memory store")
		return store.NewMemoryVideos(), store.NewMemorySubscribers(), func() {}, nil
	}
}

func buildCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		log.Info("using redis cache")
		return cache.NewRedis(cfg.Cache.RedisURL)

	default:
		log.Info("using in-memory cache")
		return cache.NewMemory(), nil
	}
}
