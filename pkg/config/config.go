package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Backend names selectable from the config file.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const (
	defaultPort     = 5000
	defaultPageSize = 50
	defaultCacheTTL = time.Hour

	maxPageSize = 50
)

type Server struct {
	// Port is a server port to listen to
	Port int `toml:"port"`
}

type Database struct {
	// Backend selects the video/subscriber store implementation,
	// "memory" or "postgres"
	Backend string `toml:"backend"`
	// PostgresURL is a connection string, required for the postgres backend
	PostgresURL string `toml:"postgres_url"`
}

type Cache struct {
	// Backend selects the remote fetch cache, "memory" or "redis"
	Backend string `toml:"backend"`
	// RedisURL is a connection string, required for the redis backend
	RedisURL string `toml:"redis_url"`
	// TTL is how long a fetched video list is served without calling
	// the YouTube API again. Format is "300ms", "1.5h" or "2h45m".
	TTL Duration `toml:"ttl"`
}

type YouTube struct {
	// APIKey is a YouTube Data API key.
	// See https://developers.google.com/youtube/registering_an_application
	APIKey string `toml:"api_key"`
	// ChannelID is the channel whose uploads are synced
	ChannelID string `toml:"channel_id"`
	// PageSize caps how many uploads are fetched per sync run (max 50).
	// NOTE: larger page sizes might drain your API quota.
	PageSize int `toml:"page_size"`
	// UpdateSchedule is a cron expression for periodic re-sync.
	// Empty means sync once at startup only.
	UpdateSchedule string `toml:"update_schedule"`
}

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Cache    Cache    `toml:"cache"`
	YouTube  YouTube  `toml:"youtube"`
}

// LoadConfig loads TOML configuration from a file path
func LoadConfig(path string) (*Config, error) {
	config := Config{}
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, errors.Wrap(err, "failed to load config file")
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.YouTube.APIKey == "" {
		result = multierror.Append(result, errors.New("youtube api key is required"))
	}

	if c.YouTube.ChannelID == "" {
		result = multierror.Append(result, errors.New("youtube channel id is required"))
	}

	switch c.Database.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.PostgresURL == "" {
			result = multierror.Append(result, errors.New("postgres url is required for the postgres backend"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unknown database backend %q", c.Database.Backend))
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			result = multierror.Append(result, errors.New("redis url is required for the redis backend"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unknown cache backend %q", c.Cache.Backend))
	}

	return result.ErrorOrNil()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}

	if c.Database.Backend == "" {
		c.Database.Backend = BackendMemory
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}

	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = defaultCacheTTL
	}

	if c.YouTube.PageSize == 0 {
		c.YouTube.PageSize = defaultPageSize
	}

	if c.YouTube.PageSize > maxPageSize {
		c.YouTube.PageSize = maxPageSize
	}
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}
