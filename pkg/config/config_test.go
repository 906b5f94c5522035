package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	const file = `
[server]
port = 8080

[database]
backend = "postgres"
postgres_url = "postgres://postgres:@localhost/reelpage?sslmode=disable"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379"
ttl = "30m"

[youtube]
api_key = "123"
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
page_size = 25
update_schedule = "@every 6h"
`

	config, err := LoadConfig(writeConfig(t, file))
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.EqualValues(t, 8080, config.Server.Port)

	assert.Equal(t, BackendPostgres, config.Database.Backend)
	assert.Equal(t, "postgres://postgres:@localhost/reelpage?sslmode=disable", config.Database.PostgresURL)

	assert.Equal(t, BackendRedis, config.Cache.Backend)
	assert.Equal(t, "redis://localhost:6379", config.Cache.RedisURL)
	assert.Equal(t, 30*time.Minute, config.Cache.TTL.Duration)

	assert.Equal(t, "123", config.YouTube.APIKey)
	assert.Equal(t, "UC_WllVNTkI50BEXRYkmVGRw", config.YouTube.ChannelID)
	assert.Equal(t, 25, config.YouTube.PageSize)
	assert.Equal(t, "@every 6h", config.YouTube.UpdateSchedule)
}

func TestApplyDefaults(t *testing.T) {
	const file = `
[youtube]
api_key = "123"
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
`

	config, err := LoadConfig(writeConfig(t, file))
	require.NoError(t, err)

	assert.EqualValues(t, 5000, config.Server.Port)
	assert.Equal(t, BackendMemory, config.Database.Backend)
	assert.Equal(t, BackendMemory, config.Cache.Backend)
	assert.Equal(t, time.Hour, config.Cache.TTL.Duration)
	assert.Equal(t, 50, config.YouTube.PageSize)
	assert.Empty(t, config.YouTube.UpdateSchedule)
}

func TestPageSizeClamped(t *testing.T) {
	const file = `
[youtube]
api_key = "123"
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
page_size = 500
`

	config, err := LoadConfig(writeConfig(t, file))
	require.NoError(t, err)

	assert.Equal(t, 50, config.YouTube.PageSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"missing api key", `
[youtube]
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
`},
		{"missing channel id", `
[youtube]
api_key = "123"
`},
		{"postgres backend without url", `
[database]
backend = "postgres"

[youtube]
api_key = "123"
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
`},
		{"redis cache without url", `
[cache]
backend = "redis"

[youtube]
api_key = "123"
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
`},
		{"unknown database backend", `
[database]
backend = "mongo"

[youtube]
api_key = "123"
channel_id = "UC_WllVNTkI50BEXRYkmVGRw"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file))
			assert.Error(t, err)
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "config-*.toml")
	require.NoError(t, err)

	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	return f.Name()
}
