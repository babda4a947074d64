package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "MONGODB_URI", "CORS_ORIGINS", "BOOK_COURSES_SYNC", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 4000, c.Port)
	assert.Equal(t, ":4000", c.Addr())
	assert.Equal(t, "bolt://data/textbooks.db", c.DatabaseURL)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Equal(t, SyncAdditive, c.BookCoursesSync)
	assert.Equal(t, 24*time.Hour, c.LookupCacheTTL)
	assert.False(t, c.StorageEnabled())
	require.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "mongodb://localhost/textbooks")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOOKUP_TIMEOUT", "2s")
	t.Setenv("S3_BUCKET", "images")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "mongodb://localhost/textbooks", c.DatabaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.Equal(t, 2*time.Second, c.LookupTimeout)
	assert.True(t, c.StorageEnabled())
}

func TestFromEnv_BadValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("LOOKUP_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "LOOKUP_TIMEOUT")
}

func TestValidate_CollectsEverything(t *testing.T) {
	c := &Config{
		Port:            0,
		DatabaseURL:     "mysql://x",
		LogLevel:        "loud",
		MaxBodySize:     1,
		RateLimitRPS:    1,
		RateLimitBurst:  1,
		BookCoursesSync: "sometimes",
		AuditAt:         "25:00",
		AuditTZ:         "UTC",
	}
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "DATABASE_URL", "LOG_LEVEL", "BOOK_COURSES_SYNC", "AUDIT_AT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("03:30")
	require.NoError(t, err)
	assert.Equal(t, 3, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseClock("0330")
	assert.Error(t, err)
}

func TestWarnings(t *testing.T) {
	c := &Config{AppEnv: "development", DatabaseURL: "bolt://x.db"}
	assert.Empty(t, c.Warnings())

	c = &Config{
		AppEnv:      "production",
		DatabaseURL: "bolt://x.db",
		RedisURL:    "redis://cache:6379",
		CORSOrigins: []string{"https://a.example", "*"},
	}
	w := c.Warnings()
	require.Len(t, w, 4)
	assert.Contains(t, w[0], "bolt")
	assert.Contains(t, w[1], "rediss://")
	assert.Contains(t, w[2], "any origin")
	assert.Contains(t, w[3], "S3_BUCKET")

	c = &Config{AppEnv: "prod", DatabaseURL: "postgres://db/x", RedisURL: "rediss://cache:6379", S3Bucket: "b"}
	assert.Empty(t, c.Warnings())
}
