package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDisabledByDefault(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())
	assert.Equal(t, 30*24*time.Hour, cfg.EventRetention)
	assert.Equal(t, 24*time.Hour, cfg.AttemptRetention)
}

func TestLoadConfigEnabledRequiresCredentials(t *testing.T) {
	t.Setenv("ARCHIVE_ENABLED", "true")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("ARCHIVE_S3_ACCESS_KEY_ID", "key")
	t.Setenv("ARCHIVE_S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("ARCHIVE_S3_BUCKET_NAME", "tablo-audit")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "tablo-audit", cfg.BucketName)
}

func TestEventObjectKey(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	at := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "webhook-events/2026/08/28/evt_123.json", cfg.EventObjectKey("evt_123", at))
}
