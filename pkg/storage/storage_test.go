package storage

import (
	"context"
	"strings"
	"testing"

	"watch-list/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageKeyIsContentAddressed(t *testing.T) {
	key := ImageKey("movie", "6b1d", "poster", []byte("one"))
	assert.True(t, strings.HasPrefix(key, "images/movie/6b1d/poster-"))
	assert.True(t, strings.HasSuffix(key, ".webp"))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, "images/movie/6b1d/poster-"), ".webp"), 12)

	assert.Equal(t, key, ImageKey("movie", "6b1d", "poster", []byte("one")))
	assert.NotEqual(t, key, ImageKey("movie", "6b1d", "poster", []byte("two")))
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), utils.StorageConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPublicURLAndKeyFromURL(t *testing.T) {
	client, err := NewClient(context.Background(), utils.StorageConfig{
		Endpoint:       "minio:9000",
		Region:         "us-east-1",
		Bucket:         "media",
		AccessKey:      "key",
		SecretKey:      "secret",
		DisableTLS:     true,
		ForcePathStyle: true,
	})
	require.NoError(t, err)

	url := client.PublicURL("images/tv/1/backdrop-abc.webp")
	assert.Equal(t, "http://minio:9000/media/images/tv/1/backdrop-abc.webp", url)

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "images/tv/1/backdrop-abc.webp", key)

	_, ok = client.KeyFromURL("https://image.tmdb.org/t/p/original/abc.jpg")
	assert.False(t, ok)
}

func TestPublicURLOverride(t *testing.T) {
	client, err := NewClient(context.Background(), utils.StorageConfig{
		Region:    "us-east-1",
		Bucket:    "media",
		PublicURL: "https://cdn.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/a.webp", client.PublicURL("images/a.webp"))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "", normalizeEndpoint("  ", false))
	assert.Equal(t, "https://oss.example.com", normalizeEndpoint("oss.example.com/", false))
	assert.Equal(t, "http://localhost:9000", normalizeEndpoint("localhost:9000", true))
	assert.Equal(t, "http://already:1", normalizeEndpoint("http://already:1", false))
}

func TestEncodeSHA256(t *testing.T) {
	_, err := encodeSHA256("")
	assert.Error(t, err)
	_, err = encodeSHA256("zz")
	assert.Error(t, err)

	encoded, err := encodeSHA256("00ff")
	require.NoError(t, err)
	assert.Equal(t, "AP8=", encoded)
}

func TestDefaultPublicURL_AWS(t *testing.T) {
	client, err := NewClient(context.Background(), utils.StorageConfig{
		Region: "eu-west-1",
		Bucket: "media",
	})
	require.NoError(t, err)

	url := client.PublicURL(ImageKey("movie", "id", "poster", []byte("p")))
	assert.True(t, strings.HasPrefix(url, "https://media.s3.eu-west-1.amazonaws.com/images/movie/id/poster-"), url)

	// stored URLs must map back to their key or cleanup would treat them as orphans
	key, ok := client.KeyFromURL(url)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "images/movie/id/poster-"))
}

func TestDefaultPublicURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		cfg      utils.StorageConfig
		want     string
	}{
		{"virtual hosted", "", utils.StorageConfig{Bucket: "media", Region: "us-east-2"}, "https://media.s3.us-east-2.amazonaws.com"},
		{"path style", "", utils.StorageConfig{Bucket: "media", Region: "us-east-2", ForcePathStyle: true}, "https://s3.us-east-2.amazonaws.com/media"},
		{"missing region", "", utils.StorageConfig{Bucket: "media"}, "https://media.s3.us-east-1.amazonaws.com"},
		{"custom endpoint", "http://minio:9000", utils.StorageConfig{Bucket: "media"}, "http://minio:9000/media"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultPublicURL(tt.endpoint, tt.cfg))
		})
	}
}
