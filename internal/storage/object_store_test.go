package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mk3hierros/internal/config"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey(12, "jpeg")
	require.True(t, strings.HasPrefix(key, "works/12/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpeg"), key)
	assert.NotEqual(t, key, ObjectKey(12, "jpeg"))

	bare := ObjectKey(3, "")
	assert.NotContains(t, strings.TrimPrefix(bare, "works/3/"), ".")
}

func TestNewObjectStoreParsesSchemeFromEndpoint(t *testing.T) {
	store, err := NewObjectStore(config.StorageConfig{
		Endpoint:  "https://minio.internal:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "mk3-work-images",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", store.client.EndpointURL().Host)
	assert.Equal(t, "https", store.client.EndpointURL().Scheme)
}
