package offline_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/offline"
)

func setupCacheStore(t *testing.T) (*offline.CacheStore, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "cache-test-*")
	require.NoError(t, err)

	cache, err := offline.OpenCacheStore(tempDir, nil)
	require.NoError(t, err)

	cleanup := func() {
		cache.Close()
		os.RemoveAll(tempDir)
	}
	return cache, cleanup
}

func cssResponse(body string) *offline.CachedResponse {
	return &offline.CachedResponse{
		Status:   200,
		Header:   map[string]string{"Content-Type": "text/css"},
		Body:     []byte(body),
		StoredAt: time.Now(),
	}
}

func TestCacheStore_PutAndMatch(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	require.NoError(t, cache.EnsureBucket("static-1"))
	require.NoError(t, cache.Put("static-1", "/assets/app.css", cssResponse("body{margin:0}")))

	res, found, err := cache.Match("static-1", "/assets/app.css")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 200, res.Status)
	assert.Equal(t, "text/css", res.Header["Content-Type"])
	assert.Equal(t, "body{margin:0}", string(res.Body))
	assert.WithinDuration(t, time.Now(), res.StoredAt, 5*time.Second)
}

func TestCacheStore_Match_IgnoresQueryAndFragment(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	require.NoError(t, cache.Put("static-1", "/assets/app.js?v=1", cssResponse("a")))

	_, found, err := cache.Match("static-1", "/assets/app.js")
	require.NoError(t, err)
	assert.True(t, found, "entry stored with a query string should match without one")

	_, found, err = cache.Match("static-1", "/assets/app.js?cachebust=9#section")
	require.NoError(t, err)
	assert.True(t, found, "query and fragment on the lookup should be ignored")
}

func TestCacheStore_Match_MissIsNotAnError(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	res, found, err := cache.Match("static-1", "/never-stored")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, res)
}

func TestCacheStore_Buckets_ListsRegistered(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	require.NoError(t, cache.EnsureBucket("static-1"))
	require.NoError(t, cache.EnsureBucket("static-2"))
	require.NoError(t, cache.EnsureBucket("static-2")) // idempotent

	names, err := cache.Buckets()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"static-1", "static-2"}, names)
}

func TestCacheStore_DeleteBucket_SweepsEntries(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	require.NoError(t, cache.EnsureBucket("static-1"))
	require.NoError(t, cache.EnsureBucket("static-2"))
	require.NoError(t, cache.Put("static-1", "/a.css", cssResponse("a")))
	require.NoError(t, cache.Put("static-1", "/b.css", cssResponse("b")))
	require.NoError(t, cache.Put("static-2", "/a.css", cssResponse("a2")))

	removed, err := cache.DeleteBucket("static-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, found, err := cache.Match("static-1", "/a.css")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = cache.Match("static-2", "/a.css")
	require.NoError(t, err)
	assert.True(t, found, "other buckets must be untouched")

	names, err := cache.Buckets()
	require.NoError(t, err)
	assert.Equal(t, []string{"static-2"}, names)
}

func TestCacheStore_DeleteBucket_DoesNotMatchLongerNames(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	require.NoError(t, cache.EnsureBucket("static-1"))
	require.NoError(t, cache.EnsureBucket("static-10"))
	require.NoError(t, cache.Put("static-1", "/a.css", cssResponse("a")))
	require.NoError(t, cache.Put("static-10", "/a.css", cssResponse("ten")))

	_, err := cache.DeleteBucket("static-1")
	require.NoError(t, err)

	res, found, err := cache.Match("static-10", "/a.css")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ten", string(res.Body))
}

func TestCacheStore_DeleteBucket_UnknownIsBenign(t *testing.T) {
	cache, cleanup := setupCacheStore(t)
	defer cleanup()

	removed, err := cache.DeleteBucket("never-registered")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
