package offline

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	bucketKeyPrefix = "bucket:"
	entryKeyPrefix  = "entry:"
)

// CachedResponse is a stored copy of an upstream response. Only the
// headers that matter for replaying static assets are kept.
type CachedResponse struct {
	StoredAt time.Time         `json:"stored_at"`
	Header   map[string]string `json:"header,omitempty"`
	Body     []byte            `json:"body"`
	Status   int               `json:"status"`
}

// CacheStore keeps named buckets of request/response pairs in a Badger
// database separate from the record store. Each operation is a single
// transaction; there is no cross-operation locking.
type CacheStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenCacheStore opens (or creates) the cache database at path.
func OpenCacheStore(path string, logger *slog.Logger) (*CacheStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.CompactL0OnClose = true
	// Cached responses are rebuildable from the network, so async
	// writes are acceptable here unlike in the record store.
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if logger != nil {
		logger.Info("Cache database opened", "path", path)
	}

	return &CacheStore{db: db, logger: logger}, nil
}

// Close closes the cache database.
func (c *CacheStore) Close() error {
	return c.db.Close()
}

// EnsureBucket registers a bucket name. Registering an existing bucket
// is a no-op.
func (c *CacheStore) EnsureBucket(name string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bucketKey(name), []byte("1"))
	})
}

// Buckets returns every registered bucket name.
func (c *CacheStore) Buckets() ([]string, error) {
	var names []string

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bucketKeyPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[len(bucketKeyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list cache buckets: %w", err)
	}

	return names, nil
}

// DeleteBucket removes a bucket's registry entry and every response
// stored under it. Returns the number of responses removed. Deleting an
// unregistered bucket is a no-op.
func (c *CacheStore) DeleteBucket(name string) (int, error) {
	removed := 0

	err := c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(bucketKey(name)); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryScanPrefix(name)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete cache bucket %s: %w", name, err)
	}

	if c.logger != nil {
		c.logger.Debug("Deleted cache bucket", "bucket", name, "entries", removed)
	}

	return removed, nil
}

// Put stores a response under the bucket, keyed by the request URL with
// query and fragment stripped.
func (c *CacheStore) Put(bucket, rawURL string, res *CachedResponse) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal cached response: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(bucket, rawURL), data)
	})
	if err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}

	return nil
}

// Match looks up a response by URL, ignoring any query string or
// fragment on the request. The second return reports whether an entry
// was found; a miss is not an error.
func (c *CacheStore) Match(bucket, rawURL string) (*CachedResponse, bool, error) {
	var res CachedResponse
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(bucket, rawURL))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &res)
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("match cached response: %w", err)
	}

	if !found {
		return nil, false, nil
	}
	return &res, true, nil
}

func bucketKey(name string) []byte {
	return []byte(bucketKeyPrefix + name)
}

func entryKey(bucket, rawURL string) []byte {
	return []byte(entryKeyPrefix + bucket + ":" + normalizeURL(rawURL))
}

// entryScanPrefix covers every entry in a bucket. The trailing colon
// keeps bucket "static-1" from matching "static-10".
func entryScanPrefix(bucket string) []byte {
	return []byte(entryKeyPrefix + bucket + ":")
}

// normalizeURL reduces a request URL to its escaped path. Every cached
// entry is same-origin, so the path alone identifies the resource;
// dropping the query means cache-busting parameters still hit.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Not parseable as a URL; strip query and fragment by hand.
		if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
			rawURL = rawURL[:i]
		}
		return rawURL
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return path
}
