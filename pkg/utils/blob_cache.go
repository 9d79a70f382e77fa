package utils

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BlobCache keeps downloaded files in a badger store, keyed by source URL.
// Entries expire after the TTL they were stored with.
type BlobCache struct {
	db *badger.DB
}

func OpenBlobCache(path string) (*BlobCache, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BlobCache{db: db}, nil
}

// OpenMemoryBlobCache returns a cache that lives only as long as the process.
func OpenMemoryBlobCache() (*BlobCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BlobCache{db: db}, nil
}

func (c *BlobCache) Close() error {
	return c.db.Close()
}

// Put stores value under key. A ttl of zero keeps it forever.
func (c *BlobCache) Put(key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the value stored under key, or nil when it is missing or
// expired.
func (c *BlobCache) Get(key string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

// Keys lists every live key.
func (c *BlobCache) Keys() ([]string, error) {
	var keys []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}
