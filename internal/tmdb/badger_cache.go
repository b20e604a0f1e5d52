// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package tmdb

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/models"
)

const enrichmentKeyPrefix = "enrichment:"

// BadgerCache persists enrichment results across restarts. Entries expire
// through badger's native TTL.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerCache opens (or creates) a cache database in dir.
func OpenBadgerCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger enrichment cache: %w", err)
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

// Get returns the cached enrichment for key.
func (c *BadgerCache) Get(key string) (models.Enrichment, bool, error) {
	var e models.Enrichment
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(enrichmentKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Enrichment{}, false, nil
	}
	if err != nil {
		return models.Enrichment{}, false, fmt.Errorf("get cached enrichment: %w", err)
	}
	return e, true, nil
}

// Set stores e under key for the configured TTL.
func (c *BadgerCache) Set(key string, e models.Enrichment) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal enrichment: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(enrichmentKeyPrefix+key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// RunGC reclaims value log space. Nothing to rewrite is not an error.
func (c *BadgerCache) RunGC() error {
	err := c.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
