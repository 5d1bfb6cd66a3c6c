package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/equitrack/equitrack/internal/datastore/entities"
	"github.com/equitrack/equitrack/internal/errors"
)

const (
	// hotCacheTTL bounds how long a matched entry is served from memory
	// before re-reading the database.
	hotCacheTTL = 5 * time.Minute

	// hotCacheCleanup is the expiry sweep interval of the in-memory front.
	hotCacheCleanup = 10 * time.Minute
)

// repository implements Repository on SQLite with an in-memory read-through
// front for hot entries.
type repository struct {
	db  *gorm.DB
	hot *gocache.Cache
}

// NewRepository creates a Repository backed by the given database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:  db,
		hot: gocache.New(hotCacheTTL, hotCacheCleanup),
	}
}

func hotKey(method, key string) string {
	return method + " " + key
}

// Open registers the named store. Re-opening an existing store is a no-op.
func (r *repository) Open(ctx context.Context, name string) error {
	if name == "" {
		return errors.Newf("store name must not be empty").
			Component("cachestore").
			Category(errors.CategoryValidation).
			Build()
	}
	store := entities.CacheStore{Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&store).Error
	if err != nil {
		return fmt.Errorf("failed to open store %s: %w", name, err)
	}
	return nil
}

// Populate fetches the whole manifest first and only then writes the batch in
// a single transaction, so a mid-manifest fetch failure leaves the store
// untouched.
func (r *repository) Populate(ctx context.Context, name string, manifest []string, fetcher Fetcher) error {
	if err := r.requireStore(ctx, name); err != nil {
		return err
	}

	fetched := make([]*Entry, 0, len(manifest))
	for _, key := range manifest {
		entry, err := fetcher.Fetch(ctx, http.MethodGet, key)
		if err != nil {
			return errors.Wrap(fmt.Errorf("%w: %s: %w", ErrPopulationFailed, key, err)).
				Component("cachestore").
				Category(errors.CategoryNetwork).
				Context("store", name).
				Context("key", key).
				Build()
		}
		fetched = append(fetched, entry)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range fetched {
			if err := putTx(tx, name, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: write batch: %w", ErrPopulationFailed, err)
	}

	for _, entry := range fetched {
		r.hot.Delete(hotKey(entry.Method, entry.Key))
	}
	return nil
}

// Match returns the first hit for the request key across all stores.
func (r *repository) Match(ctx context.Context, method, key string) (*Entry, error) {
	if cached, ok := r.hot.Get(hotKey(method, key)); ok {
		return cached.(*Entry), nil
	}

	var row entities.CachedEntry
	err := r.db.WithContext(ctx).
		Where("method = ? AND key = ?", method, key).
		Order("store_name ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match %s %s: %w", method, key, err)
	}

	entry, err := fromRow(&row)
	if err != nil {
		return nil, err
	}
	r.hot.Set(hotKey(method, key), entry, gocache.DefaultExpiration)
	return entry, nil
}

// Put overwrites the entry for (name, entry.Method, entry.Key).
func (r *repository) Put(ctx context.Context, name string, entry *Entry) error {
	if err := r.requireStore(ctx, name); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return putTx(tx, name, entry)
	})
	if err != nil {
		return fmt.Errorf("failed to put %s %s: %w", entry.Method, entry.Key, err)
	}
	r.hot.Delete(hotKey(entry.Method, entry.Key))
	return nil
}

// ListNames enumerates existing store names in creation order.
func (r *repository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entities.CacheStore{}).
		Order("created_at ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list store names: %w", err)
	}
	return names, nil
}

// Delete removes the store registration and all its entries.
func (r *repository) Delete(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_name = ?", name).Delete(&entities.CachedEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&entities.CacheStore{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete store %s: %w", name, err)
	}
	// Entries from the deleted generation may still sit in the memory front;
	// drop everything rather than track per-store membership.
	r.hot.Flush()
	return nil
}

func (r *repository) requireStore(ctx context.Context, name string) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.CacheStore{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check store %s: %w", name, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrStoreNotFound, name)
	}
	return nil
}

func putTx(tx *gorm.DB, name string, entry *Entry) error {
	headers, err := json.Marshal(entry.Header)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}
	row := entities.CachedEntry{
		StoreName:   name,
		Method:      entry.Method,
		Key:         entry.Key,
		Status:      entry.Status,
		ContentType: entry.ContentType,
		Headers:     string(headers),
		Body:        entry.Body,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_name"}, {Name: "method"}, {Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func fromRow(row *entities.CachedEntry) (*Entry, error) {
	header := http.Header{}
	if row.Headers != "" {
		if err := json.Unmarshal([]byte(row.Headers), &header); err != nil {
			return nil, fmt.Errorf("failed to decode headers for %s: %w", row.Key, err)
		}
	}
	return &Entry{
		Key:         row.Key,
		Method:      row.Method,
		Status:      row.Status,
		ContentType: row.ContentType,
		Header:      header,
		Body:        row.Body,
	}, nil
}
