// Package datastore keeps an on-disk cache of query results so long
// analysis sessions do not refetch unchanged records. Entries are served
// only while fresh, meaning younger than the TTL and stamped with the
// current catalogue revision; a revision bump invalidates everything cached
// from the older catalogue at once.
package datastore

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/internal/logging"
)

// Package-level logger for datastore operations
var (
	datastoreLogger   *slog.Logger
	datastoreLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	datastoreLevelVar.Set(slog.LevelInfo)

	datastoreLogger, _, err = logging.NewFileLogger("logs/datastore.log", "datastore", datastoreLevelVar)
	if err != nil {
		logging.Error("Failed to initialize datastore file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: datastoreLevelVar})
		datastoreLogger = slog.New(fbHandler).With("service", "datastore")
	}
}

// CachedSource is one cached getSourceInfo payload.
type CachedSource struct {
	ID       uint      `gorm:"primaryKey"`
	SourceID int64     `gorm:"uniqueIndex:idx_source_flavour;not null"`
	Flavour  string    `gorm:"uniqueIndex:idx_source_flavour;not null"`
	CatRev   int64     `gorm:"index"` // catalogue revision the payload was served from
	Payload  string    // raw JSON payload as served
	CachedAt time.Time `gorm:"index"`
}

// CachedResolution is one cached name resolution.
type CachedResolution struct {
	ID       uint      `gorm:"primaryKey"`
	Query    string    `gorm:"uniqueIndex:idx_resolution_query_flavour;not null"`
	Flavour  string    `gorm:"uniqueIndex:idx_resolution_query_flavour;not null"`
	CatRev   int64     `gorm:"index"`
	Payload  string    // raw JSON payload as served
	CachedAt time.Time `gorm:"index"`
}

// Store is the SQLite-backed cache.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
}

// Open opens or creates the cache database and migrates its schema.
func Open(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.New(err).
				Category(errors.CategoryFileIO).
				Context("directory", dir).
				Component("datastore").
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Newf("failed to open cache database: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", path).
			Component("datastore").
			Build()
	}

	if err := db.AutoMigrate(&CachedSource{}, &CachedResolution{}); err != nil {
		return nil, errors.Newf("cache schema migration failed: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", path).
			Component("datastore").
			Build()
	}

	datastoreLogger.Info("cache database opened",
		"path", path,
		"ttl", ttl)

	return &Store{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// fresh reports whether a cache stamp is still usable against the live
// catalogue revision. Both gates must hold.
func (s *Store) fresh(cachedAt time.Time, catRev, liveCatRev int64) bool {
	if s.ttl > 0 && time.Since(cachedAt) >= s.ttl {
		return false
	}
	return catRev == liveCatRev
}

// GetSource returns a cached source payload if it is still fresh.
func (s *Store) GetSource(sourceID int64, flavour string, liveCatRev int64) (string, bool) {
	var entry CachedSource
	err := s.db.Where("source_id = ? AND flavour = ?", sourceID, flavour).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			datastoreLogger.Warn("source cache lookup failed",
				"source_id", sourceID,
				"error", err)
		}
		return "", false
	}
	if !s.fresh(entry.CachedAt, entry.CatRev, liveCatRev) {
		datastoreLogger.Debug("source cache entry stale",
			"source_id", sourceID,
			"cached_rev", entry.CatRev,
			"live_rev", liveCatRev)
		return "", false
	}
	return entry.Payload, true
}

// PutSource stores or replaces a source payload.
func (s *Store) PutSource(sourceID int64, flavour string, catRev int64, payload string) error {
	entry := CachedSource{
		SourceID: sourceID,
		Flavour:  flavour,
		CatRev:   catRev,
		Payload:  payload,
		CachedAt: time.Now(),
	}

	var existing CachedSource
	err := s.db.Where("source_id = ? AND flavour = ?", sourceID, flavour).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.Create(&entry).Error
	case err == nil:
		entry.ID = existing.ID
		err = s.db.Save(&entry).Error
	}
	if err != nil {
		return errors.Newf("failed to cache source %d: %w", sourceID, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// GetResolution returns a cached name resolution if it is still fresh.
func (s *Store) GetResolution(query, flavour string, liveCatRev int64) (string, bool) {
	var entry CachedResolution
	err := s.db.Where("query = ? AND flavour = ?", query, flavour).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			datastoreLogger.Warn("resolution cache lookup failed",
				"query", query,
				"error", err)
		}
		return "", false
	}
	if !s.fresh(entry.CachedAt, entry.CatRev, liveCatRev) {
		return "", false
	}
	return entry.Payload, true
}

// PutResolution stores or replaces a name resolution payload.
func (s *Store) PutResolution(query, flavour string, catRev int64, payload string) error {
	entry := CachedResolution{
		Query:    query,
		Flavour:  flavour,
		CatRev:   catRev,
		Payload:  payload,
		CachedAt: time.Now(),
	}

	var existing CachedResolution
	err := s.db.Where("query = ? AND flavour = ?", query, flavour).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.Create(&entry).Error
	case err == nil:
		entry.ID = existing.ID
		err = s.db.Save(&entry).Error
	}
	if err != nil {
		return errors.Newf("failed to cache resolution %q: %w", query, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// Prune deletes entries older than the TTL regardless of revision and
// returns how many rows were removed.
func (s *Store) Prune() (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-s.ttl)

	var removed int64
	result := s.db.Where("cached_at < ?", cutoff).Delete(&CachedSource{})
	if result.Error != nil {
		return 0, errors.New(result.Error).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	removed += result.RowsAffected

	result = s.db.Where("cached_at < ?", cutoff).Delete(&CachedResolution{})
	if result.Error != nil {
		return removed, errors.New(result.Error).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	removed += result.RowsAffected

	if removed > 0 {
		datastoreLogger.Info("cache pruned", "removed", removed)
	}
	return removed, nil
}

// Counts returns how many entries of each kind are cached.
func (s *Store) Counts() (sources, resolutions int64, err error) {
	if err = s.db.Model(&CachedSource{}).Count(&sources).Error; err != nil {
		return 0, 0, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	if err = s.db.Model(&CachedResolution{}).Count(&resolutions).Error; err != nil {
		return 0, 0, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return sources, resolutions, nil
}
