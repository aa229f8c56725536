/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "loraorganizer/internal/log"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// CacheDirName holds disposable per-catalogue data under the base dir.
	CacheDirName         = ".lorg"
	PreviewCacheFileName = "previews.sqlite"

	// DefaultPreviewCacheBytes caps the total PNG bytes kept.
	DefaultPreviewCacheBytes int64 = 64 * 1024 * 1024

	// cacheSchemaVersion is bumped whenever the table layout changes; a
	// cache with another version is dropped and recreated.
	cacheSchemaVersion = 2

	opTimeout = 5 * time.Second
)

var _ preview.Cache = (*PreviewCache)(nil)

// PreviewCachePath returns the cache database location for baseDir.
func PreviewCachePath(baseDir string) string {
	return filepath.Join(baseDir, CacheDirName, PreviewCacheFileName)
}

// PreviewCache keeps scaled previews as PNG blobs in SQLite, evicting the
// least recently used rows once the total exceeds maxBytes. Every failure
// inside Get and Put is logged and treated as a miss.
type PreviewCache struct {
	db       *sql.DB
	path     string
	maxBytes int64
	clock    int64
}

// OpenPreviewCache opens (or creates) the cache for baseDir. A database that
// cannot be opened or fails its integrity check is moved aside and rebuilt.
// maxBytes <= 0 disables eviction.
func OpenPreviewCache(baseDir string, maxBytes int64) (*PreviewCache, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "preview_cache_open").With(slog.String("base", baseDir))
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(filepath.Join(baseDir, CacheDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", CacheDirName, err)
	}
	path := PreviewCachePath(baseDir)
	db, err := openCacheDB(path)
	if err != nil {
		l.Warn("preview cache unusable, rebuilding", slog.String("path", path), slog.Any("err", err))
		moveAside(path)
		db, err = openCacheDB(path)
		if err != nil {
			return nil, fmt.Errorf("rebuild preview cache: %w", err)
		}
	}
	c := &PreviewCache{db: db, path: path, maxBytes: maxBytes}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_ = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(last_access),0) FROM previews`).Scan(&c.clock)
	l.Debug("preview cache ready", slog.String("path", path))
	return c, nil
}

func openCacheDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	var chk string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check;").Scan(&chk); err != nil || !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		_ = db.Close()
		if err == nil {
			err = fmt.Errorf("quick_check: %s", chk)
		}
		return nil, err
	}
	if err := ensureCacheSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureCacheSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}
	var cur string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='schema_version'`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	default:
		if cur != strconv.Itoa(cacheSchemaVersion) {
			if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS previews`); err != nil {
				return fmt.Errorf("drop stale previews: %w", err)
			}
		}
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS previews (
			path        TEXT    NOT NULL,
			short_side  INTEGER NOT NULL,
			src_size    INTEGER NOT NULL,
			src_mtime   INTEGER NOT NULL,
			src_hash    INTEGER NOT NULL,
			png         BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			last_access INTEGER NOT NULL,
			PRIMARY KEY (path, short_side)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create previews: %w", err)
		}
	}
	upsert := `INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`
	if _, err := db.ExecContext(ctx, upsert, "schema_version", strconv.Itoa(cacheSchemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	if _, err := db.ExecContext(ctx, upsert, "app", version.String()); err != nil {
		return fmt.Errorf("write app version: %w", err)
	}
	return nil
}

// moveAside renames an unusable cache file (and its WAL side files) to a
// timestamped .corrupt name so a fresh one can be created.
func moveAside(path string) {
	stamp := time.Now().Format("20060102-150405")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		src := path + suffix
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, fmt.Sprintf("%s.corrupt-%s%s", path, stamp, suffix)); err != nil {
			_ = os.Remove(src)
		}
	}
}

// Path is the database file location.
func (c *PreviewCache) Path() string { return c.path }

// Get returns the cached PNG for key. A row whose source size, mod time or
// content hash no longer matches is dropped and reported as a miss.
func (c *PreviewCache) Get(key preview.CacheKey) ([]byte, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "preview_cache_get")
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var blob []byte
	var size, mtime, sum int64
	err := c.db.QueryRowContext(ctx, `SELECT png, src_size, src_mtime, src_hash FROM previews WHERE path=? AND short_side=?`,
		key.Path, key.ShortSide).Scan(&blob, &size, &mtime, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		l.Debug("preview cache read failed", slog.Any("err", err))
		return nil, false
	}
	if size != key.Size || mtime != key.ModTime || uint64(sum) != key.Hash {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM previews WHERE path=? AND short_side=?`, key.Path, key.ShortSide)
		return nil, false
	}
	c.clock++
	_, _ = c.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE path=? AND short_side=?`, c.clock, key.Path, key.ShortSide)
	return blob, true
}

// Put stores data for key and evicts old rows beyond the byte cap.
func (c *PreviewCache) Put(key preview.CacheKey, data []byte) {
	if c == nil || c.db == nil || len(data) == 0 {
		return
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "preview_cache_put")
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	c.clock++
	// SQLite integers are signed; the hash is stored bit for bit.
	_, err := c.db.ExecContext(ctx, `INSERT INTO previews(path, short_side, src_size, src_mtime, src_hash, png, size, last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(path, short_side) DO UPDATE SET src_size=excluded.src_size, src_mtime=excluded.src_mtime,
			src_hash=excluded.src_hash, png=excluded.png, size=excluded.size, last_access=excluded.last_access`,
		key.Path, key.ShortSide, key.Size, key.ModTime, int64(key.Hash), data, len(data), c.clock)
	if err != nil {
		l.Debug("preview cache write failed", slog.Any("err", err))
		return
	}
	if c.maxBytes > 0 {
		if err := c.evictToFit(ctx); err != nil {
			l.Debug("preview cache eviction failed", slog.Any("err", err))
		}
	}
}

// evictToFit deletes least recently used rows until the total size fits.
func (c *PreviewCache) evictToFit(ctx context.Context) error {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= c.maxBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT rowid, size FROM previews ORDER BY last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 16)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= c.maxBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// The single connection must be released before writing.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE rowid IN (?` + strings.Repeat(",?", len(victims)-1) + `)`
	if _, err := c.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalBytes returns the PNG bytes currently stored.
func (c *PreviewCache) TotalBytes() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Close releases the database.
func (c *PreviewCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
