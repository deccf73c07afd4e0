// Package cache is the read-through/write-through scrape cache. It is a
// plain key-value layer over sqlite: reads happen before any scrape unless
// the caller asks for a bypass, writes happen after a successful scrape and
// are best-effort. No locking across requests; last write wins.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/VariableSan/ranobe-scraper/internal/scrape"
	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ReadCatalog returns the cached catalog for a site, or nil when absent.
func (s *Store) ReadCatalog(ctx context.Context, site string) ([]models.CatalogEntry, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM catalog_cache WHERE site = ?`, site,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", site, err)
	}

	var entries []models.CatalogEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", site, err)
	}
	return entries, nil
}

func (s *Store) WriteCatalog(ctx context.Context, site string, entries []models.CatalogEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal catalog %s: %w", site, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catalog_cache (site, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(site) DO UPDATE SET
		  payload = excluded.payload,
		  updated_at = excluded.updated_at
	`, site, string(payload))
	if err != nil {
		return fmt.Errorf("write catalog %s: %w", site, err)
	}
	return nil
}

// ReadChapters returns the cached chapter list for (site, title), or nil
// when absent.
func (s *Store) ReadChapters(ctx context.Context, site, title string) (*models.ChapterListResult, error) {
	var payload, cover string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, cover FROM chapter_cache WHERE site = ? AND title = ?`,
		site, title,
	).Scan(&payload, &cover)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chapters %s/%s: %w", site, title, err)
	}

	var chapters []models.ChapterDescriptor
	if err := json.Unmarshal([]byte(payload), &chapters); err != nil {
		return nil, fmt.Errorf("decode chapters %s/%s: %w", site, title, err)
	}
	return &models.ChapterListResult{Chapters: chapters, Cover: cover}, nil
}

func (s *Store) WriteChapters(ctx context.Context, site, title string, chapters []models.ChapterDescriptor, sourceHref, cover string) error {
	payload, err := json.Marshal(chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters %s/%s: %w", site, title, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chapter_cache (site, title, source_href, cover, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(site, title) DO UPDATE SET
		  source_href = excluded.source_href,
		  cover = excluded.cover,
		  payload = excluded.payload,
		  updated_at = excluded.updated_at
	`, site, title, sourceHref, cover, string(payload))
	if err != nil {
		return fmt.Errorf("write chapters %s/%s: %w", site, title, err)
	}
	return nil
}

// ReadDownload returns the cached chapter bodies for (site, title, range),
// or nil when absent.
func (s *Store) ReadDownload(ctx context.Context, site, title string, rng models.RangeLabel) ([]models.ChapterContent, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM download_cache
		WHERE site = ? AND title = ? AND range_start = ? AND range_end = ?
	`, site, title, rng.Start, rng.End).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read download %s/%s: %w", site, title, err)
	}

	var contents []models.ChapterContent
	if err := json.Unmarshal([]byte(payload), &contents); err != nil {
		return nil, fmt.Errorf("decode download %s/%s: %w", site, title, err)
	}
	return contents, nil
}

func (s *Store) WriteDownload(ctx context.Context, site, title string, rng models.RangeLabel, contents []models.ChapterContent) error {
	payload, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("marshal download %s/%s: %w", site, title, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO download_cache (site, title, range_start, range_end, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(site, title, range_start, range_end) DO UPDATE SET
		  payload = excluded.payload,
		  updated_at = excluded.updated_at
	`, site, title, rng.Start, rng.End, string(payload))
	if err != nil {
		return fmt.Errorf("write download %s/%s: %w", site, title, err)
	}
	return nil
}

// LoadAuth implements scrape.AuthStore.
func (s *Store) LoadAuth(site string) (*scrape.AuthState, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM session_cookies WHERE site = ?`, site,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load auth %s: %w", site, err)
	}

	var st scrape.AuthState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("decode auth %s: %w", site, err)
	}
	return &st, nil
}

// SaveAuth implements scrape.AuthStore.
func (s *Store) SaveAuth(site string, st scrape.AuthState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal auth %s: %w", site, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO session_cookies (site, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(site) DO UPDATE SET
		  payload = excluded.payload,
		  updated_at = excluded.updated_at
	`, site, string(payload))
	if err != nil {
		return fmt.Errorf("save auth %s: %w", site, err)
	}
	return nil
}
