package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VariableSan/ranobe-scraper/internal/scrape"
	"github.com/VariableSan/ranobe-scraper/pkg/database"
	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return NewStore(db)
}

func TestCatalogRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	absent, err := s.ReadCatalog(ctx, "ranobelibme")
	require.NoError(t, err)
	assert.Nil(t, absent)

	entries := []models.CatalogEntry{
		{Title: "Novel A", Href: "novel-a", Cover: "/covers/a.jpg"},
		{Title: "Novel B", Href: "novel-b"},
	}
	require.NoError(t, s.WriteCatalog(ctx, "ranobelibme", entries))

	got, err := s.ReadCatalog(ctx, "ranobelibme")
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// other sites stay absent
	other, err := s.ReadCatalog(ctx, "infinitenoveltranslations")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestCatalogLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteCatalog(ctx, "site", []models.CatalogEntry{{Href: "old"}}))
	require.NoError(t, s.WriteCatalog(ctx, "site", []models.CatalogEntry{{Href: "new"}}))

	got, err := s.ReadCatalog(ctx, "site")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Href)
}

func TestChaptersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	absent, err := s.ReadChapters(ctx, "site", "Novel A")
	require.NoError(t, err)
	assert.Nil(t, absent)

	chapters := []models.ChapterDescriptor{
		{Title: "Глава 1", Href: "work/v1/c1", Author: "TeamA"},
		{Title: "Глава 2", Href: "work/v1/c2"},
	}
	require.NoError(t, s.WriteChapters(ctx, "site", "Novel A", chapters, "work", "/covers/a.jpg"))

	got, err := s.ReadChapters(ctx, "site", "Novel A")
	require.NoError(t, err)
	assert.Equal(t, chapters, got.Chapters)
	assert.Equal(t, "/covers/a.jpg", got.Cover)
}

func TestDownloadKeyedByRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contents := []models.ChapterContent{
		{Volume: "1", Chapter: "5", Title: "Volume: 1. Chapter: 5", Text: "<p>a</p>"},
	}
	rng := models.RangeLabel{Start: "Vol 1 Chap 5", End: "Vol 2 Chap 15"}
	require.NoError(t, s.WriteDownload(ctx, "site", "Novel A", rng, contents))

	got, err := s.ReadDownload(ctx, "site", "Novel A", rng)
	require.NoError(t, err)
	assert.Equal(t, contents, got)

	// a different span is a different record
	miss, err := s.ReadDownload(ctx, "site", "Novel A", models.RangeLabel{Start: "Vol 1 Chap 5", End: "Vol 1 Chap 6"})
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestAuthStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	absent, err := s.LoadAuth("ranobelibme")
	require.NoError(t, err)
	assert.Nil(t, absent)

	st := scrape.AuthState{
		UserID: 39222,
		Cookies: []models.SessionCookie{
			{Name: "session", Value: "abc", Domain: ".ranobelib.me", Path: "/"},
		},
	}
	require.NoError(t, s.SaveAuth("ranobelibme", st))

	got, err := s.LoadAuth("ranobelibme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, st, *got)
}
