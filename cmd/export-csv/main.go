package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/VariableSan/ranobe-scraper/pkg/database"
)

// Dumps the scrape cache to CSV for inspection: one file per cache table.
func main() {
	var (
		catalogOut  = flag.String("catalog", "data/catalog_cache.csv", "output CSV path for cached catalogs")
		chaptersOut = flag.String("chapters", "data/chapter_cache.csv", "output CSV path for cached chapter lists")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportCatalogs(ctx, db, *catalogOut); err != nil {
		log.Fatalf("export catalogs failed: %v", err)
	}
	if err := exportChapterLists(ctx, db, *chaptersOut); err != nil {
		log.Fatalf("export chapter lists failed: %v", err)
	}

	log.Printf("✅ exported catalogs to %s and chapter lists to %s", *catalogOut, *chaptersOut)
}

func exportCatalogs(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"site", "payload", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT site, payload, updated_at
        FROM catalog_cache
        ORDER BY site
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			site      string
			payload   string
			updatedAt sql.NullTime
		)

		if err := rows.Scan(&site, &payload, &updatedAt); err != nil {
			return err
		}

		updated := ""
		if updatedAt.Valid {
			updated = updatedAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{site, payload, updated}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportChapterLists(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"site", "title", "source_href", "cover", "payload", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT site, title, source_href, cover, payload, updated_at
        FROM chapter_cache
        ORDER BY site, title
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			site       string
			title      string
			sourceHref sql.NullString
			cover      sql.NullString
			payload    string
			updatedAt  sql.NullTime
		)

		if err := rows.Scan(&site, &title, &sourceHref, &cover, &payload, &updatedAt); err != nil {
			return err
		}

		updated := ""
		if updatedAt.Valid {
			updated = updatedAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			site,
			title,
			sourceHref.String,
			cover.String,
			payload,
			updated,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
