package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/VariableSan/ranobe-scraper/internal/cache"
	"github.com/VariableSan/ranobe-scraper/internal/scrape"
	"github.com/VariableSan/ranobe-scraper/internal/session"
	"github.com/VariableSan/ranobe-scraper/pkg/database"
	"github.com/VariableSan/ranobe-scraper/pkg/utils"
)

// Pre-warms the catalog cache for one site from the command line, so the
// first API request after a deploy does not pay for a full browser scrape.
func main() {
	site := flag.String("site", scrape.RanobeLibName, "site to scrape: ranobelibme or infinitenoveltranslations")
	flag.Parse()

	cfg := utils.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	store := cache.NewStore(db)

	sessions := session.NewManager(cfg.Headless)
	uid := uuid.NewString()

	p, err := sessions.Open(uid)
	if err != nil {
		log.Fatalf("open browser session: %v", err)
	}
	defer sessions.Cancel(uid)

	var adapter scrape.Adapter
	switch *site {
	case scrape.RanobeLibName:
		lib := scrape.NewRanobeLib(cfg.RanobeLibLogin, cfg.RanobeLibPass, store)
		if err := lib.SignIn(p); err != nil {
			log.Printf("sign in: %v", err)
		}
		adapter = lib
	case scrape.InfiniteName:
		adapter = scrape.NewInfinite()
	default:
		log.Fatalf("unknown site %q", *site)
	}

	entries, err := adapter.Catalog(p)
	if err != nil {
		log.Fatalf("scrape %s catalog: %v", *site, err)
	}
	log.Printf("scraped %d catalog entries from %s", len(entries), *site)

	if err := store.WriteCatalog(ctx, *site, entries); err != nil {
		log.Fatalf("save catalog: %v", err)
	}

	log.Println("✅ catalog cache populated")
}
