// Package scrape holds the per-site extraction adapters. Each source site
// differs entirely in markup, so every site gets its own implementation of
// the shared capability set, selected explicitly at the transport boundary.
// The browser session does navigation, scrolling and clicking; extraction
// itself runs on HTML snapshots parsed with goquery.
package scrape

import (
	"time"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

// Pager is the slice of an automation session the adapters drive. The
// concrete implementation is *session.Session; tests substitute snapshot
// fakes.
type Pager interface {
	Navigate(url string) error
	WaitVisible(sel string) error
	Click(sel string) error
	SendKeys(sel, value string) error
	Evaluate(expr string, out any) error
	HTML() (string, error)
	Sleep(d time.Duration) error
	Viewport(width, height int64) error
	Cookies() ([]models.SessionCookie, error)
	SetCookies(cookies []models.SessionCookie) error
}

// Adapter is the capability set every source site implements.
type Adapter interface {
	Name() string

	// Catalog extracts the site's work listing. Entries missing a cover or
	// title keep the field empty rather than failing the fetch; duplicate
	// hrefs across pagination are collapsed.
	Catalog(p Pager) ([]models.CatalogEntry, error)

	// Chapters extracts the chapter list for one work. On multi-team sites
	// the result carries team names instead of chapters until a team is
	// selected via translate.
	Chapters(p Pager, href, translate string) (*models.ChapterListResult, error)

	// Download fetches chapter bodies for the given hrefs in order.
	Download(p Pager, hrefs []string) ([]models.ChapterContent, error)

	// Range derives the normalized span label from the user's selection.
	Range(hrefs []string) models.RangeLabel
}

// AuthState is the identity captured by an authenticated login flow and
// re-injected into later sessions.
type AuthState struct {
	UserID  int64                  `json:"userId"`
	Cookies []models.SessionCookie `json:"cookies"`
}

// AuthStore persists login state between requests. Load returns nil when
// no state has been captured for the site.
type AuthStore interface {
	LoadAuth(site string) (*AuthState, error)
	SaveAuth(site string, st AuthState) error
}
