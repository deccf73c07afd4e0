package models

// CatalogEntry is one listed work on a source site. Cover and Title may be
// empty when the site's markup omits them; Href is the site-relative
// identifier and is unique within one catalog listing.
type CatalogEntry struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Cover string `json:"cover,omitempty"`
}

// ChapterDescriptor is one listed chapter before download. Descriptors are
// deduplicated by title within a single scrape: the first occurrence wins.
type ChapterDescriptor struct {
	Title  string `json:"title"`
	Href   string `json:"href"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
}

// ChapterListResult is the discriminated outcome of a chapter-list scrape.
// On sites exposing multiple translation teams, Teams is returned when no
// team was selected; otherwise Chapters (and Cover, when present) are set.
type ChapterListResult struct {
	Teams    []string            `json:"teams,omitempty"`
	Chapters []ChapterDescriptor `json:"chapters,omitempty"`
	Cover    string              `json:"cover,omitempty"`
}

// ChapterContent is a downloaded chapter body. Volume and Chapter hold the
// ordinal tokens parsed from the href; they stay raw strings because some
// sites encode non-numeric ordinals.
type ChapterContent struct {
	Volume  string `json:"volume"`
	Chapter string `json:"chapter"`
	Title   string `json:"title"`
	Text    string `json:"textContent"`
}

// RangeLabel is the normalized (start, end) descriptor for a selected span
// of chapters. Used both as a cache key and as an output filename fragment.
type RangeLabel struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BookMeta carries the work-level metadata handed to the epub assembler.
type BookMeta struct {
	Title string `json:"title"`
	Cover string `json:"cover,omitempty"`
}

// SessionCookie is the subset of a captured browser cookie that gets
// persisted after login and re-injected into later sessions.
type SessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}
