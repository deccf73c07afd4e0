package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

const (
	InfiniteName = "infinitenoveltranslations"
	infiniteBase = "https://infinitenoveltranslations.net"
)

// catalog sections are plain listing pages, no authentication involved.
var infiniteSections = []string{"light-novels", "web-novels", "completed"}

// Infinite scrapes infinitenoveltranslations.net. Chapter hrefs carry a
// single ordinal inside a dashed slug segment. The site has no translation
// teams and no login.
type Infinite struct{}

func NewInfinite() *Infinite { return &Infinite{} }

func (a *Infinite) Name() string { return InfiniteName }

// Catalog walks the three listing sections and extracts the elementor work
// cards. Cards missing a cover or title keep the field empty; duplicate
// hrefs across sections are collapsed.
func (a *Infinite) Catalog(p Pager) ([]models.CatalogEntry, error) {
	var entries []models.CatalogEntry
	seen := make(map[string]struct{})

	for _, section := range infiniteSections {
		if err := p.Navigate(infiniteBase + "/" + section); err != nil {
			return nil, err
		}
		html, err := p.HTML()
		if err != nil {
			return nil, err
		}

		for _, entry := range parseWorkCards(html) {
			if entry.Href != "" {
				if _, dup := seen[entry.Href]; dup {
					continue
				}
				seen[entry.Href] = struct{}{}
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func parseWorkCards(html string) []models.CatalogEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var entries []models.CatalogEntry
	doc.Find(".elementor-element.elementor-widget.elementor-widget-text-editor").Each(func(_ int, card *goquery.Selection) {
		entry := models.CatalogEntry{}

		if src, ok := card.Find("img").First().Attr("src"); ok {
			entry.Cover = src
		}

		// the card title is the first heading that links to the work page
		card.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			link := h.Find("a").First()
			href, ok := link.Attr("href")
			if !ok {
				return true
			}
			entry.Title = strings.TrimSpace(h.Text())
			entry.Href = strings.TrimPrefix(strings.TrimPrefix(href, infiniteBase), "/")
			return false
		})

		if entry.Title == "" && entry.Href == "" && entry.Cover == "" {
			return
		}
		entries = append(entries, entry)
	})
	return entries
}

// Chapters reads the chapter links out of the work page's entry content.
// The translate selector is ignored: this site has a single translation.
func (a *Infinite) Chapters(p Pager, href, translate string) (*models.ChapterListResult, error) {
	if err := p.Navigate(infiniteBase + "/" + href); err != nil {
		return nil, err
	}
	html, err := p.HTML()
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var chapters []models.ChapterDescriptor
	seen := make(map[string]struct{})

	doc.Find(".entry-content a[href]").Each(func(_ int, link *goquery.Selection) {
		target, _ := link.Attr("href")
		// older posts still link over plain http
		target = strings.Replace(target, "http://", "https://", 1)
		if !strings.HasPrefix(target, infiniteBase+"/") {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}

		chapters = append(chapters, models.ChapterDescriptor{
			Title: title,
			Href:  target,
		})
	})

	cover, _ := doc.Find(".size-full").First().Attr("src")

	return &models.ChapterListResult{
		Chapters: chapters,
		Cover:    cover,
	}, nil
}

// Download fetches each chapter page in order. Unlike the ranobelib batch,
// a failed item aborts the whole download: the chapter links come from a
// hand-edited index page, so a broken one means the selection itself is
// stale and a partial book would silently miss chapters.
func (a *Infinite) Download(p Pager, hrefs []string) ([]models.ChapterContent, error) {
	contents := make([]models.ChapterContent, 0, len(hrefs))

	for _, href := range hrefs {
		if err := p.Navigate(href); err != nil {
			return nil, err
		}
		html, err := p.HTML()
		if err != nil {
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, err
		}

		text, err := doc.Find("div#content").Children().First().Html()
		if err != nil {
			return nil, fmt.Errorf("chapter %s: %w", href, err)
		}
		title := strings.TrimSpace(doc.Find(".entry-title").First().Text())

		contents = append(contents, models.ChapterContent{
			Volume:  volumeFromPath(href),
			Chapter: strings.TrimSpace(strings.SplitN(title, "–", 2)[0]),
			Title:   title,
			Text:    strings.TrimSpace(text),
		})
	}

	return contents, nil
}

// volumeFromPath finds the path segment containing "volume" and takes the
// token after its first dash, e.g. volume-3 -> "3".
func volumeFromPath(href string) string {
	for _, seg := range strings.Split(href, "/") {
		if !strings.Contains(seg, "volume") {
			continue
		}
		toks := strings.SplitN(seg, "-", 3)
		if len(toks) > 1 {
			return toks[1]
		}
	}
	return ""
}

// Range normalizes the selected span using the single-ordinal scheme.
func (a *Infinite) Range(hrefs []string) models.RangeLabel {
	return SingleRange(hrefs, infiniteOrdinal)
}

// infiniteOrdinal reads the ordinal from the chapter slug: the second
// dash-separated token of the second path segment (chapter-161-170 -> 161).
// For batch posts covering a span this picks the lower bound of the span,
// not the chapter the user clicked; kept as the source convention.
func infiniteOrdinal(href string) string {
	parts := strings.Split(href, "/")
	if len(parts) < 5 {
		return href
	}
	toks := strings.Split(parts[4], "-")
	if len(toks) < 2 {
		return parts[4]
	}
	return toks[1]
}
