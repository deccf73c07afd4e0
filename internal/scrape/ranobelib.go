package scrape

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

const (
	RanobeLibName = "ranobelibme"
	ranobeLibBase = "https://ranobelib.me"

	// The chapter list is a virtualized scroller: off-screen rows are not in
	// the DOM until scrolled into view. Each step scrolls half a viewport and
	// waits this long for lazy rendering to settle.
	scrollSettle = time.Second

	// The scroll loop terminates at the initially observed document height;
	// modest growth is tolerated up to this factor so late-mounted rows are
	// still harvested, but the loop never runs unbounded.
	scrollGrowthLimit = 1.5
)

// RanobeLib scrapes ranobelib.me. Chapters use the volume+chapter dual
// ordinal scheme (…/v2/c15). The catalog is the user's bookmark list and
// needs a logged-in identity; credentials are optional and, when absent,
// only disable the login flow.
type RanobeLib struct {
	Login string
	Pass  string
	Auth  AuthStore
}

func NewRanobeLib(login, pass string, auth AuthStore) *RanobeLib {
	return &RanobeLib{Login: login, Pass: pass, Auth: auth}
}

func (r *RanobeLib) Name() string { return RanobeLibName }

// SignIn submits the site's own login form inside the session and persists
// the resulting cookies (internal underscore-prefixed ones excluded) plus
// the user id read from the avatar link. Returns without error when no
// credentials are configured.
func (r *RanobeLib) SignIn(p Pager) error {
	if r.Login == "" || r.Pass == "" {
		return nil
	}

	if err := p.Navigate(ranobeLibBase); err != nil {
		return err
	}
	if err := p.Click(".button.header__sign.header__sign-in"); err != nil {
		return fmt.Errorf("sign-in button: %w", err)
	}
	if err := p.WaitVisible("input[name=email]"); err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	if err := p.SendKeys("input[name=email]", r.Login); err != nil {
		return err
	}
	if err := p.SendKeys("input[name=password]", r.Pass); err != nil {
		return err
	}
	if err := p.Click("button[type=submit]"); err != nil {
		return err
	}
	if err := p.WaitVisible(".header-right-menu__avatar"); err != nil {
		return fmt.Errorf("post-login avatar: %w", err)
	}

	html, err := p.HTML()
	if err != nil {
		return err
	}
	userID := parseAvatarUserID(html)

	cookies, err := p.Cookies()
	if err != nil {
		return err
	}
	kept := cookies[:0]
	for _, c := range cookies {
		if !strings.HasPrefix(c.Name, "_") {
			kept = append(kept, c)
		}
	}

	if err := r.Auth.SaveAuth(RanobeLibName, AuthState{UserID: userID, Cookies: kept}); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	return nil
}

// parseAvatarUserID pulls the numeric user id out of the avatar image path
// (…/uploads/users/<id>/…). Zero when not found.
func parseAvatarUserID(html string) int64 {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	src, _ := doc.Find(".header-right-menu__avatar").First().Attr("src")
	parts := strings.Split(src, "/")
	if len(parts) < 2 {
		return 0
	}
	id, _ := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	return id
}

// Catalog reads the logged-in user's bookmark list. A stored login identity
// is required; the per-entry cover/title may be missing and stay empty.
func (r *RanobeLib) Catalog(p Pager) ([]models.CatalogEntry, error) {
	st, err := r.Auth.LoadAuth(RanobeLibName)
	if err != nil {
		return nil, fmt.Errorf("load auth state: %w", err)
	}
	if st == nil || st.UserID == 0 {
		return nil, fmt.Errorf("%s: catalog needs a logged-in user", RanobeLibName)
	}
	if err := p.SetCookies(st.Cookies); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/user/%d?folder=all", ranobeLibBase, st.UserID)
	if err := p.Navigate(url); err != nil {
		return nil, err
	}
	html, err := p.HTML()
	if err != nil {
		return nil, err
	}
	return parseBookmarkList(html), nil
}

func parseBookmarkList(html string) []models.CatalogEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var entries []models.CatalogEntry
	seen := make(map[string]struct{})

	doc.Find(".bookmark__list.paper .bookmark-item").Each(func(_ int, item *goquery.Selection) {
		entry := models.CatalogEntry{}

		name := item.Find(".bookmark-item__name").First()
		entry.Title = strings.TrimSpace(name.Text())
		if href, ok := name.Attr("href"); ok {
			entry.Href = strings.TrimPrefix(strings.SplitN(href, "?", 2)[0], "/")
		}

		if style, ok := item.Find(".bookmark-item__cover").First().Attr("style"); ok {
			entry.Cover = coverFromStyle(style)
		}

		if entry.Href != "" {
			if _, dup := seen[entry.Href]; dup {
				return
			}
			seen[entry.Href] = struct{}{}
		}
		if entry.Href == "" && entry.Title == "" {
			return
		}
		entries = append(entries, entry)
	})

	return entries
}

// coverFromStyle extracts the url(...) argument from an inline
// background-image style.
func coverFromStyle(style string) string {
	style = strings.ReplaceAll(style, `"`, "")
	from := strings.Index(style, "(")
	to := strings.Index(style, ")")
	if from < 0 || to <= from {
		return ""
	}
	return style[from+1 : to]
}

// Chapters harvests the virtualized chapter list. When the work has several
// translation teams and translate is empty, the team names are returned
// instead; a non-empty translate clicks the matching team first.
func (r *RanobeLib) Chapters(p Pager, href, translate string) (*models.ChapterListResult, error) {
	if err := p.Viewport(1920, 1080); err != nil {
		return nil, err
	}
	if err := p.Navigate(fmt.Sprintf("%s/%s?section=chapters", ranobeLibBase, href)); err != nil {
		return nil, err
	}

	html, err := p.HTML()
	if err != nil {
		return nil, err
	}

	teams := parseTeamNames(html)
	if len(teams) > 0 {
		if translate == "" {
			return &models.ChapterListResult{Teams: teams}, nil
		}
		if err := selectTeam(p, translate); err != nil {
			log.Printf("[%s] team %q not selected: %v", RanobeLibName, translate, err)
		}
		// re-render after the team switch
		if err := p.Sleep(scrollSettle); err != nil {
			return nil, err
		}
		if html, err = p.HTML(); err != nil {
			return nil, err
		}
	}

	chapters, err := r.harvestChapters(p, html)
	if err != nil {
		return nil, err
	}

	return &models.ChapterListResult{
		Chapters: chapters,
		Cover:    parseSidebarCover(html),
	}, nil
}

// harvestChapters runs the scroll-and-settle loop: read the mounted rows,
// scroll half a viewport, pause, re-read, until the accumulated scroll
// reaches the document height (bounded by the initial height with growth
// tolerance). A bad screenful is logged and skipped, never discarding what
// was already collected.
func (r *RanobeLib) harvestChapters(p Pager, firstSnapshot string) ([]models.ChapterDescriptor, error) {
	var docHeight, viewHeight float64
	if err := p.Evaluate(`document.body.scrollHeight`, &docHeight); err != nil {
		return nil, err
	}
	if err := p.Evaluate(`window.innerHeight`, &viewHeight); err != nil {
		return nil, err
	}

	step := viewHeight / 2
	if step <= 0 {
		step = 540
	}
	bound := docHeight * scrollGrowthLimit

	var (
		order    []string
		byTitle  = make(map[string]models.ChapterDescriptor)
		scrolled float64
		height   = docHeight
		snapshot = firstSnapshot
		snapErr  error
	)

	for scrolled < height && scrolled < bound {
		if snapErr != nil {
			log.Printf("[%s] screenful snapshot failed, continuing: %v", RanobeLibName, snapErr)
		} else {
			for _, ch := range parseMountedChapters(snapshot) {
				if _, ok := byTitle[ch.Title]; ok {
					continue
				}
				byTitle[ch.Title] = ch
				order = append(order, ch.Title)
			}
		}

		if err := p.Evaluate(`window.scrollBy(0, window.innerHeight / 2)`, nil); err != nil {
			return nil, err
		}
		scrolled += step
		if err := p.Sleep(scrollSettle); err != nil {
			return nil, err
		}
		if err := p.Evaluate(`document.body.scrollHeight`, &height); err != nil {
			return nil, err
		}

		snapshot, snapErr = p.HTML()
	}

	chapters := make([]models.ChapterDescriptor, 0, len(order))
	for _, title := range order {
		chapters = append(chapters, byTitle[title])
	}
	return chapters, nil
}

// parseMountedChapters reads the rows currently mounted by the recycle
// scroller. Row layout: item > wrapper > body > [link, author, date].
func parseMountedChapters(html string) []models.ChapterDescriptor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []models.ChapterDescriptor
	doc.Find(".vue-recycle-scroller__item-view").Each(func(_ int, item *goquery.Selection) {
		body := item.Children().First().Children().Eq(1)
		cols := body.Children()
		if cols.Length() == 0 {
			return
		}

		ch := models.ChapterDescriptor{}
		cols.Each(func(i int, col *goquery.Selection) {
			switch i {
			case 0:
				link := col.Children().First()
				ch.Title = strings.TrimSpace(link.Text())
				if href, ok := link.Attr("href"); ok {
					ch.Href = strings.TrimPrefix(href, "/")
				}
			case 1:
				ch.Author = strings.TrimSpace(col.Text())
			case 2:
				ch.Date = strings.TrimSpace(col.Text())
			}
		})

		if ch.Title == "" {
			return
		}
		out = append(out, ch)
	})
	return out
}

func parseTeamNames(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var teams []string
	doc.Find(".media-section.media-chapters-teams .team-list-item").Each(func(_ int, s *goquery.Selection) {
		teams = append(teams, strings.TrimSpace(s.Text()))
	})
	return teams
}

func parseSidebarCover(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find(".media-sidebar__cover.paper img").First().Attr("src")
	return strings.TrimPrefix(src, "https://staticlib.me")
}

func selectTeam(p Pager, translate string) error {
	expr := fmt.Sprintf(`(() => {
		const items = document.querySelectorAll('.media-section.media-chapters-teams .team-list-item');
		for (const el of items) {
			if ((el.textContent || '').trim() === %q) { el.click(); return true; }
		}
		return false;
	})()`, translate)

	var clicked bool
	if err := p.Evaluate(expr, &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no team named %q", translate)
	}
	return nil
}

// Download fetches each chapter body in order. A failed item is logged and
// skipped so one broken chapter does not lose the rest of the batch.
func (r *RanobeLib) Download(p Pager, hrefs []string) ([]models.ChapterContent, error) {
	contents := make([]models.ChapterContent, 0, len(hrefs))

	for _, href := range hrefs {
		content, err := r.downloadOne(p, href)
		if err != nil {
			log.Printf("[%s] chapter %s skipped: %v", RanobeLibName, href, err)
			continue
		}
		contents = append(contents, content)
	}

	return contents, nil
}

func (r *RanobeLib) downloadOne(p Pager, href string) (models.ChapterContent, error) {
	if err := p.Navigate(ranobeLibBase + "/" + href); err != nil {
		return models.ChapterContent{}, err
	}
	html, err := p.HTML()
	if err != nil {
		return models.ChapterContent{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.ChapterContent{}, err
	}
	text, err := doc.Find(".reader-container.container.container_center").First().Html()
	if err != nil {
		return models.ChapterContent{}, err
	}

	volume, chapter := parseVolChap(href)
	return models.ChapterContent{
		Volume:  volume,
		Chapter: chapter,
		Title:   fmt.Sprintf("Volume: %s. Chapter: %s", volume, chapter),
		Text:    text,
	}, nil
}

// Range normalizes the selected span. Both endpoints of the selection are
// compared as (volume, chapter) tuples.
func (r *RanobeLib) Range(hrefs []string) models.RangeLabel {
	return VolumeChapterRange(hrefs, parseVolChap)
}

// parseVolChap reads the dual ordinals from the last two path segments,
// e.g. …/v2/c15 -> ("2", "15"). Tokens stay raw when non-numeric.
func parseVolChap(href string) (volume, chapter string) {
	parts := strings.Split(href, "/")
	if len(parts) < 2 {
		return href, href
	}
	volume = strings.TrimPrefix(parts[len(parts)-2], "v")
	chapter = strings.TrimPrefix(strings.SplitN(parts[len(parts)-1], "?", 2)[0], "c")
	return volume, chapter
}

// Search proxies the site's JSON search endpoint, rendered in the session
// so the site's bot checks see a real browser.
func (r *RanobeLib) Search(p Pager, title, kind string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/search?type=%s&q=%s", ranobeLibBase, kind, title)
	if err := p.Navigate(url); err != nil {
		return nil, err
	}

	var raw string
	if err := p.Evaluate(`document.querySelector('body')?.innerText || ''`, &raw); err != nil {
		return nil, err
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%s: search returned non-JSON body", RanobeLibName)
	}
	return json.RawMessage(raw), nil
}
