package scrape

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chapterRow(title, href, author, date string) string {
	return fmt.Sprintf(`<div class="vue-recycle-scroller__item-view">
  <div class="media-chapter">
    <div class="media-chapter__icon"></div>
    <div class="media-chapter__body">
      <div><a href="/%s">%s</a></div>
      <div>%s</div>
      <div>%s</div>
    </div>
  </div>
</div>`, href, title, author, date)
}

func chapterPage(rows ...string) string {
	page := `<html><body><div class="media-sidebar__cover paper"><img src="https://staticlib.me/covers/1.jpg"/></div>`
	for _, r := range rows {
		page += r
	}
	return page + "</body></html>"
}

func TestParseMountedChapters(t *testing.T) {
	html := chapterPage(
		chapterRow("Том 1 Глава 1", "work/v1/c1", "TeamA", "01.01.2021"),
		chapterRow("Том 1 Глава 2", "work/v1/c2", "TeamA", "02.01.2021"),
	)

	chapters := parseMountedChapters(html)
	require.Len(t, chapters, 2)
	assert.Equal(t, "Том 1 Глава 1", chapters[0].Title)
	assert.Equal(t, "work/v1/c1", chapters[0].Href)
	assert.Equal(t, "TeamA", chapters[0].Author)
	assert.Equal(t, "01.01.2021", chapters[0].Date)
}

func TestHarvestDeduplicatesByTitleFirstWins(t *testing.T) {
	// the second screenful re-mounts chapter 2 under a different href;
	// the first occurrence must survive
	snap1 := chapterPage(
		chapterRow("Глава 1", "work/v1/c1", "TeamA", ""),
		chapterRow("Глава 2", "work/v1/c2", "TeamA", ""),
	)
	snap2 := chapterPage(
		chapterRow("Глава 2", "work/v1/c2-alt", "TeamB", ""),
		chapterRow("Глава 3", "work/v1/c3", "TeamA", ""),
	)

	p := &fakePager{
		snapshots: []string{snap1, snap1, snap2},
		heights:   []float64{3000},
		viewportH: 2000,
	}

	lib := NewRanobeLib("", "", nil)
	result, err := lib.Chapters(p, "work", "")
	require.NoError(t, err)
	require.Empty(t, result.Teams)

	require.Len(t, result.Chapters, 3)
	assert.Equal(t, "Глава 1", result.Chapters[0].Title)
	assert.Equal(t, "Глава 2", result.Chapters[1].Title)
	assert.Equal(t, "work/v1/c2", result.Chapters[1].Href, "first encountered href wins")
	assert.Equal(t, "Глава 3", result.Chapters[2].Title)
	assert.Equal(t, "/covers/1.jpg", result.Cover)
}

func TestHarvestTerminatesWhenHeightKeepsGrowing(t *testing.T) {
	snap := chapterPage(chapterRow("Глава 1", "work/v1/c1", "", ""))

	p := &fakePager{
		snapshots: []string{snap},
		// the document keeps reporting more height than we have scrolled
		heights:   []float64{1000, 2000, 4000, 8000, 16000},
		viewportH: 1000,
	}

	lib := NewRanobeLib("", "", nil)
	result, err := lib.Chapters(p, "work", "")
	require.NoError(t, err)

	require.Len(t, result.Chapters, 1)
	// bounded by the initial height plus growth tolerance: 1000 * 1.5
	// at 500 per step means three scroll steps, not sixteen
	assert.LessOrEqual(t, p.scrolls, 3)
}

func TestChaptersReturnsTeamsWhenTranslateMissing(t *testing.T) {
	html := `<html><body>
  <div class="media-section media-chapters-teams">
    <div class="team-list-item"> Team Alpha </div>
    <div class="team-list-item">Team Beta</div>
  </div>
</body></html>`

	p := &fakePager{snapshots: []string{html}, heights: []float64{0}, viewportH: 0}

	lib := NewRanobeLib("", "", nil)
	result, err := lib.Chapters(p, "work", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Team Alpha", "Team Beta"}, result.Teams)
	assert.Empty(t, result.Chapters)
}

func TestParseBookmarkList(t *testing.T) {
	html := `<html><body><div class="bookmark__list paper">
  <div class="bookmark-item">
    <div class="bookmark-item__cover" style="background-image: url(&quot;https://staticlib.me/covers/a.jpg&quot;);"></div>
    <a class="bookmark-item__name" href="/novel-a?folder=all">Novel A</a>
  </div>
  <div class="bookmark-item">
    <a class="bookmark-item__name" href="/novel-b">Novel B</a>
  </div>
  <div class="bookmark-item">
    <a class="bookmark-item__name" href="/novel-a">Novel A again</a>
  </div>
</div></body></html>`

	entries := parseBookmarkList(html)
	require.Len(t, entries, 2, "duplicate hrefs collapse")

	assert.Equal(t, "Novel A", entries[0].Title)
	assert.Equal(t, "novel-a", entries[0].Href)
	assert.Equal(t, "https://staticlib.me/covers/a.jpg", entries[0].Cover)

	assert.Equal(t, "novel-b", entries[1].Href)
	assert.Empty(t, entries[1].Cover, "missing cover stays empty")
}

func TestCoverFromStyle(t *testing.T) {
	assert.Equal(t, "https://x/y.jpg", coverFromStyle(`background-image: url("https://x/y.jpg");`))
	assert.Equal(t, "", coverFromStyle("color: red"))
}

func TestParseAvatarUserID(t *testing.T) {
	html := `<html><body><img class="header-right-menu__avatar" src="/uploads/users/39222/av.png"/></body></html>`
	assert.Equal(t, int64(39222), parseAvatarUserID(html))

	assert.Equal(t, int64(0), parseAvatarUserID("<html><body></body></html>"))
}

func TestSignInWithoutCredentialsIsNoOp(t *testing.T) {
	p := &fakePager{}
	lib := NewRanobeLib("", "", nil)

	require.NoError(t, lib.SignIn(p))
	assert.Empty(t, p.navigated, "no navigation without credentials")
}
