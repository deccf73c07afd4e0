package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

func TestSingleRangeSwapsDescendingSelection(t *testing.T) {
	hrefs := []string{
		"https://infinitenoveltranslations.net/nidoume-no-jinsei-wo-isekai-de/chapter-168-foo/",
		"https://infinitenoveltranslations.net/nidoume-no-jinsei-wo-isekai-de/chapter-161-bar/",
	}

	rng := NewInfinite().Range(hrefs)
	assert.Equal(t, models.RangeLabel{Start: "161", End: "168"}, rng)
}

func TestSingleRangeKeepsAscendingSelection(t *testing.T) {
	hrefs := []string{
		"https://infinitenoveltranslations.net/nidoume-no-jinsei-wo-isekai-de/chapter-3/",
		"https://infinitenoveltranslations.net/nidoume-no-jinsei-wo-isekai-de/chapter-12/",
	}

	rng := NewInfinite().Range(hrefs)
	assert.Equal(t, models.RangeLabel{Start: "3", End: "12"}, rng)
}

func TestSingleRangeUnparseableTokensKeptVerbatim(t *testing.T) {
	hrefs := []string{
		"https://infinitenoveltranslations.net/some-novel/chapter-epilogue-two/",
		"https://infinitenoveltranslations.net/some-novel/chapter-prologue/",
	}

	rng := NewInfinite().Range(hrefs)
	// no swap when either endpoint is non-numeric
	assert.Equal(t, "epilogue", rng.Start)
	assert.Equal(t, "prologue", rng.End)
}

func TestSingleRangeUsesFirstAndLastOfLongSelection(t *testing.T) {
	hrefs := []string{
		"https://infinitenoveltranslations.net/n/chapter-40/",
		"https://infinitenoveltranslations.net/n/chapter-2/",
		"https://infinitenoveltranslations.net/n/chapter-7/",
	}

	rng := NewInfinite().Range(hrefs)
	assert.Equal(t, models.RangeLabel{Start: "7", End: "40"}, rng)
}

func TestVolumeChapterRangeSwapsByTupleOrder(t *testing.T) {
	lib := NewRanobeLib("", "", nil)

	rng := lib.Range([]string{"work/v2/c15", "work/v1/c5"})
	assert.Equal(t, models.RangeLabel{Start: "Vol 1 Chap 5", End: "Vol 2 Chap 15"}, rng)
}

func TestVolumeChapterRangeSameVolumeComparesChapters(t *testing.T) {
	lib := NewRanobeLib("", "", nil)

	rng := lib.Range([]string{"work/v3/c20", "work/v3/c4"})
	assert.Equal(t, models.RangeLabel{Start: "Vol 3 Chap 4", End: "Vol 3 Chap 20"}, rng)
}

func TestVolumeChapterRangeAscendingUntouched(t *testing.T) {
	lib := NewRanobeLib("", "", nil)

	rng := lib.Range([]string{"work/v1/c1", "work/v4/c2"})
	assert.Equal(t, models.RangeLabel{Start: "Vol 1 Chap 1", End: "Vol 4 Chap 2"}, rng)
}

func TestVolumeChapterRangeUnparseableNoSwap(t *testing.T) {
	lib := NewRanobeLib("", "", nil)

	rng := lib.Range([]string{"work/vX/c9", "work/v1/c1"})
	assert.Equal(t, models.RangeLabel{Start: "Vol X Chap 9", End: "Vol 1 Chap 1"}, rng)
}

func TestRangeDeterministicAcrossCalls(t *testing.T) {
	lib := NewRanobeLib("", "", nil)
	hrefs := []string{"work/v2/c15?ui=1", "work/v1/c5"}

	first := lib.Range(hrefs)
	second := lib.Range(hrefs)
	assert.Equal(t, first, second)
}

func TestSingleRangeEmptySelection(t *testing.T) {
	assert.Equal(t, models.RangeLabel{}, NewInfinite().Range(nil))
}

func TestParseVolChapStripsQuerySuffix(t *testing.T) {
	vol, chap := parseVolChap("work/v2/c15?bid=123")
	assert.Equal(t, "2", vol)
	assert.Equal(t, "15", chap)
}
