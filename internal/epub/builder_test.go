package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

func sampleContents() []models.ChapterContent {
	return []models.ChapterContent{
		{Volume: "1", Chapter: "5", Title: "Volume: 1. Chapter: 5", Text: "<p>first</p>"},
		{Volume: "1", Chapter: "6", Title: "Volume: 1. Chapter: 6", Text: "<p>second</p>"},
		{Volume: "2", Chapter: "1", Title: "Volume: 2. Chapter: 1", Text: "<p>third</p>"},
	}
}

func sampleRange() models.RangeLabel {
	return models.RangeLabel{Start: "Vol 1 Chap 5", End: "Vol 2 Chap 1"}
}

func TestWriteToRejectsEmptySequence(t *testing.T) {
	g := NewGenerator(models.BookMeta{Title: "Book"}, nil, sampleRange(), t.TempDir())

	err := g.WriteTo(io.Discard)
	require.Error(t, err)
}

func TestArchiveLayout(t *testing.T) {
	g := NewGenerator(models.BookMeta{Title: "Book"}, sampleContents(), sampleRange(), t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, g.WriteTo(&buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	// mimetype must be the first entry and stored uncompressed
	require.NotEmpty(t, zr.File)
	first := zr.File[0]
	assert.Equal(t, "mimetype", first.Name)
	assert.Equal(t, zip.Store, first.Method)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"META-INF/container.xml",
		"OEBPS/content.opf",
		"OEBPS/nav.xhtml",
		"OEBPS/toc.ncx",
		"OEBPS/styles/style.css",
		"OEBPS/chapters/ch_001.xhtml",
		"OEBPS/chapters/ch_003.xhtml",
	} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestChapterSectionCarriesTitleAndFragment(t *testing.T) {
	g := NewGenerator(models.BookMeta{Title: "Book"}, sampleContents(), sampleRange(), t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, g.WriteTo(&buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	rc, err := zr.Open("OEBPS/chapters/ch_002.xhtml")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)

	assert.Contains(t, string(body), "Volume: 1. Chapter: 6")
	assert.Contains(t, string(body), "<p>second</p>")
}

func TestNavigationGroupsByVolume(t *testing.T) {
	g := NewGenerator(models.BookMeta{Title: "Book"}, sampleContents(), sampleRange(), t.TempDir())

	nav := g.navigation()
	assert.Contains(t, nav, "Volume 1")
	assert.Contains(t, nav, "Volume 2")
	assert.Less(t, strings.Index(nav, "Volume 1"), strings.Index(nav, "Volume 2"))
}

func TestBuildIsDeterministic(t *testing.T) {
	build := func() []byte {
		g := NewGenerator(models.BookMeta{Title: "Book"}, sampleContents(), sampleRange(), t.TempDir())
		var buf bytes.Buffer
		require.NoError(t, g.WriteTo(&buf))
		return buf.Bytes()
	}

	assert.Equal(t, build(), build(), "same inputs must produce byte-identical archives")
}

func TestIdentifierStableForTitleAndRange(t *testing.T) {
	a := NewGenerator(models.BookMeta{Title: "Book"}, sampleContents(), sampleRange(), "")
	b := NewGenerator(models.BookMeta{Title: "Book"}, nil, sampleRange(), "")
	c := NewGenerator(models.BookMeta{Title: "Other"}, nil, sampleRange(), "")

	assert.Equal(t, a.identifier(), b.identifier())
	assert.NotEqual(t, a.identifier(), c.identifier())
}

func TestGenerateWritesDeterministicFileName(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(models.BookMeta{Title: "My: Book?"}, sampleContents(), sampleRange(), dir)

	path, name, err := g.Generate()
	require.NoError(t, err)

	assert.Equal(t, "My_ Book_ Vol 1 Chap 5 - Vol 2 Chap 1.epub", name)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)

	// a second run resolves to the same path
	path2, _, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, path, path2)
}
