// Package epub assembles downloaded chapter fragments into an ePub 3.0
// archive. Output is deterministic: the same title, range and chapter list
// always produce a byte-identical file, so repeated requests for one span
// resolve to the same cached artifact on disk.
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
	"github.com/VariableSan/ranobe-scraper/pkg/utils"
)

// fixedModified keeps dcterms:modified stable across builds of the same
// book. Zip entry timestamps stay at their zero value for the same reason.
const fixedModified = "2000-01-01T00:00:00Z"

// Generator builds one book from an ordered, non-empty chapter sequence.
type Generator struct {
	meta     models.BookMeta
	contents []models.ChapterContent
	rng      models.RangeLabel
	outDir   string
}

func NewGenerator(meta models.BookMeta, contents []models.ChapterContent, rng models.RangeLabel, outDir string) *Generator {
	return &Generator{meta: meta, contents: contents, rng: rng, outDir: outDir}
}

// Generate writes the archive under the deterministic file name and returns
// its path plus the suggested download name. Any failure is fatal: no
// partial file is left behind.
func (g *Generator) Generate() (string, string, error) {
	fileName := utils.BookFileName(g.meta.Title, g.rng.Start, g.rng.End)
	path := filepath.Join(g.outDir, fileName)

	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := g.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", "", fmt.Errorf("close %s: %w", path, err)
	}

	return path, fileName, nil
}

// WriteTo streams the archive to w.
func (g *Generator) WriteTo(w io.Writer) error {
	if len(g.contents) == 0 {
		return fmt.Errorf("epub %q: no chapters to assemble", g.meta.Title)
	}

	zw := zip.NewWriter(w)

	// mimetype must be the first entry and stored uncompressed
	mt, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("create mimetype: %w", err)
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return err
	}

	files := []struct {
		name    string
		content string
	}{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", g.packageDoc()},
		{"OEBPS/nav.xhtml", g.navigation()},
		{"OEBPS/toc.ncx", g.ncx()},
		{"OEBPS/styles/style.css", stylesheet},
	}
	for i, ch := range g.contents {
		files = append(files, struct {
			name    string
			content string
		}{chapterPath(i), g.chapterXHTML(ch)})
	}

	for _, file := range files {
		fw, err := zw.Create(file.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", file.name, err)
		}
		if _, err := fw.Write([]byte(file.content)); err != nil {
			return fmt.Errorf("write %s: %w", file.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// identifier derives the stable publication id from title + range.
func (g *Generator) identifier() string {
	seed := g.meta.Title + "|" + g.rng.Start + "|" + g.rng.End
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
}

func chapterID(i int) string {
	return fmt.Sprintf("ch_%03d", i+1)
}

func chapterPath(i int) string {
	return fmt.Sprintf("OEBPS/chapters/%s.xhtml", chapterID(i))
}

// chapterTitle prefers the chapter's own title and falls back to its
// position in the sequence.
func chapterTitle(ch models.ChapterContent, i int) string {
	if ch.Title != "" {
		return ch.Title
	}
	return fmt.Sprintf("Chapter %d", i+1)
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const stylesheet = `body {
  font-family: Georgia, "Times New Roman", serif;
  line-height: 1.6;
  margin: 1em;
  text-align: justify;
}

h1, h2, h3 {
  font-family: Helvetica, Arial, sans-serif;
  text-align: left;
}

p {
  margin: 0.5em 0;
}

.chapter-title {
  text-align: center;
  margin-top: 2em;
  margin-bottom: 2em;
}
`
