package epub

import (
	"fmt"
	"strings"
)

// packageDoc renders OEBPS/content.opf.
func (g *Generator) packageDoc() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="pub-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	sb.WriteString(fmt.Sprintf("    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", g.identifier()))
	sb.WriteString(fmt.Sprintf("    <dc:title>%s</dc:title>\n", escapeXML(g.meta.Title)))
	sb.WriteString("    <dc:language>ru</dc:language>\n")
	sb.WriteString(fmt.Sprintf("    <meta property=\"dcterms:modified\">%s</meta>\n", fixedModified))
	sb.WriteString("  </metadata>\n\n")

	sb.WriteString("  <manifest>\n")
	sb.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	sb.WriteString("    <item id=\"ncx\" href=\"toc.ncx\" media-type=\"application/x-dtbncx+xml\"/>\n")
	sb.WriteString("    <item id=\"style\" href=\"styles/style.css\" media-type=\"text/css\"/>\n")
	for i := range g.contents {
		id := chapterID(i)
		sb.WriteString(fmt.Sprintf("    <item id=\"%s\" href=\"chapters/%s.xhtml\" media-type=\"application/xhtml+xml\"/>\n", id, id))
	}
	sb.WriteString("  </manifest>\n\n")

	sb.WriteString("  <spine toc=\"ncx\">\n")
	for i := range g.contents {
		sb.WriteString(fmt.Sprintf("    <itemref idref=\"%s\"/>\n", chapterID(i)))
	}
	sb.WriteString("  </spine>\n")
	sb.WriteString("</package>\n")

	return sb.String()
}

// ncx renders the ePub 2 compatibility table of contents.
func (g *Generator) ncx() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
`)
	sb.WriteString(fmt.Sprintf("    <meta name=\"dtb:uid\" content=\"%s\"/>\n", g.identifier()))
	sb.WriteString(`    <meta name="dtb:depth" content="1"/>
  </head>
`)
	sb.WriteString(fmt.Sprintf("  <docTitle><text>%s</text></docTitle>\n", escapeXML(g.meta.Title)))
	sb.WriteString("  <navMap>\n")
	for i, ch := range g.contents {
		sb.WriteString(fmt.Sprintf(`    <navPoint id="nav_%s" playOrder="%d">
      <navLabel><text>%s</text></navLabel>
      <content src="chapters/%s.xhtml"/>
    </navPoint>
`, chapterID(i), i+1, escapeXML(chapterTitle(ch, i)), chapterID(i)))
	}
	sb.WriteString("  </navMap>\n</ncx>\n")

	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
