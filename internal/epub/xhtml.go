package epub

import (
	"strings"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

// chapterXHTML wraps one downloaded fragment into a section document. The
// fragment is site markup captured from the reader container and is embedded
// as-is; readers are lenient about non-XHTML tags inside the body.
func (g *Generator) chapterXHTML(ch models.ChapterContent) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>`)
	sb.WriteString(escapeXML(ch.Title))
	sb.WriteString(`</title>
  <link rel="stylesheet" type="text/css" href="../styles/style.css"/>
</head>
<body>
`)

	if ch.Title != "" {
		sb.WriteString("<h2 class=\"chapter-title\">")
		sb.WriteString(escapeXML(ch.Title))
		sb.WriteString("</h2>\n")
	}

	sb.WriteString(ch.Text)
	sb.WriteString("\n</body>\n</html>\n")

	return sb.String()
}
