package epub

import (
	"fmt"
	"strings"
)

// navigation renders nav.xhtml. Chapters sharing a volume ordinal are
// grouped under a volume heading; chapters without one are listed flat.
func (g *Generator) navigation() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Table of Contents</title>
  <link rel="stylesheet" type="text/css" href="styles/style.css"/>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Table of Contents</h1>
    <ol>
`)

	currentVolume := ""
	open := false
	for i, ch := range g.contents {
		if ch.Volume != "" && ch.Volume != currentVolume {
			if open {
				sb.WriteString("        </ol>\n      </li>\n")
			}
			currentVolume = ch.Volume
			open = true
			sb.WriteString(fmt.Sprintf("      <li>\n        <span>Volume %s</span>\n        <ol>\n", escapeXML(ch.Volume)))
		}

		indent := "      "
		if open {
			indent = "          "
		}
		sb.WriteString(fmt.Sprintf("%s<li><a href=\"chapters/%s.xhtml\">%s</a></li>\n",
			indent, chapterID(i), escapeXML(chapterTitle(ch, i))))
	}
	if open {
		sb.WriteString("        </ol>\n      </li>\n")
	}

	sb.WriteString(`    </ol>
  </nav>
</body>
</html>
`)

	return sb.String()
}
