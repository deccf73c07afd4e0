package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// unsafe covers path separators plus characters that common filesystems
// reject in file names.
var unsafe = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName makes a title or range token safe to embed in a file name.
func SanitizeFileName(s string) string {
	s = strings.TrimSpace(unsafe.Replace(s))
	return strings.Join(strings.Fields(s), " ")
}

// BookFileName derives the deterministic output name for a title + range.
// Repeated requests for the same span must resolve to the same file.
func BookFileName(title, start, end string) string {
	return fmt.Sprintf("%s %s - %s.epub",
		SanitizeFileName(title), SanitizeFileName(start), SanitizeFileName(end))
}

// BookFilePath joins the output directory with the deterministic file name.
func BookFilePath(dir, title, start, end string) string {
	return filepath.Join(dir, BookFileName(title, start, end))
}
