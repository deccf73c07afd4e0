package scrape

import (
	"fmt"
	"time"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

// fakePager replays canned HTML snapshots instead of driving a browser.
// Evaluate answers the scroll-loop expressions from scripted values.
type fakePager struct {
	snapshots []string  // consumed by HTML() in order; last one repeats
	heights   []float64 // consumed by scrollHeight evaluations; last repeats
	viewportH float64

	navigated []string
	scrolls   int
	cookies   []models.SessionCookie

	snapIdx   int
	heightIdx int
}

func (f *fakePager) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakePager) WaitVisible(sel string) error { return nil }
func (f *fakePager) Click(sel string) error       { return nil }
func (f *fakePager) SendKeys(sel, v string) error { return nil }
func (f *fakePager) Sleep(d time.Duration) error  { return nil }
func (f *fakePager) Viewport(w, h int64) error    { return nil }

func (f *fakePager) Evaluate(expr string, out any) error {
	switch expr {
	case "document.body.scrollHeight":
		v := f.heights[min(f.heightIdx, len(f.heights)-1)]
		f.heightIdx++
		*(out.(*float64)) = v
	case "window.innerHeight":
		*(out.(*float64)) = f.viewportH
	case "window.scrollBy(0, window.innerHeight / 2)":
		f.scrolls++
	default:
		if out != nil {
			return fmt.Errorf("unexpected evaluate: %s", expr)
		}
	}
	return nil
}

func (f *fakePager) HTML() (string, error) {
	if len(f.snapshots) == 0 {
		return "", nil
	}
	s := f.snapshots[min(f.snapIdx, len(f.snapshots)-1)]
	f.snapIdx++
	return s, nil
}

func (f *fakePager) Cookies() ([]models.SessionCookie, error) {
	return f.cookies, nil
}

func (f *fakePager) SetCookies(cookies []models.SessionCookie) error {
	f.cookies = cookies
	return nil
}
