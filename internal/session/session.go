package session

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

// Session is one live browser context bound to a correlation id. Navigations
// within a session run one at a time; the page DOM from the last navigation
// stays available until the next one.
type Session struct {
	id      string
	ctx     context.Context
	cancels []context.CancelFunc
}

func (s *Session) ID() string { return s.id }

// close releases the browser resources. Safe to call more than once; the
// underlying cancel funcs are idempotent.
func (s *Session) close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Navigate loads a URL in the session's page, retrying transient failures
// before giving up.
func (s *Session) Navigate(url string) error {
	err := retry.Do(
		func() error {
			return chromedp.Run(s.ctx, chromedp.Navigate(url))
		},
		retry.Context(s.ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) WaitVisible(sel string) error {
	return chromedp.Run(s.ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (s *Session) Click(sel string) error {
	return chromedp.Run(s.ctx, chromedp.Click(sel, chromedp.ByQuery))
}

func (s *Session) SendKeys(sel, value string) error {
	return chromedp.Run(s.ctx, chromedp.SendKeys(sel, value, chromedp.ByQuery))
}

// Evaluate runs a JS expression in the page and decodes the result into out.
// Pass nil for fire-and-forget expressions.
func (s *Session) Evaluate(expr string, out any) error {
	if out == nil {
		return chromedp.Run(s.ctx, chromedp.Evaluate(expr, nil))
	}
	return chromedp.Run(s.ctx, chromedp.Evaluate(expr, out))
}

// HTML snapshots the full rendered document. Extraction happens on this
// snapshot, outside the browser.
func (s *Session) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Sleep is the render-settle pause used between scroll steps.
func (s *Session) Sleep(d time.Duration) error {
	return chromedp.Run(s.ctx, chromedp.Sleep(d))
}

func (s *Session) Viewport(width, height int64) error {
	return chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(width, height, 1, false).Do(ctx)
	}))
}

// Cookies captures the browser's current cookies.
func (s *Session) Cookies() ([]models.SessionCookie, error) {
	var out []models.SessionCookie
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, models.SessionCookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
				Path:   c.Path,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	return out, nil
}

// SetCookies injects previously captured cookies before navigation.
func (s *Session) SetCookies(cookies []models.SessionCookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &network.CookieParam{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return storage.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}
