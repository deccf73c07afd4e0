// Package session owns the browser automation lifecycle: one headless
// browser context per logical scrape operation, tracked by correlation id
// so a client disconnect can release it mid-flight.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/chromedp/chromedp"
)

// Manager maps correlation ids to live sessions. Sessions are never pooled
// or shared between operations; every Open pays for a fresh browser context
// in exchange for isolation (no cookie or DOM state leaks between requests).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	headless bool
}

func NewManager(headless bool) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		headless: headless,
	}
}

// Open launches a fresh browser and registers it under id. Either the
// returned session is fully usable or an error is returned and nothing
// is left behind.
func (m *Manager) Open(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("open session: empty correlation id")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(browser.Computer()),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:      id,
		ctx:     browserCtx,
		cancels: []context.CancelFunc{allocCancel, browserCancel},
	}

	// Start the browser process now so a launch failure surfaces here
	// instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		s.close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Printf("[session] opened %s", id)
	return s, nil
}

// Cancel releases the session registered under id. Idempotent: cancelling
// an unknown or already-closed id is a no-op. This is the only path that
// frees the browser when the client disconnects mid-scrape.
func (m *Manager) Cancel(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	s.close()
	log.Printf("[session] closed %s", id)
}

// Active reports how many sessions are currently open.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
