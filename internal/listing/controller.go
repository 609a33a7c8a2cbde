// Package listing holds the page and search state behind the notes list.
//
// A Controller is owned by one goroutine (the TUI event loop). The only thing
// that happens elsewhere is the debounce timer, which reports back through the
// notify callback so the owner can apply it with ApplySettled.
package listing

import (
	"time"

	"github.com/idilsaglam/notehub/internal/debounce"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/query"
)

// DefaultSearchDelay is the quiet period before a search term is applied.
const DefaultSearchDelay = 500 * time.Millisecond

// Settled is posted when the search box has been quiet for the debounce delay.
type Settled struct {
	Generation uint64
	Value      string
}

// Controller tracks page, search text and the create modal flag.
type Controller struct {
	pageSize  int
	page      int
	pageCount int
	raw       string
	debounced string
	creating  bool

	debouncer *debounce.Debouncer
	notify    func(Settled)
}

// Option configures a Controller.
type Option func(*controllerConfig)

type controllerConfig struct {
	delay time.Duration
	after debounce.AfterFunc
}

// WithDelay overrides DefaultSearchDelay.
func WithDelay(d time.Duration) Option {
	return func(c *controllerConfig) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithAfterFunc swaps the debounce scheduler.
func WithAfterFunc(fn debounce.AfterFunc) Option {
	return func(c *controllerConfig) { c.after = fn }
}

// New returns a controller on page 1 with an empty search. notify is called
// from the timer goroutine; it must not touch the controller directly.
func New(pageSize int, notify func(Settled), opts ...Option) *Controller {
	cfg := controllerConfig{delay: DefaultSearchDelay}
	for _, opt := range opts {
		opt(&cfg)
	}
	if notify == nil {
		notify = func(Settled) {}
	}
	return &Controller{
		pageSize:  pageSize,
		page:      1,
		debouncer: debounce.New(cfg.delay, debounce.WithAfterFunc(cfg.after)),
		notify:    notify,
	}
}

// SetSearch records text immediately and restarts the debounce timer.
func (c *Controller) SetSearch(text string) {
	c.raw = text
	c.debouncer.Trigger(func(gen uint64) {
		c.notify(Settled{Generation: gen, Value: text})
	})
}

// ApplySettled applies a debounced value. Notifications from a superseded
// timer are ignored. A changed value resets the page to 1.
func (c *Controller) ApplySettled(s Settled) bool {
	if s.Generation != c.debouncer.Generation() {
		return false
	}
	if s.Value == c.debounced {
		return false
	}
	c.debounced = s.Value
	c.page = 1
	return true
}

// ObservePage updates the page count from a successful response.
func (c *Controller) ObservePage(p *model.NotesPage) {
	if p == nil {
		return
	}
	c.pageCount = max(p.TotalPages, 0)
}

// ShowPagination reports whether the pagination control should be visible.
func (c *Controller) ShowPagination() bool { return c.pageCount > 1 }

// SetPage moves to page n. Range checks belong to the pagination control.
func (c *Controller) SetPage(n int) { c.page = n }

func (c *Controller) Page() int               { return c.page }
func (c *Controller) PageSize() int           { return c.pageSize }
func (c *Controller) PageCount() int          { return c.pageCount }
func (c *Controller) RawSearch() string       { return c.raw }
func (c *Controller) DebouncedSearch() string { return c.debounced }
func (c *Controller) SearchPending() bool     { return c.debouncer.Pending() }

// Key is the query key of the page currently displayed.
func (c *Controller) Key() query.Key {
	return query.NotesKey(c.page, c.pageSize, c.debounced)
}

func (c *Controller) OpenCreate()      { c.creating = true }
func (c *Controller) CloseCreate()     { c.creating = false }
func (c *Controller) CreateOpen() bool { return c.creating }

// Close stops the debounce timer; a pending search is dropped.
func (c *Controller) Close() { c.debouncer.Stop() }
