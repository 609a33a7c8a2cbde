package query

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/idilsaglam/notehub/internal/model"
)

// Status is the state of the most recent settled or running fetch of a key.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "pending"
	}
}

// Entry is a snapshot of one cached key.
//
// Data is the page of the last successful fetch and is kept while a refetch
// runs, so the view can hold it instead of flashing a loading state. It is
// dropped when a fetch fails; LastSuccessful survives that too.
type Entry struct {
	Key            Key
	Status         Status
	Data           *model.NotesPage
	Err            error
	LastSuccessful *model.NotesPage
	Fetching       bool
	Stale          bool
	UpdatedAt      time.Time
}

// Fresh reports whether the entry can be served without a refetch.
func (e Entry) Fresh() bool { return e.Status == StatusSuccess && !e.Stale }

// Fetcher performs the actual read for a key.
type Fetcher func(ctx context.Context, key Key) (*model.NotesPage, error)

type record struct {
	entry Entry
	// issued is the token of the newest started fetch, applied the token of
	// the newest response written into entry. Responses with a token at or
	// below applied arrived out of order and are dropped.
	issued  uint64
	applied uint64
	// fetches started at or below staleUpTo began before an invalidation.
	staleUpTo uint64
}

// Cache is a keyed store of list results shared by every view.
type Cache struct {
	fetch  Fetcher
	ctx    context.Context
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group

	mu           sync.Mutex
	records      map[Key]*record
	observers    map[Key]int
	listeners    map[int]func(Key)
	nextListener int
}

// Option configures a Cache.
type Option func(*Cache)

// WithContext sets the lifetime context every fetch runs under.
func WithContext(ctx context.Context) Option {
	return func(c *Cache) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty cache reading through fetch.
func New(fetch Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetch:     fetch,
		ctx:       context.Background(),
		logger:    slog.Default(),
		now:       time.Now,
		records:   make(map[Key]*record),
		observers: make(map[Key]int),
		listeners: make(map[int]func(Key)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Peek returns the current snapshot for key without fetching.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[key]
	if !ok {
		return Entry{Key: key}, false
	}
	return r.entry, true
}

// Fetch returns the entry for key, reading from the server unless the entry
// is fresh. Concurrent calls for one key share a single request. The request
// itself runs on the cache context; ctx only limits how long the caller waits.
// The returned error is the entry's fetch error, or ctx.Err().
func (c *Cache) Fetch(ctx context.Context, key Key) (Entry, error) {
	if e, ok := c.Peek(key); ok && e.Fresh() {
		return e, nil
	}
	ch := c.group.DoChan(key.String(), func() (any, error) {
		c.run(key)
		return nil, nil
	})
	select {
	case <-ch:
	case <-ctx.Done():
		e, _ := c.Peek(key)
		return e, ctx.Err()
	}
	e, _ := c.Peek(key)
	if e.Status == StatusError {
		return e, e.Err
	}
	return e, nil
}

func (c *Cache) run(key Key) {
	c.mu.Lock()
	r, ok := c.records[key]
	if !ok {
		r = &record{entry: Entry{Key: key}}
		c.records[key] = r
	}
	r.issued++
	token := r.issued
	r.entry.Status = StatusPending
	r.entry.Err = nil
	r.entry.Fetching = true
	c.mu.Unlock()
	c.notify(key)

	page, err := c.fetch(c.ctx, key)

	c.mu.Lock()
	if token <= r.applied {
		c.mu.Unlock()
		c.logger.Debug("dropping out-of-order response",
			slog.String("key", key.String()),
			slog.Uint64("token", token))
		return
	}
	r.applied = token
	e := &r.entry
	e.Fetching = r.issued > r.applied
	e.Stale = token <= r.staleUpTo
	e.UpdatedAt = c.now()
	if err != nil {
		e.Status = StatusError
		e.Err = err
		e.Data = nil
	} else {
		e.Status = StatusSuccess
		e.Err = nil
		e.Data = page
		e.LastSuccessful = page
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("fetch failed", slog.String("key", key.String()), slog.String("error", err.Error()))
	}
	c.notify(key)
}

// Invalidate marks every entry of family stale and refetches, in the
// background, each of those keys that is currently observed. Flights already
// running are forgotten so the refetch is a new request; their responses, if
// they land later, lose on freshness token. It returns the refetched keys.
func (c *Cache) Invalidate(family string) []Key {
	c.mu.Lock()
	var touched []Key
	for key, r := range c.records {
		if key.Family() != family {
			continue
		}
		r.entry.Stale = true
		r.staleUpTo = r.issued
		c.group.Forget(key.String())
		touched = append(touched, key)
	}
	var refetch []Key
	for key, n := range c.observers {
		if n > 0 && key.Family() == family {
			refetch = append(refetch, key)
		}
	}
	c.mu.Unlock()

	sortKeys(refetch)
	c.logger.Debug("invalidated",
		slog.String("family", family),
		slog.Int("entries", len(touched)),
		slog.Int("refetching", len(refetch)))

	for _, key := range touched {
		c.notify(key)
	}
	for _, key := range refetch {
		go func(k Key) { _, _ = c.Fetch(c.ctx, k) }(key)
	}
	return refetch
}

// Observe marks key as displayed until release is called. Observed keys are
// refetched on invalidation.
func (c *Cache) Observe(key Key) (release func()) {
	c.mu.Lock()
	c.observers[key]++
	c.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.observers[key]--; c.observers[key] <= 0 {
				delete(c.observers, key)
			}
		})
	}
}

// Observed reports whether anyone observes key.
func (c *Cache) Observed(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observers[key] > 0
}

// Subscribe registers fn to be called with the key of every entry change.
// fn runs on whatever goroutine made the change and must not block.
func (c *Cache) Subscribe(fn func(Key)) (cancel func()) {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify(key Key) {
	c.mu.Lock()
	fns := make([]func(Key), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
}
