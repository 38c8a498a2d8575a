package client

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/paperscout/research-search-service/internal/domain"
	"github.com/paperscout/research-search-service/internal/table"
)

// State describes where the controller is in the search lifecycle.
type State int

const (
	// StateIdle means no search has produced a result yet.
	StateIdle State = iota
	// StateSearching means a search is in flight.
	StateSearching
	// StateSettled means the latest search finished successfully.
	StateSettled
	// StateFailed means the latest search failed. The previous
	// results are still available.
	StateFailed
)

// DefaultDebounce is how long input must be quiet before a search is
// dispatched.
const DefaultDebounce = 500 * time.Millisecond

// Searcher runs one search. Implemented by APIClient.
type Searcher interface {
	Search(ctx context.Context, query string, rows int) (*domain.SearchResult, error)
}

// Controller turns a stream of query edits into debounced searches and
// keeps the table view of the latest successful result. All methods
// are safe for concurrent use.
type Controller struct {
	searcher Searcher
	logger   zerolog.Logger

	debounce time.Duration
	rows     int

	// onChange, when set, is called after every state transition,
	// outside the controller lock.
	onChange func()

	mu        sync.Mutex
	timer     *time.Timer
	scheduled string
	lastSent  string
	seq       uint64
	state     State
	lastErr   error
	total     int
	view      *table.View
	closed    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithRows sets the number of results requested per search.
func WithRows(rows int) Option {
	return func(c *Controller) { c.rows = rows }
}

// WithOnChange registers a callback fired after each state change.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a controller around the given searcher.
func NewController(searcher Searcher, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		logger:   logger.With().Str("component", "search-controller").Logger(),
		debounce: DefaultDebounce,
		view:     table.NewView(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery records a query edit. A search is dispatched once the
// input has been quiet for the debounce interval. Queries shorter
// than two characters and repeats of the last dispatched query are
// ignored.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.scheduled = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(text)
	})
}

// SearchNow dispatches a search for text immediately, bypassing the
// debounce and dedup. Used for the initial query.
func (c *Controller) SearchNow(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.scheduled = text
	seq, ok := c.beginLocked(text, true)
	c.mu.Unlock()
	if ok {
		go c.run(seq, text)
	}
}

// fire runs after the debounce expires for text.
func (c *Controller) fire(text string) {
	c.mu.Lock()
	if c.closed || text != c.scheduled {
		c.mu.Unlock()
		return
	}
	seq, ok := c.beginLocked(text, false)
	c.mu.Unlock()
	if ok {
		go c.run(seq, text)
	}
}

// beginLocked applies the gate and dedup checks and, if the search
// should go out, bumps the sequence and moves to StateSearching.
func (c *Controller) beginLocked(text string, force bool) (uint64, bool) {
	if utf8.RuneCountInString(text) < 2 {
		return 0, false
	}
	if !force && text == c.lastSent {
		return 0, false
	}
	c.lastSent = text
	c.seq++
	c.state = StateSearching
	return c.seq, true
}

func (c *Controller) run(seq uint64, text string) {
	result, err := c.searcher.Search(context.Background(), text, c.rows)

	c.mu.Lock()
	// A newer search was dispatched while this one was in flight.
	if seq != c.seq || c.closed {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.state = StateFailed
		c.lastErr = err
		c.logger.Warn().Err(err).Str("query", text).Msg("search failed")
	} else {
		c.state = StateSettled
		c.lastErr = nil
		c.total = result.Total
		c.view.Replace(result.Results)
	}
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// State reports the controller state and the last error, if any.
func (c *Controller) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastErr
}

// Total reports the total match count of the latest successful search.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Visible returns a copy of the items on the current page.
func (c *Controller) Visible() []domain.ResearchItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := c.view.Visible()
	out := make([]domain.ResearchItem, len(page))
	copy(out, page)
	return out
}

// Results returns a copy of every item in the current view order.
func (c *Controller) Results() []domain.ResearchItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := c.view.All()
	out := make([]domain.ResearchItem, len(all))
	copy(out, all)
	return out
}

// Sort orders the view by the given column.
func (c *Controller) Sort(key table.SortKey, dir table.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Sort(key, dir)
}

// Page reports the current zero-based page and the page count.
func (c *Controller) Page() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Page(), c.view.PageCount()
}

// SetPage moves to the given zero-based page, clamped to the valid
// range.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetPage(page)
}

// NextPage advances one page.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.NextPage()
}

// PrevPage moves back one page.
func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.PrevPage()
}

// SetPageSize changes the page size.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetPageSize(size)
}

// PageSize reports the current page size.
func (c *Controller) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.PageSize()
}

// Close stops any pending debounce timer. In-flight responses are
// discarded after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
