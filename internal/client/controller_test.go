package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperscout/research-search-service/internal/domain"
	"github.com/paperscout/research-search-service/internal/table"
)

const testDebounce = 20 * time.Millisecond

// scriptedSearcher records queries and answers each one from a script
// keyed by query text. Calls block until released when gate is set.
type scriptedSearcher struct {
	mu      sync.Mutex
	queries []string

	results map[string]*domain.SearchResult
	errs    map[string]error

	// gate, when non-nil, is received from once per call before
	// answering. Lets tests order overlapping responses.
	gate map[string]chan struct{}
}

func newScriptedSearcher() *scriptedSearcher {
	return &scriptedSearcher{
		results: make(map[string]*domain.SearchResult),
		errs:    make(map[string]error),
		gate:    make(map[string]chan struct{}),
	}
}

func (s *scriptedSearcher) Search(ctx context.Context, query string, rows int) (*domain.SearchResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	gate := s.gate[query]
	result := s.results[query]
	err := s.errs[query]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &domain.SearchResult{}
	}
	return result, nil
}

func (s *scriptedSearcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

func resultWith(total int, titles ...string) *domain.SearchResult {
	items := make([]domain.ResearchItem, len(titles))
	for i, title := range titles {
		items[i] = domain.ResearchItem{Title: title}
	}
	return &domain.SearchResult{Total: total, Results: items}
}

// settled waits until the controller leaves StateSearching and StateIdle.
func settled(t *testing.T, c *Controller) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, _ := c.State()
		if state == StateSettled || state == StateFailed {
			return state
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("controller did not settle in time")
	return StateIdle
}

func newTestController(s Searcher, opts ...Option) *Controller {
	opts = append([]Option{WithDebounce(testDebounce)}, opts...)
	return NewController(s, zerolog.Nop(), opts...)
}

func TestController_DebounceCollapsesRapidEdits(t *testing.T) {
	s := newScriptedSearcher()
	s.results["quantum"] = resultWith(1, "a")
	c := newTestController(s)
	defer c.Close()

	c.SetQuery("qu")
	c.SetQuery("quan")
	c.SetQuery("quantum")

	require.Equal(t, StateSettled, settled(t, c))
	assert.Equal(t, []string{"quantum"}, s.calls())
}

func TestController_ShortQueryNotDispatched(t *testing.T) {
	s := newScriptedSearcher()
	c := newTestController(s)
	defer c.Close()

	c.SetQuery("q")
	time.Sleep(5 * testDebounce)

	state, _ := c.State()
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, s.calls())
}

func TestController_RepeatQueryNotDispatched(t *testing.T) {
	s := newScriptedSearcher()
	s.results["quantum"] = resultWith(1, "a")
	c := newTestController(s)
	defer c.Close()

	c.SetQuery("quantum")
	require.Equal(t, StateSettled, settled(t, c))

	c.SetQuery("quantum")
	time.Sleep(5 * testDebounce)

	assert.Equal(t, []string{"quantum"}, s.calls())
}

func TestController_ChangedQueryDispatchedAgain(t *testing.T) {
	s := newScriptedSearcher()
	s.results["first query"] = resultWith(1, "a")
	s.results["second query"] = resultWith(1, "b")
	c := newTestController(s)
	defer c.Close()

	c.SetQuery("first query")
	settled(t, c)
	c.SetQuery("second query")
	settled(t, c)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && len(s.calls()) < 2 {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, []string{"first query", "second query"}, s.calls())
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	s := newScriptedSearcher()
	slowGate := make(chan struct{})
	s.gate["slow query"] = slowGate
	s.results["slow query"] = resultWith(1, "stale")
	s.results["fast query"] = resultWith(1, "fresh")
	c := newTestController(s)
	defer c.Close()

	c.SearchNow("slow query")
	c.SearchNow("fast query")
	require.Equal(t, StateSettled, settled(t, c))

	// The slow response lands after the fast one and must not
	// overwrite it.
	close(slowGate)
	time.Sleep(50 * time.Millisecond)

	state, err := c.State()
	assert.Equal(t, StateSettled, state)
	assert.NoError(t, err)
	require.Len(t, c.Results(), 1)
	assert.Equal(t, "fresh", c.Results()[0].Title)
}

func TestController_FailureKeepsPreviousResults(t *testing.T) {
	s := newScriptedSearcher()
	s.results["good query"] = resultWith(2, "a", "b")
	s.errs["bad query"] = errors.New("search failed: Upstream timeout")
	c := newTestController(s)
	defer c.Close()

	c.SearchNow("good query")
	require.Equal(t, StateSettled, settled(t, c))

	c.SearchNow("bad query")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if state, _ := c.State(); state == StateFailed {
			break
		}
		time.Sleep(time.Millisecond)
	}

	state, err := c.State()
	require.Equal(t, StateFailed, state)
	assert.ErrorContains(t, err, "Upstream timeout")
	assert.Len(t, c.Results(), 2)
	assert.Equal(t, 2, c.Total())
}

func TestController_NewResultsResetPageKeepSort(t *testing.T) {
	s := newScriptedSearcher()
	s.results["first query"] = resultWith(15, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o")
	s.results["second query"] = resultWith(2, "zz", "aa")
	c := newTestController(s)
	defer c.Close()

	c.SearchNow("first query")
	require.Equal(t, StateSettled, settled(t, c))
	c.Sort(table.SortTitle, table.Descending)
	c.NextPage()
	page, _ := c.Page()
	require.Equal(t, 1, page)

	c.SearchNow("second query")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && c.Total() != 2 {
		time.Sleep(time.Millisecond)
	}

	page, _ = c.Page()
	assert.Equal(t, 0, page)
	visible := c.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "zz", visible[0].Title)
	assert.Equal(t, "aa", visible[1].Title)
}

func TestController_OnChangeFires(t *testing.T) {
	s := newScriptedSearcher()
	s.results["quantum"] = resultWith(1, "a")
	fired := make(chan struct{}, 1)
	c := newTestController(s, WithOnChange(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}))
	defer c.Close()

	c.SearchNow("quantum")

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange callback did not fire")
	}
}

func TestController_CloseStopsPendingSearch(t *testing.T) {
	s := newScriptedSearcher()
	c := newTestController(s)

	c.SetQuery("quantum")
	c.Close()
	time.Sleep(5 * testDebounce)

	assert.Empty(t, s.calls())
}
