// Package table holds the presentation state for a page of search
// results: sorting by column and fixed-size pagination.
package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paperscout/research-search-service/internal/domain"
)

// SortKey identifies the column a view is ordered by.
type SortKey string

const (
	SortNone    SortKey = ""
	SortTitle   SortKey = "title"
	SortAuthors SortKey = "authors"
	SortJournal SortKey = "journal"
	SortYear    SortKey = "year"
	SortDOI     SortKey = "doi"
)

// Direction is the sort direction for the active column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// DefaultPageSize matches the default result page shown to the user.
const DefaultPageSize = 10

// View is the sorted, paginated projection of one result set. The
// zero value is an empty, unsorted view.
type View struct {
	items []domain.ResearchItem

	sortKey   SortKey
	direction Direction

	page     int
	pageSize int
}

// NewView creates a view over items with the default page size. The
// slice is copied so later sorts do not disturb the caller's order.
func NewView(items []domain.ResearchItem) *View {
	v := &View{
		items:    make([]domain.ResearchItem, len(items)),
		pageSize: DefaultPageSize,
	}
	copy(v.items, items)
	return v
}

// Replace swaps in a new result set. The current page resets to the
// first page; the active sort, if any, is re-applied to the new items.
func (v *View) Replace(items []domain.ResearchItem) {
	v.items = make([]domain.ResearchItem, len(items))
	copy(v.items, items)
	v.page = 0
	if v.sortKey != SortNone {
		v.applySort()
	}
}

// Sort orders the view by the given column. Sorting is stable: items
// that compare equal keep their upstream relevance order.
func (v *View) Sort(key SortKey, dir Direction) {
	v.sortKey = key
	v.direction = dir
	if key == SortNone {
		return
	}
	v.applySort()
}

// SortKey reports the active sort column, SortNone when unsorted.
func (v *View) SortKey() SortKey { return v.sortKey }

// Direction reports the active sort direction.
func (v *View) Direction() Direction { return v.direction }

func (v *View) applySort() {
	less := comparator(v.sortKey)
	if less == nil {
		return
	}
	asc := v.direction == Ascending
	sort.SliceStable(v.items, func(i, j int) bool {
		if asc {
			return less(v.items[i], v.items[j])
		}
		return less(v.items[j], v.items[i])
	})
}

// comparator returns the strict less function for a column.
func comparator(key SortKey) func(a, b domain.ResearchItem) bool {
	switch key {
	case SortTitle:
		return func(a, b domain.ResearchItem) bool {
			return lessFold(a.Title, b.Title)
		}
	case SortAuthors:
		return func(a, b domain.ResearchItem) bool {
			return lessFold(joinAuthors(a.Authors), joinAuthors(b.Authors))
		}
	case SortJournal:
		return func(a, b domain.ResearchItem) bool {
			return lessFold(a.Journal, b.Journal)
		}
	case SortYear:
		return lessYear
	case SortDOI:
		return func(a, b domain.ResearchItem) bool {
			return lessFold(a.DOI, b.DOI)
		}
	default:
		return nil
	}
}

func lessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// lessYear orders numeric years numerically and pushes non-numeric
// values, including the empty string, after every numeric one.
func lessYear(a, b domain.ResearchItem) bool {
	ay, aok := parseYear(a.Year)
	by, bok := parseYear(b.Year)
	switch {
	case aok && bok:
		return ay < by
	case aok:
		return true
	case bok:
		return false
	default:
		return a.Year < b.Year
	}
}

func parseYear(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}

// SetPageSize changes the page size and resets to the first page.
// Sizes below 1 fall back to the default.
func (v *View) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	v.pageSize = size
	v.page = 0
}

// PageSize reports the current page size.
func (v *View) PageSize() int { return v.pageSize }

// Page reports the current zero-based page index.
func (v *View) Page() int { return v.page }

// PageCount reports the number of pages, at least 1.
func (v *View) PageCount() int {
	if len(v.items) == 0 {
		return 1
	}
	return (len(v.items) + v.pageSize - 1) / v.pageSize
}

// SetPage moves to the given zero-based page, clamped to the valid
// range.
func (v *View) SetPage(page int) {
	last := v.PageCount() - 1
	if page < 0 {
		page = 0
	}
	if page > last {
		page = last
	}
	v.page = page
}

// NextPage advances one page, stopping at the last page.
func (v *View) NextPage() { v.SetPage(v.page + 1) }

// PrevPage moves back one page, stopping at the first page.
func (v *View) PrevPage() { v.SetPage(v.page - 1) }

// Len reports the total number of items in the view.
func (v *View) Len() int { return len(v.items) }

// Visible returns the items on the current page. The returned slice
// aliases the view's internal order and must not be modified.
func (v *View) Visible() []domain.ResearchItem {
	start := v.page * v.pageSize
	if start >= len(v.items) {
		return nil
	}
	end := start + v.pageSize
	if end > len(v.items) {
		end = len(v.items)
	}
	return v.items[start:end]
}

// All returns every item in the current order, for export.
func (v *View) All() []domain.ResearchItem {
	return v.items
}
