package crossref

import (
	"strconv"
	"strings"

	"github.com/paperscout/research-search-service/internal/domain"
)

// NormalizeWork maps a raw CrossRef work into the canonical ResearchItem.
// It is pure and total: every field access is defaulted, so no input
// shape can make it fail. Missing fields resolve to the empty string.
func NormalizeWork(w Work) domain.ResearchItem {
	authors := make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		// Empty trimmed names are kept, matching the upstream author count.
		authors = append(authors, strings.TrimSpace(a.Given+" "+a.Family))
	}

	year := ""
	if y := w.Issued.Year(); y != 0 {
		year = strconv.Itoa(y)
	} else if y := w.Created.Year(); y != 0 {
		year = strconv.Itoa(y)
	}

	return domain.ResearchItem{
		Title:    w.Title.First(),
		Authors:  authors,
		Journal:  w.ContainerTitle.First(),
		Year:     year,
		DOI:      w.DOI,
		Abstract: w.Abstract,
		URL:      w.URL,
	}
}

// NormalizeWorks maps every raw work, preserving upstream order.
func NormalizeWorks(works []Work) []domain.ResearchItem {
	items := make([]domain.ResearchItem, len(works))
	for i, w := range works {
		items[i] = NormalizeWork(w)
	}
	return items
}
