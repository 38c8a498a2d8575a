package gateway

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/paperscout/research-search-service/internal/domain"
)

// MsgQueryTooShort is the public validation message for too-short queries.
const MsgQueryTooShort = "Query must be at least 2 characters"

var validate = validator.New()

// ParseQuery builds a validated SearchQuery from raw request parameters.
// The text is trimmed and must be at least 2 characters; the row count is
// clamped to [1, maxRows], with non-numeric or missing input falling back
// to defaultRows.
func ParseQuery(rawQuery, rawRows string, defaultRows, maxRows int) (domain.SearchQuery, error) {
	rows := defaultRows
	if rawRows != "" {
		if n, err := strconv.Atoi(rawRows); err == nil {
			rows = n
		}
	}
	if rows < 1 {
		rows = 1
	}
	if rows > maxRows {
		rows = maxRows
	}

	q := domain.SearchQuery{
		Text: strings.TrimSpace(rawQuery),
		Rows: rows,
	}

	if err := validate.Struct(q); err != nil {
		return domain.SearchQuery{}, domain.NewValidationError("q", MsgQueryTooShort)
	}

	return q, nil
}
