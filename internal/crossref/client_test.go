package crossref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperscout/research-search-service/internal/domain"
)

const worksBody = `{
	"status": "ok",
	"message": {
		"total-results": 1234,
		"items": [
			{
				"title": ["Attention Is All You Need"],
				"author": [{"given": "Ashish", "family": "Vaswani"}],
				"container-title": ["NlpS"],
				"issued": {"date-parts": [[2017]]},
				"DOI": "10.1000/demo",
				"URL": "https://doi.org/10.1000/demo"
			}
		]
	}
}`

func TestClient_FetchWorks_Success(t *testing.T) {
	var gotQuery, gotRows, gotMailto string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotRows = r.URL.Query().Get("rows")
		gotMailto = r.URL.Query().Get("mailto")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(worksBody))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Mailto: "ops@example.org"})

	msg, err := c.FetchWorks(context.Background(), "attention", 20)
	require.NoError(t, err)

	assert.Equal(t, "attention", gotQuery)
	assert.Equal(t, "20", gotRows)
	assert.Equal(t, "ops@example.org", gotMailto)
	assert.Equal(t, 1234, msg.TotalResults)
	require.Len(t, msg.Items, 1)
	assert.Equal(t, "Attention Is All You Need", msg.Items[0].Title.First())
}

func TestClient_FetchWorks_OmitsMailtoWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("mailto"))
		_, _ = w.Write([]byte(`{"status":"ok","message":{"total-results":0,"items":[]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	_, err := c.FetchWorks(context.Background(), "q", 5)
	require.NoError(t, err)
}

func TestClient_FetchWorks_NonOKStatusMapsToUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	_, err := c.FetchWorks(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFailure))

	var upErr *domain.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusBadGateway, upErr.StatusCode)
	assert.Contains(t, upErr.Message, "upstream exploded")
}

func TestClient_FetchWorks_SlowUpstreamMapsToTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := c.FetchWorks(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamTimeout))
}

func TestClient_FetchWorks_ContextDeadlineMapsToTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchWorks(ctx, "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamTimeout))
}

func TestClient_FetchWorks_ConnectionRefusedMapsToFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(Config{BaseURL: srv.URL})

	_, err := c.FetchWorks(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFailure))
}

func TestClient_FetchWorks_MalformedBodyMapsToFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok", "message": `))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	_, err := c.FetchWorks(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFailure))
}

func TestClient_UserAgentIncludesMailto(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"status":"ok","message":{"total-results":0,"items":[]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Mailto: "ops@example.org"})

	_, err := c.FetchWorks(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Contains(t, gotUA, "mailto:ops@example.org")
}
