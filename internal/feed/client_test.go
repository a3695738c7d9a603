package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestFetchPage_SendsWireContract(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	})

	params := model.DefaultQueryParams("Machine Learning", "Kyiv, Ukraine")
	params.PageIndex = 2
	_, err := c.FetchPage(context.Background(), params)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "Machine Learning", q.Get("query"))
	assert.Equal(t, "Kyiv, Ukraine", q.Get("location"))
	assert.Equal(t, "1.0", q.Get("distance"))
	assert.Equal(t, "en_GB", q.Get("language"))
	assert.Equal(t, "false", q.Get("remoteOnly"))
	assert.Equal(t, "month", q.Get("datePosted"))
	assert.Equal(t, "fulltime;parttime;intern;contractor", q.Get("employmentTypes"))
	assert.Equal(t, "2", q.Get("index"))
	assert.Equal(t, "test-key", got.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, "jobs-api14.p.rapidapi.com", got.Header.Get("X-RapidAPI-Host"))
}

func TestFetchPage_DecodesListings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"jobCount": 7,
			"jobs": [
				{"title":"ML Engineer","company":"Acme","employmentType":"fulltime","datePosted":"2024-01-01",
				 "jobProviders":[{"jobProvider":"LinkedIn","url":"http://x"},{"jobProvider":"Indeed","url":"http://y"}]},
				{"title":"Data Scientist","company":"Beta","employmentType":"parttime","datePosted":"2024-01-02",
				 "jobProviders":[]}
			]}`))
	})

	page, err := c.FetchPage(context.Background(), model.DefaultQueryParams("ml", "kyiv"))
	require.NoError(t, err)
	require.Len(t, page.Listings, 2)

	assert.Equal(t, model.Listing{
		Title: "ML Engineer", Company: "Acme", EmploymentType: "fulltime",
		DatePosted: "2024-01-01", URL: "http://x",
	}, page.Listings[0])
	assert.Empty(t, page.Listings[1].URL)
	assert.Equal(t, 7, page.Total)
}

func TestFetchPage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperrors.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, apperrors.ErrTypeUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, apperrors.ErrTypeUnauthorized},
		{"server error", http.StatusBadGateway, `oops`, apperrors.ErrTypeUnreachable},
		{"rate limited", http.StatusTooManyRequests, `{}`, apperrors.ErrTypeUnreachable},
		{"not json", http.StatusOK, `<html>`, apperrors.ErrTypeMalformedResponse},
		{"missing jobs", http.StatusOK, `{"message":"nope"}`, apperrors.ErrTypeMalformedResponse},
		{"null jobs", http.StatusOK, `{"jobs":null}`, apperrors.ErrTypeMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.FetchPage(context.Background(), model.DefaultQueryParams("a", "b"))
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.TypeOf(err))
		})
	}
}

func TestFetchPage_TimeoutIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchPage(context.Background(), model.DefaultQueryParams("a", "b"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnreachable))
}

func TestCacheKey_StableAndPageSensitive(t *testing.T) {
	p := model.DefaultQueryParams("go", "berlin")
	assert.Equal(t, CacheKey(p), CacheKey(p))

	next := p
	next.PageIndex++
	assert.NotEqual(t, CacheKey(p), CacheKey(next))
}
