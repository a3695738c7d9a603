// Package feed queries the remote job-listing feed one page at a time.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/model"
)

const (
	defaultBaseURL = "https://jobs-api14.p.rapidapi.com/list"
	defaultHost    = "jobs-api14.p.rapidapi.com"
	defaultTimeout = 15 * time.Second
)

// Config defines feed client settings.
type Config struct {
	BaseURL    string
	Host       string // sent as X-RapidAPI-Host
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client fetches pages from the feed. It keeps no state between calls;
// the page to fetch is carried in QueryParams.PageIndex.
type Client struct {
	baseURL string
	host    string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a Client. Every request is bounded by cfg.Timeout.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("feed: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		host:    host,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// feedResponse mirrors the top-level feed JSON. Jobs is a pointer so a
// missing field can be told apart from an empty page.
type feedResponse struct {
	Jobs     *[]feedJob `json:"jobs"`
	JobCount int        `json:"jobCount"`
}

type feedJob struct {
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	EmploymentType string         `json:"employmentType"`
	DatePosted     string         `json:"datePosted"`
	JobProviders   []feedProvider `json:"jobProviders"`
}

type feedProvider struct {
	JobProvider string `json:"jobProvider"`
	URL         string `json:"url"`
}

// FetchPage performs exactly one request for params.PageIndex. There is no
// retry; failures come back as UNREACHABLE, UNAUTHORIZED or
// MALFORMED_RESPONSE.
func (c *Client) FetchPage(ctx context.Context, params model.QueryParams) (model.JobPage, error) {
	reqURL := c.baseURL + "?" + EncodeQuery(params).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.JobPage{}, apperrors.Unreachable("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.client.Do(req)
	if err != nil {
		return model.JobPage{}, apperrors.Unreachable("http GET", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.JobPage{}, apperrors.Unreachable("read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.JobPage{}, apperrors.Unauthorized(fmt.Sprintf("feed returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return model.JobPage{}, apperrors.Unreachable(fmt.Sprintf("feed returned %d: %s", resp.StatusCode, truncate(body, 512)), nil)
	}

	var payload feedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.JobPage{}, apperrors.MalformedResponse("json unmarshal", err)
	}
	if payload.Jobs == nil {
		return model.JobPage{}, apperrors.MalformedResponse("response has no jobs field", nil)
	}

	listings := make([]model.Listing, 0, len(*payload.Jobs))
	for _, j := range *payload.Jobs {
		listings = append(listings, toListing(j))
	}

	return model.JobPage{Listings: listings, Total: payload.JobCount}, nil
}

// EncodeQuery builds the feed's query string. Field names are the
// provider's wire contract.
func EncodeQuery(p model.QueryParams) url.Values {
	v := url.Values{}
	v.Set("query", p.Keywords)
	v.Set("location", p.Location)
	v.Set("distance", p.FormatDistance())
	v.Set("language", p.Language)
	v.Set("remoteOnly", strconv.FormatBool(p.RemoteOnly))
	v.Set("datePosted", string(p.DatePosted))
	v.Set("employmentTypes", p.JoinedEmploymentTypes())
	v.Set("index", strconv.Itoa(p.PageIndex))
	return v
}

// toListing keeps the feed's values verbatim; the link is the first
// provider's url.
func toListing(j feedJob) model.Listing {
	l := model.Listing{
		Title:          j.Title,
		Company:        j.Company,
		EmploymentType: j.EmploymentType,
		DatePosted:     j.DatePosted,
	}
	if len(j.JobProviders) > 0 {
		l.URL = j.JobProviders[0].URL
	}
	return l
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
