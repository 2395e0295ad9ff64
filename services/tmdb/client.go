// Package tmdb wraps the catalog provider's changes and details endpoints.
// The client spaces consecutive calls to respect upstream rate limits and
// trips a circuit breaker when the provider is down, but it never retries:
// a failed item is simply picked up again by the next scheduled pass.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Bingearr/shared/errs"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient builds a catalog client. itemDelay is the fixed minimum spacing
// between consecutive calls; zero disables spacing (tests).
func NewClient(apiKey, baseURL string, itemDelay time.Duration, httpc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if itemDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(itemDelay), 1)
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpc:   httpc,
		limiter: limiter,
		breaker: breaker,
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// doGET issues one rate-limit-spaced request and decodes the JSON body into
// dest. Any failure comes back as an *errs.ExternalServiceError.
func (c *Client) doGET(ctx context.Context, op, endpoint string, query url.Values, dest any) error {
	if !c.Configured() {
		return errs.External(op, fmt.Errorf("tmdb api key not configured"))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errs.External(op, err)
	}

	u := c.baseURL + endpoint
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+query.Encode(), nil)
	if err != nil {
		return errs.External(op, err)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			r.Body.Close()
			return nil, &errs.ExternalServiceError{Op: op, StatusCode: r.StatusCode}
		}
		return r, nil
	})
	if err != nil {
		var ese *errs.ExternalServiceError
		if errors.As(err, &ese) {
			return ese
		}
		return errs.External(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errs.ExternalStatus(op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errs.External(op, fmt.Errorf("decode payload: %w", err))
	}
	return nil
}

func changeWindow(start, end time.Time) url.Values {
	q := url.Values{}
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	return q
}

// ShowChanges returns the change records for a series in the given window.
func (c *Client) ShowChanges(ctx context.Context, tmdbID int, start, end time.Time) ([]ChangeRecord, error) {
	var payload changesResponse
	op := fmt.Sprintf("tmdb: show %d changes", tmdbID)
	if err := c.doGET(ctx, op, fmt.Sprintf("/tv/%d/changes", tmdbID), changeWindow(start, end), &payload); err != nil {
		return nil, err
	}
	return payload.Changes, nil
}

// SeasonChanges returns the change records for a single season. The id here
// is the season's own external id, not the show's.
func (c *Client) SeasonChanges(ctx context.Context, seasonTMDBID int, start, end time.Time) ([]ChangeRecord, error) {
	var payload changesResponse
	op := fmt.Sprintf("tmdb: season %d changes", seasonTMDBID)
	if err := c.doGET(ctx, op, fmt.Sprintf("/tv/season/%d/changes", seasonTMDBID), changeWindow(start, end), &payload); err != nil {
		return nil, err
	}
	return payload.Changes, nil
}

// MovieChanges returns the change records for a movie in the given window.
func (c *Client) MovieChanges(ctx context.Context, tmdbID int, start, end time.Time) ([]ChangeRecord, error) {
	var payload changesResponse
	op := fmt.Sprintf("tmdb: movie %d changes", tmdbID)
	if err := c.doGET(ctx, op, fmt.Sprintf("/movie/%d/changes", tmdbID), changeWindow(start, end), &payload); err != nil {
		return nil, err
	}
	return payload.Changes, nil
}

// ShowDetails fetches the full series payload with US ratings and providers
// appended.
func (c *Client) ShowDetails(ctx context.Context, tmdbID int) (*ShowDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "content_ratings,watch/providers")

	var payload ShowDetails
	op := fmt.Sprintf("tmdb: show %d details", tmdbID)
	if err := c.doGET(ctx, op, fmt.Sprintf("/tv/%d", tmdbID), q, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, errs.External(op, fmt.Errorf("payload missing id"))
	}
	return &payload, nil
}

// SeasonDetails fetches one season of a show, including its episode list.
func (c *Client) SeasonDetails(ctx context.Context, showTMDBID, seasonNumber int) (*SeasonDetails, error) {
	var payload SeasonDetails
	op := fmt.Sprintf("tmdb: show %d season %d details", showTMDBID, seasonNumber)
	if err := c.doGET(ctx, op, fmt.Sprintf("/tv/%d/season/%d", showTMDBID, seasonNumber), nil, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, errs.External(op, fmt.Errorf("payload missing id"))
	}
	return &payload, nil
}

// MovieDetails fetches the full movie payload with US certifications and
// providers appended.
func (c *Client) MovieDetails(ctx context.Context, tmdbID int) (*MovieDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "release_dates,watch/providers")

	var payload MovieDetails
	op := fmt.Sprintf("tmdb: movie %d details", tmdbID)
	if err := c.doGET(ctx, op, fmt.Sprintf("/movie/%d", tmdbID), q, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, errs.External(op, fmt.Errorf("payload missing id"))
	}
	return &payload, nil
}
