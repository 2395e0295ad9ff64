package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"Bingearr/shared/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testClient(rt roundTripFunc) *Client {
	return NewClient("test-key", "https://tmdb.test/3", 0, &http.Client{Transport: rt})
}

func TestShowChangesBuildsWindowQuery(t *testing.T) {
	var captured *http.Request
	c := testClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(200, `{"changes":[{"key":"overview","items":[{"id":"abc","action":"updated"}]}]}`), nil
	})

	start := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	records, err := c.ShowChanges(context.Background(), 900, start, end)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "overview", records[0].Key)

	require.NotNil(t, captured)
	assert.Equal(t, "/3/tv/900/changes", captured.URL.Path)
	q := captured.URL.Query()
	assert.Equal(t, "2026-08-28", q.Get("start_date"))
	assert.Equal(t, "2026-08-30", q.Get("end_date"))
	assert.Equal(t, "test-key", q.Get("api_key"))
}

func TestSeasonChangesUsesSeasonEndpoint(t *testing.T) {
	var captured *http.Request
	c := testClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(200, `{"changes":[]}`), nil
	})

	_, err := c.SeasonChanges(context.Background(), 4000, time.Now(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, "/3/tv/season/4000/changes", captured.URL.Path)
}

func TestRateLimitedResponseIsTyped(t *testing.T) {
	calls := 0
	c := testClient(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(429, `{"status_message":"limit"}`), nil
	})

	_, err := c.ShowChanges(context.Background(), 900, time.Now(), time.Now())

	require.Error(t, err)
	var ese *errs.ExternalServiceError
	require.True(t, errors.As(err, &ese))
	assert.True(t, ese.RateLimited())
	// No internal retry: exactly one request went out.
	assert.Equal(t, 1, calls)
}

func TestNotFoundIsTyped(t *testing.T) {
	c := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(404, `{"status_message":"not found"}`), nil
	})

	_, err := c.ShowDetails(context.Background(), 900)

	var ese *errs.ExternalServiceError
	require.True(t, errors.As(err, &ese))
	assert.True(t, ese.NotFound())
}

func TestServerErrorIsTyped(t *testing.T) {
	c := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(500, `oops`), nil
	})

	_, err := c.MovieChanges(context.Background(), 300, time.Now(), time.Now())

	var ese *errs.ExternalServiceError
	require.True(t, errors.As(err, &ese))
	assert.Equal(t, 500, ese.StatusCode)
}

func TestMalformedDetailsPayloadRejected(t *testing.T) {
	c := testClient(func(r *http.Request) (*http.Response, error) {
		// 200 with a body that is not the expected shape.
		return jsonResponse(200, `{"status_message":"ok"}`), nil
	})

	_, err := c.ShowDetails(context.Background(), 900)

	require.Error(t, err)
	var ese *errs.ExternalServiceError
	assert.True(t, errors.As(err, &ese))
}

func TestInvalidJSONRejected(t *testing.T) {
	c := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"changes": [`), nil
	})

	_, err := c.ShowChanges(context.Background(), 900, time.Now(), time.Now())

	var ese *errs.ExternalServiceError
	require.True(t, errors.As(err, &ese))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	c := testClient(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(503, ``), nil
	})

	for i := 0; i < 6; i++ {
		_, err := c.ShowChanges(context.Background(), 900, time.Now(), time.Now())
		require.Error(t, err)
	}

	// The sixth call failed fast without reaching the transport.
	assert.Equal(t, 5, calls)
}

func TestShowDetailsAppendsSubResources(t *testing.T) {
	var captured *http.Request
	c := testClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(200, `{"id":900,"name":"X"}`), nil
	})

	details, err := c.ShowDetails(context.Background(), 900)

	require.NoError(t, err)
	assert.Equal(t, "X", details.Name)
	assert.Equal(t, "content_ratings,watch/providers", captured.URL.Query().Get("append_to_response"))
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient("", "https://tmdb.test/3", 0, nil)

	assert.False(t, c.Configured())
	_, err := c.ShowChanges(context.Background(), 900, time.Now(), time.Now())
	require.Error(t, err)
}

func TestChangeValueToleratesScalar(t *testing.T) {
	body := `{"changes":[{"key":"overview","items":[
		{"id":"a","action":"updated","value":"plain text"},
		{"id":"b","action":"added","value":{"season_id":4000,"season_number":2}}
	]}]}`
	c := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, body), nil
	})

	records, err := c.ShowChanges(context.Background(), 900, time.Now(), time.Now())

	require.NoError(t, err)
	require.Len(t, records[0].Items, 2)
	assert.Zero(t, records[0].Items[0].Value.SeasonID)
	assert.Equal(t, 4000, records[0].Items[1].Value.SeasonID)
	assert.Equal(t, 2, records[0].Items[1].Value.SeasonNumber)
}
