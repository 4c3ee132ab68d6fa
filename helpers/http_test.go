package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scrapeerrors "sjsage522/reviewworker/pkg/errors"
)

func TestFetchWithRandomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	reader, err := FetchWithRandomHeaders(context.Background(), server.Client(), "test", server.URL)
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchWithRandomHeadersNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Café" in ISO-8859-1
		w.Write([]byte("<html><body>Caf\xe9</body></html>"))
	}))
	defer server.Close()

	reader, err := FetchWithRandomHeaders(context.Background(), nil, "test", server.URL)
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Café")
}

func TestFetchWithRandomHeadersStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := FetchWithRandomHeaders(context.Background(), nil, "test", server.URL)
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeStatus))
	assert.Contains(t, err.Error(), "unexpected status code: 500")
}

func TestFetchWithRandomHeadersRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := FetchWithRandomHeaders(context.Background(), nil, "test", server.URL)
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeRateLimit))
	assert.Contains(t, err.Error(), "1m0s")
}

func TestFetchWithRandomHeadersEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("  \n "))
	}))
	defer server.Close()

	_, err := FetchWithRandomHeaders(context.Background(), nil, "test", server.URL)
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeEmptyResponse))
}

func TestFetchWithRandomHeadersInvalidURL(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}
	_, err := FetchWithRandomHeaders(context.Background(), client, "test", "http://invalid.url.that.does.not.exist")
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeNetwork))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, retryAfter("30"))
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://api.scraperapi.com/?api_key=secret&url=https%3A%2F%2Fwww.g2.com%2Fproducts%2Facme")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "api_key=xxxxx")
	assert.Contains(t, got, "url=https%3A%2F%2Fwww.g2.com%2Fproducts%2Facme")

	assert.Equal(t, "https://www.g2.com/products/acme/reviews?page=2", RedactURL("https://www.g2.com/products/acme/reviews?page=2"))
}

func TestFetchWithRandomHeadersEmptyBodyHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := FetchWithRandomHeaders(context.Background(), nil, "test", server.URL+"/?api_key=secret")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}
