package proxy

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sjsage522/reviewworker/helpers"
	"sjsage522/reviewworker/logger"
	scrapeerrors "sjsage522/reviewworker/pkg/errors"
)

// RenderClient fetches pages through a rendering proxy service that takes the
// target page as a query parameter and returns its rendered HTML.
type RenderClient struct {
	endpoint string
	apiKey   string
	render   bool
	source   string
	client   *http.Client
}

// NewRenderClient creates a client for the rendering service at endpoint
func NewRenderClient(endpoint, apiKey string, render bool, timeout time.Duration) *RenderClient {
	return &RenderClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		render:   render,
		source:   "render",
		client:   &http.Client{Timeout: timeout},
	}
}

// ForSource returns a copy of the client whose errors are tagged with source
func (c *RenderClient) ForSource(source string) *RenderClient {
	clone := *c
	clone.source = source
	return &clone
}

// RequestURL builds the service URL that fetches target
func (c *RenderClient) RequestURL(target string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	query := u.Query()
	query.Set("api_key", c.apiKey)
	query.Set("url", target)
	if c.render {
		query.Set("render", "true")
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Fetch retrieves target through the service and returns its UTF-8 HTML
func (c *RenderClient) Fetch(ctx context.Context, target string) (io.Reader, error) {
	if strings.TrimSpace(target) == "" {
		return nil, scrapeerrors.NewConfiguration("empty target URL", nil)
	}
	requestURL, err := c.RequestURL(target)
	if err != nil {
		return nil, scrapeerrors.NewConfiguration("invalid render service URL", err)
	}

	logger.ForSource(c.source).Debug().
		Str("target", target).
		Bool("render", c.render).
		Msg("Fetching page through render service")

	return helpers.FetchWithRandomHeaders(ctx, c.client, c.source, requestURL)
}
