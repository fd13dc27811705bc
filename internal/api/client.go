package api

import (
	"context"
	"fmt"
	"time"
	"wvw-dashboard/internal/constants"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// Client performs unscheduled GETs against the GW2 API. Callers go through
// the scheduler instead of using it directly.
type Client struct {
	client *fasthttp.Client
}

type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d for %s", e.Status, e.URL)
}

func NewClient() *Client {
	return &Client{
		client: &fasthttp.Client{
			Name:                "wvw-dashboard",
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Get fetches url and returns a copy of the body. Any status other than 200
// is an error.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{URL: url, Status: resp.StatusCode()}
	}

	body := resp.Body()
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

// Decode unmarshals a response body into T.
func Decode[T any](body []byte) (T, error) {
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}
