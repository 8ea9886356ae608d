package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request describes one API call.
type Request struct {
	Method      string     `validate:"required,oneof=GET POST PUT DELETE"`
	URL         string     `validate:"required"` // Absolute, or root-relative like "/releases/249504"
	Query       url.Values // Optional: merged into the URL's query string
	Body        any        // Optional: JSON-encoded request body
	AuthLevel   AuthLevel  `validate:"min=0,max=2"` // Minimum auth level the endpoint needs
	BypassQueue bool       // Skip the throttle queue
	Raw         bool       // Return the body as-is instead of expecting JSON

	auth        *Auth             // overrides the client's credentials for the handshake
	oauthParams map[string]string // extra oauth_* header parameters for the handshake
}

// Response is the result of a successful call.
type Response struct {
	StatusCode int
	Header     http.Header
	Data       []byte     // Response body; JSON unless the request was Raw
	RateLimit  *RateLimit // Rate limit state reported by the server, nil if absent
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// ResponseInfo describes one attempt that reached the server. It is passed
// to Config.OnResponse.
type ResponseInfo struct {
	Method     string
	URL        string
	StatusCode int
	RateLimit  *RateLimit
	Attempt    int           // 1 for the first attempt, 2 for the first retry, ...
	Duration   time.Duration // Time from sending the request to reading the body
}

// Do sends a request through the throttle queue and retry controller.
//
// It fails with *AuthError before any network call when the client's auth
// level is below req.AuthLevel, with *RateLimitExceededError when the queue's
// waiting stack is full, with *Error for HTTP statuses above 399 and with
// *TransportError for network failures.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("discogs: nil request")
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("discogs: invalid request: %w", err)
	}
	if have := c.Auth().level(); have < req.AuthLevel {
		return nil, &AuthError{Required: req.AuthLevel, Have: have}
	}

	return c.withRetry(ctx, req, func(ctx context.Context, attempt int) (*Response, error) {
		if !req.BypassQueue {
			if err := c.admit(ctx); err != nil {
				return nil, err
			}
		}
		return c.send(ctx, req, attempt)
	})
}

// admit blocks until the queue admits one call.
func (c *Client) admit(ctx context.Context) error {
	s := c.Settings()
	limit := s.RequestLimit
	if c.Authenticated(AuthConsumer) {
		limit = s.RequestLimitAuth
	}
	c.queue.SetLimits(limit, s.RequestLimitInterval)

	admitted := make(chan error, 1)
	abandoned := c.queue.Add(func(err error, status QueueStatus) {
		admitted <- err
	})

	select {
	case err := <-admitted:
		return err
	case <-abandoned:
		return ErrQueueCleared
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call sends a request and decodes the JSON response into out, if non-nil.
func (c *Client) call(ctx context.Context, req *Request, out any) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return resp, fmt.Errorf("discogs: failed to parse response: %w", err)
		}
	}
	return resp, nil
}
