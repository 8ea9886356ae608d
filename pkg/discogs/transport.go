package discogs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// send makes a single HTTP request to the Discogs API.
//
// It handles:
// - URL resolution against the configured host
// - Request headers (User-Agent, Accept, Authorization, Content-Type)
// - Reading the full response body
// - Mapping error statuses to *Error
//
// It does not queue or retry; Do layers both on top.
func (c *Client) send(ctx context.Context, req *Request, attempt int) (*Response, error) {
	s := c.Settings()

	fullURL, err := c.resolveURL(s, req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("discogs: failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("discogs: failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", s.UserAgent)
	httpReq.Header.Set("Accept", s.acceptHeader())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	auth := req.auth
	if auth == nil {
		auth = c.Auth()
	}
	if auth != nil {
		httpReq.Header.Set("Authorization", c.signer.authorization(req.Method, fullURL, auth, req.oauthParams))
	}

	c.logDebugf("discogs: %s %s (attempt %d)", req.Method, fullURL, attempt)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	rateLimit := ParseRateLimit(resp.Header)
	if c.onResponse != nil {
		c.onResponse(ResponseInfo{
			Method:     req.Method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			RateLimit:  rateLimit,
			Attempt:    attempt,
			Duration:   c.clock.Now().Sub(start),
		})
	}

	if resp.StatusCode > 399 {
		apiErr := &Error{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.StatusCode),
			RateLimit:  rateLimit,
		}
		c.logDebugf("discogs: %s %s failed: %v", req.Method, fullURL, apiErr)
		return nil, apiErr
	}

	if !req.Raw && len(data) > 0 && !json.Valid(data) {
		return nil, errors.New("discogs: failed to parse response: body is not valid JSON")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       data,
		RateLimit:  rateLimit,
	}, nil
}

// resolveURL joins root-relative URLs to the API root and merges the query.
func (c *Client) resolveURL(s Settings, req *Request) (string, error) {
	raw := req.URL
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimRight(c.rootURL(s), "/") + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("discogs: invalid request URL %q: %w", req.URL, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("discogs: request URL %q must be absolute or start with /", req.URL)
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// errorMessage extracts the "message" field of an error body, falling back
// to the HTTP status text.
func errorMessage(data []byte, status int) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unknown error"
}
