package discogs

import (
	"net/http"
	"strconv"
)

// Rate-limit response headers.
const (
	HeaderRateLimit          = "X-Discogs-Ratelimit"
	HeaderRateLimitUsed      = "X-Discogs-Ratelimit-Used"
	HeaderRateLimitRemaining = "X-Discogs-Ratelimit-Remaining"
)

// RateLimit is the rate limit state the server reported with a response.
type RateLimit struct {
	Limit     int `json:"limit"`     // Calls allowed per window
	Used      int `json:"used"`      // Calls used in the current window
	Remaining int `json:"remaining"` // Calls left in the current window
}

// ParseRateLimit reads the rate limit headers of a response.
//
// Returns nil unless all three headers are present and numeric; some
// endpoints (for example the unauthenticated API root) omit them.
func ParseRateLimit(h http.Header) *RateLimit {
	limit, ok := headerInt(h, HeaderRateLimit)
	if !ok {
		return nil
	}
	used, ok := headerInt(h, HeaderRateLimitUsed)
	if !ok {
		return nil
	}
	remaining, ok := headerInt(h, HeaderRateLimitRemaining)
	if !ok {
		return nil
	}
	return &RateLimit{Limit: limit, Used: used, Remaining: remaining}
}

func headerInt(h http.Header, key string) (int, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
