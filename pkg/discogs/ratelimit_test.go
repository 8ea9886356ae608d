package discogs

import (
	"net/http"
	"testing"
)

// TestParseRateLimit tests parsing of the rate limit headers.
func TestParseRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    *RateLimit
	}{
		{
			name: "all headers",
			headers: map[string]string{
				HeaderRateLimit:          "60",
				HeaderRateLimitUsed:      "23",
				HeaderRateLimitRemaining: "37",
			},
			want: &RateLimit{Limit: 60, Used: 23, Remaining: 37},
		},
		{
			name:    "no headers",
			headers: map[string]string{},
			want:    nil,
		},
		{
			name: "missing remaining",
			headers: map[string]string{
				HeaderRateLimit:     "60",
				HeaderRateLimitUsed: "23",
			},
			want: nil,
		},
		{
			name: "not a number",
			headers: map[string]string{
				HeaderRateLimit:          "sixty",
				HeaderRateLimitUsed:      "23",
				HeaderRateLimitRemaining: "37",
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}

			got := ParseRateLimit(h)
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected rate limit, got nil")
			}
			if *got != *tt.want {
				t.Errorf("expected %+v, got %+v", *tt.want, *got)
			}
		})
	}
}
