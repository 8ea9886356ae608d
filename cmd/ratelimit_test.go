package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/jfmyers9/crates/internal/output"
	"github.com/jfmyers9/crates/internal/store"
	"github.com/jfmyers9/crates/pkg/discogs"
)

func pairValue(pairs []output.Pair, label string) (string, bool) {
	for _, p := range pairs {
		if p.Label == label {
			return p.Value, true
		}
	}
	return "", false
}

func TestSummarizeRequests(t *testing.T) {
	requestLog, err := store.NewRequestLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create request log: %v", err)
	}
	defer func() { _ = requestLog.Close() }()

	ctx := context.Background()
	now := time.Now()
	entries := []store.Entry{
		{Method: "GET", URL: "/artists/1", StatusCode: 200, Attempt: 1, Timestamp: now.Add(-3 * time.Hour)},
		{Method: "GET", URL: "/releases/249504", StatusCode: 429, Attempt: 1, Timestamp: now.Add(-2 * time.Minute)},
		{
			Method: "GET", URL: "/releases/249504", StatusCode: 200, Attempt: 2, Timestamp: now.Add(-time.Minute),
			RateLimit: &discogs.RateLimit{Limit: 60, Used: 23, Remaining: 37},
		},
	}
	for _, e := range entries {
		if _, err := requestLog.Record(ctx, e); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}

	report, pairs, err := summarizeRequests(ctx, requestLog, time.Hour, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Logged != 3 {
		t.Errorf("expected 3 logged requests, got %d", report.Logged)
	}
	if report.Requests != 2 || report.RateLimited != 1 {
		t.Errorf("unexpected window counts: %+v", report)
	}
	if report.Latest == nil || report.Latest.Remaining == nil || *report.Latest.Remaining != 37 {
		t.Errorf("unexpected latest request: %+v", report.Latest)
	}

	if got, _ := pairValue(pairs, "Logged"); got != "3 requests" {
		t.Errorf("expected Logged pair %q, got %q", "3 requests", got)
	}
	if got, _ := pairValue(pairs, "Remaining"); got != "37 of 60 (23 used)" {
		t.Errorf("unexpected Remaining pair %q", got)
	}
}

func TestSummarizeRequests_Empty(t *testing.T) {
	requestLog, err := store.NewRequestLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create request log: %v", err)
	}
	defer func() { _ = requestLog.Close() }()

	report, pairs, err := summarizeRequests(context.Background(), requestLog, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Logged != 0 || report.Latest != nil {
		t.Errorf("expected empty report, got %+v", report)
	}
	if got, _ := pairValue(pairs, "Last request"); got != "none recorded" {
		t.Errorf("unexpected Last request pair %q", got)
	}
	if _, ok := pairValue(pairs, "Remaining"); ok {
		t.Error("expected no Remaining pair")
	}
}
