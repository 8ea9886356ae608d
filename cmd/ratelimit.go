package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jfmyers9/crates/internal/output"
	"github.com/jfmyers9/crates/internal/store"
	"github.com/spf13/cobra"
)

var ratelimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show recorded rate limit state",
	Long: `Show the rate limit state Discogs reported with recent responses.

Every response is recorded in the request log under the data directory,
including retried 429 responses. Use --recent to list individual requests.`,
	Args: cobra.NoArgs,
	RunE: runRatelimit,
}

func init() {
	rootCmd.AddCommand(ratelimitCmd)

	ratelimitCmd.Flags().Int("recent", 0, "List the most recent N requests")
	ratelimitCmd.Flags().Duration("since", time.Hour, "Summarize requests newer than this")
}

type requestView struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Attempt    int       `json:"attempt"`
	DurationMS int64     `json:"duration_ms"`
	Limit      *int      `json:"limit,omitempty"`
	Used       *int      `json:"used,omitempty"`
	Remaining  *int      `json:"remaining,omitempty"`
}

func newRequestView(e store.Entry) requestView {
	v := requestView{
		Time:       e.Timestamp,
		Method:     e.Method,
		URL:        e.URL,
		StatusCode: e.StatusCode,
		Attempt:    e.Attempt,
		DurationMS: e.Duration.Milliseconds(),
	}
	if rl := e.RateLimit; rl != nil {
		v.Limit, v.Used, v.Remaining = &rl.Limit, &rl.Used, &rl.Remaining
	}
	return v
}

type ratelimitSummary struct {
	Since       time.Time    `json:"since"`
	Logged      int          `json:"logged"`
	Requests    int          `json:"requests"`
	RateLimited int          `json:"rate_limited"`
	Failed      int          `json:"failed"`
	Latest      *requestView `json:"latest,omitempty"`
}

func runRatelimit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.requestLog == nil {
		return fmt.Errorf("request log is disabled (set request_log.enabled in the config)")
	}

	if n, _ := cmd.Flags().GetInt("recent"); n > 0 {
		entries, err := a.requestLog.Recent(a.ctx, n)
		if err != nil {
			return fmt.Errorf("failed to read request log: %w", err)
		}
		views := make([]requestView, 0, len(entries))
		table := &output.Table{Header: []string{"Time", "Method", "URL", "Status", "Try", "Remaining"}}
		for _, e := range entries {
			v := newRequestView(e)
			views = append(views, v)
			remaining := "-"
			if v.Remaining != nil {
				remaining = fmt.Sprintf("%d/%d", *v.Remaining, *v.Limit)
			}
			table.Rows = append(table.Rows, []string{
				e.Timestamp.Local().Format(time.TimeOnly), e.Method, e.URL,
				strconv.Itoa(e.StatusCode), strconv.Itoa(e.Attempt), remaining,
			})
		}
		return a.write(output.Result{Data: views, Table: table})
	}

	since, _ := cmd.Flags().GetDuration("since")
	report, pairs, err := summarizeRequests(a.ctx, a.requestLog, since, time.Now())
	if err != nil {
		return err
	}

	return a.write(output.Result{Data: report, Pairs: pairs})
}

// summarizeRequests reports the requests recorded in the window ending at now
// along with the latest rate limit state.
func summarizeRequests(ctx context.Context, requestLog *store.RequestLog, since time.Duration, now time.Time) (ratelimitSummary, []output.Pair, error) {
	report := ratelimitSummary{Since: now.Add(-since)}

	summary, err := requestLog.Summarize(ctx, report.Since)
	if err != nil {
		return report, nil, fmt.Errorf("failed to summarize request log: %w", err)
	}
	report.Requests = summary.Requests
	report.RateLimited = summary.RateLimited
	report.Failed = summary.Failed

	report.Logged, err = requestLog.Count(ctx)
	if err != nil {
		return report, nil, fmt.Errorf("failed to read request log: %w", err)
	}

	latest, err := requestLog.Latest(ctx)
	if err != nil {
		return report, nil, fmt.Errorf("failed to read request log: %w", err)
	}

	pairs := []output.Pair{
		{Label: "Requests", Value: fmt.Sprintf("%d in the last %s", report.Requests, since)},
		{Label: "Rate limited", Value: strconv.Itoa(report.RateLimited)},
		{Label: "Failed", Value: strconv.Itoa(report.Failed)},
		{Label: "Logged", Value: fmt.Sprintf("%d requests", report.Logged)},
	}
	if latest == nil {
		pairs = append(pairs, output.Pair{Label: "Last request", Value: "none recorded"})
		return report, pairs, nil
	}

	v := newRequestView(*latest)
	report.Latest = &v
	pairs = append(pairs, output.Pair{
		Label: "Last request",
		Value: fmt.Sprintf("%s %s (%s ago)", latest.Method, latest.URL, now.Sub(latest.Timestamp).Round(time.Second)),
	})
	if rl := latest.RateLimit; rl != nil {
		pairs = append(pairs, output.Pair{
			Label: "Remaining",
			Value: fmt.Sprintf("%d of %d (%d used)", rl.Remaining, rl.Limit, rl.Used),
		})
	}
	return report, pairs, nil
}
