package discogs

import (
	"errors"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/require"
)

type queueResult struct {
	id     int
	err    error
	status QueueStatus
}

func recordTask(results chan<- queueResult, id int) Task {
	return func(err error, status QueueStatus) {
		results <- queueResult{id: id, err: err, status: status}
	}
}

func receiveResult(t *testing.T, results <-chan queueResult) queueResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a task to run")
		return queueResult{}
	}
}

func expectNoResult(t *testing.T, results <-chan queueResult) {
	t.Helper()
	select {
	case r := <-results:
		t.Fatalf("unexpected task run for call %d", r.id)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestQueue(maxCalls, maxStack int, interval time.Duration) (*Queue, clock.FakeClock) {
	fc := clock.NewFake()
	q := NewQueue(QueueConfig{
		MaxCalls: maxCalls,
		MaxStack: maxStack,
		Interval: interval,
		Clock:    fc,
	})
	return q, fc
}

func TestQueue_BurstWithinBudget(t *testing.T) {
	q, _ := newTestQueue(5, 2, time.Minute)
	results := make(chan queueResult, 5)

	for i := 1; i <= 5; i++ {
		require.Nil(t, q.Add(recordTask(results, i)), "call %d should be admitted immediately", i)
	}

	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		r := receiveResult(t, results)
		require.NoError(t, r.err)
		seen[r.id] = true
	}
	require.Len(t, seen, 5)
	require.Equal(t, 0, q.Len())
	require.Equal(t, QueueSaturated, q.State())
	require.Equal(t, QueueStatus{RemainingCalls: 0, RemainingStack: 2}, q.Status())
}

func TestQueue_DefersOverBudget(t *testing.T) {
	q, fc := newTestQueue(2, 5, time.Minute)
	results := make(chan queueResult, 3)

	q.Add(recordTask(results, 1))
	q.Add(recordTask(results, 2))
	receiveResult(t, results)
	receiveResult(t, results)

	abandoned := q.Add(recordTask(results, 3))
	require.NotNil(t, abandoned)
	require.Equal(t, 1, q.Len())

	fc.Add(59 * time.Second)
	expectNoResult(t, results)

	fc.Add(time.Second)
	r := receiveResult(t, results)
	require.Equal(t, 3, r.id)
	require.NoError(t, r.err)
	require.Equal(t, 0, q.Len())
}

func TestQueue_RejectsWhenStackFull(t *testing.T) {
	q, _ := newTestQueue(1, 1, time.Minute)
	results := make(chan queueResult, 3)

	q.Add(recordTask(results, 1))
	receiveResult(t, results)
	require.NotNil(t, q.Add(recordTask(results, 2)))

	require.Nil(t, q.Add(recordTask(results, 3)))
	r := receiveResult(t, results)
	require.Equal(t, 3, r.id)

	var rle *RateLimitExceededError
	require.True(t, errors.As(r.err, &rle))
	require.ErrorIs(t, r.err, ErrRateLimitExceeded)
	require.Equal(t, 429, rle.StatusCode())
	require.Equal(t, 0, rle.Status.RemainingStack)
	require.Equal(t, 0, r.status.RemainingStack)
}

// TestQueue_EightCalls submits 8 calls against a budget of 5 per minute and
// a stack of 2: five run at once, two wait for the window, one is rejected.
func TestQueue_EightCalls(t *testing.T) {
	q, fc := newTestQueue(5, 2, time.Minute)
	results := make(chan queueResult, 8)

	for i := 1; i <= 8; i++ {
		q.Add(recordTask(results, i))
	}

	var immediate []int
	var rejected []int
	for i := 0; i < 6; i++ {
		r := receiveResult(t, results)
		if r.err != nil {
			require.ErrorIs(t, r.err, ErrRateLimitExceeded)
			rejected = append(rejected, r.id)
			continue
		}
		immediate = append(immediate, r.id)
	}
	require.ElementsMatch(t, []int{1, 2, 3, 4, 5}, immediate)
	require.Equal(t, []int{8}, rejected)
	require.Equal(t, 2, q.Len())

	fc.Add(59 * time.Second)
	expectNoResult(t, results)

	fc.Add(time.Second)
	first := receiveResult(t, results)
	second := receiveResult(t, results)
	require.Equal(t, 6, first.id)
	require.Equal(t, 7, second.id)
	require.NoError(t, first.err)
	require.NoError(t, second.err)
}

func TestQueue_FIFO(t *testing.T) {
	q, fc := newTestQueue(1, 10, time.Second)
	results := make(chan queueResult, 6)

	for i := 1; i <= 6; i++ {
		q.Add(recordTask(results, i))
	}
	require.Equal(t, 1, receiveResult(t, results).id)

	// Every stacked timer is due at once; dispatch must still follow arrival.
	fc.Add(10 * time.Second)
	for want := 2; want <= 6; want++ {
		require.Equal(t, want, receiveResult(t, results).id)
	}
}

// TestQueue_RollingWindow checks that the budget applies to any trailing
// interval rather than to fixed windows starting at the first call.
func TestQueue_RollingWindow(t *testing.T) {
	q, fc := newTestQueue(2, 5, 10*time.Second)
	results := make(chan queueResult, 4)

	q.Add(recordTask(results, 1)) // t=0
	receiveResult(t, results)
	fc.Add(6 * time.Second)
	q.Add(recordTask(results, 2)) // t=6
	receiveResult(t, results)

	q.Add(recordTask(results, 3)) // waits for call 1 to leave the window, t=10
	fc.Add(4 * time.Second)
	require.Equal(t, 3, receiveResult(t, results).id)

	// A fixed window would start afresh at t=10. Calls 2 and 3 are still
	// inside the trailing interval, so call 4 waits for call 2 to leave it.
	q.Add(recordTask(results, 4))
	fc.Add(5 * time.Second)
	expectNoResult(t, results)
	fc.Add(time.Second)
	require.Equal(t, 4, receiveResult(t, results).id)
}

func TestQueue_ClearResets(t *testing.T) {
	q, fc := newTestQueue(1, 2, time.Minute)
	results := make(chan queueResult, 4)

	q.Add(recordTask(results, 1))
	receiveResult(t, results)
	abandonedA := q.Add(recordTask(results, 2))
	abandonedB := q.Add(recordTask(results, 3))
	require.Equal(t, 2, q.Len())

	q.Clear()

	for _, ch := range []<-chan struct{}{abandonedA, abandonedB} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("expected abandoned channel to be closed")
		}
	}
	require.Equal(t, 0, q.Len())
	require.Equal(t, QueueIdle, q.State())
	require.Equal(t, QueueStatus{RemainingCalls: 1, RemainingStack: 2}, q.Status())

	require.Nil(t, q.Add(recordTask(results, 4)))
	require.Equal(t, 4, receiveResult(t, results).id)

	// Abandoned tasks never run, even once their slots pass.
	fc.Add(5 * time.Minute)
	expectNoResult(t, results)
}

func TestQueue_State(t *testing.T) {
	q, fc := newTestQueue(2, 2, time.Minute)
	results := make(chan queueResult, 2)

	require.Equal(t, QueueIdle, q.State())
	q.Add(recordTask(results, 1))
	require.Equal(t, QueueAdmitting, q.State())
	q.Add(recordTask(results, 2))
	require.Equal(t, QueueSaturated, q.State())

	fc.Add(time.Minute + time.Second)
	require.Equal(t, QueueWindowExpired, q.State())
	require.Equal(t, 2, q.Status().RemainingCalls)
	require.Equal(t, "window expired", q.State().String())
}

func TestQueue_SetLimits(t *testing.T) {
	q, _ := newTestQueue(1, 2, time.Minute)
	results := make(chan queueResult, 2)

	q.Add(recordTask(results, 1))
	receiveResult(t, results)

	q.SetLimits(2, 0)
	require.Nil(t, q.Add(recordTask(results, 2)))
	require.Equal(t, 2, receiveResult(t, results).id)
}
