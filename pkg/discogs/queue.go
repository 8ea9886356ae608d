package discogs

import (
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"golang.org/x/time/rate"
)

// QueueConfig holds throttle queue configuration.
type QueueConfig struct {
	MaxStack int           // Calls that may wait for admission (default 20)
	MaxCalls int           // Admissions allowed per interval (default 60)
	Interval time.Duration // Length of the rolling window (default 1 minute)
	Clock    clock.Clock   // Optional: time source (defaults to the system clock)
	Logger   Logger        // Optional: Logger interface for debug logging
}

// QueueStatus describes the queue's capacity at the time a task was admitted
// or rejected.
type QueueStatus struct {
	RemainingCalls int // Admissions left in the current window
	RemainingStack int // Free slots in the waiting stack
}

// QueueState is the admission state of a queue.
type QueueState int

const (
	QueueIdle          QueueState = iota // Nothing admitted yet
	QueueAdmitting                       // Below the call budget for the window
	QueueSaturated                       // Call budget spent, window still open
	QueueWindowExpired                   // Every recorded admission is older than the window
)

// String returns a human-readable representation of the QueueState.
func (s QueueState) String() string {
	switch s {
	case QueueIdle:
		return "idle"
	case QueueAdmitting:
		return "admitting"
	case QueueSaturated:
		return "saturated"
	case QueueWindowExpired:
		return "window expired"
	default:
		return "unknown"
	}
}

// Task is called once per Add: with a nil error when the call is admitted, or
// with a *RateLimitExceededError when the waiting stack is full.
//
// Tasks admitted from the waiting stack run on the queue's timer goroutine
// and must not block.
type Task func(err error, status QueueStatus)

// Queue throttles calls to at most MaxCalls admissions in any rolling
// Interval. Calls over budget wait on a bounded stack and are admitted in
// FIFO order as the window allows.
//
// A Queue may be shared by several clients to make them draw from one quota.
// It is safe for concurrent use.
type Queue struct {
	mu        sync.Mutex
	dispatch  sync.Mutex // held from collecting ready entries until their tasks return
	clock     clock.Clock
	logger    Logger
	saturated rate.Sometimes

	maxStack int
	maxCalls int
	interval time.Duration

	// admissions holds admission times in ascending order. Entries waiting
	// on the stack are recorded at their planned slot, which may be in the
	// future.
	admissions []time.Time
	stack      []*queueEntry
}

type queueEntry struct {
	task      Task
	slot      time.Time
	timer     *clock.Timer
	stop      chan struct{} // releases the timer goroutine
	abandoned chan struct{} // closed by Clear
	done      bool          // dispatched or abandoned, guarded by Queue.mu
}

// NewQueue creates a throttle queue. Zero fields take their defaults.
func NewQueue(cfg QueueConfig) *Queue {
	if cfg.MaxStack <= 0 {
		cfg.MaxStack = defaultMaxStack
	}
	if cfg.MaxCalls <= 0 {
		cfg.MaxCalls = 60
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Queue{
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		saturated: rate.Sometimes{First: 1, Interval: 10 * time.Second},
		maxStack:  cfg.MaxStack,
		maxCalls:  cfg.MaxCalls,
		interval:  cfg.Interval,
	}
}

// SetLimits changes the call budget. Values <= 0 leave the current setting.
// The change applies from the next Add; entries already waiting keep their
// slots.
func (q *Queue) SetLimits(maxCalls int, interval time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if maxCalls > 0 {
		q.maxCalls = maxCalls
	}
	if interval > 0 {
		q.interval = interval
	}
}

// Add admits task immediately when the budget allows and nothing is
// waiting, otherwise pushes it onto the waiting stack. Admitted tasks are
// always called asynchronously, never from within Add.
//
// The returned channel is closed if the task is abandoned by Clear. It is
// nil when the task was admitted or rejected right away.
//
// An entry keeps its place on the stack until its slot is reached or the
// queue is cleared, even if the caller waiting on it has gone away. Until
// then it counts against MaxStack.
func (q *Queue) Add(task Task) <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	slot := q.nextSlot(now)

	if len(q.stack) == 0 && !slot.After(now) {
		q.record(now, now)
		status := q.statusLocked(now)
		go task(nil, status)
		return nil
	}

	if len(q.stack) >= q.maxStack {
		status := q.statusLocked(now)
		status.RemainingStack = 0
		q.logDebugf("discogs: queue full, rejecting call (%d waiting)", len(q.stack))
		go task(&RateLimitExceededError{Status: status}, status)
		return nil
	}

	e := &queueEntry{
		task:      task,
		slot:      slot,
		stop:      make(chan struct{}),
		abandoned: make(chan struct{}),
	}
	q.record(slot, now)
	q.stack = append(q.stack, e)
	e.timer = q.clock.NewTimer(slot.Sub(now))
	go q.wait(e)

	q.saturated.Do(func() {
		q.logDebugf("discogs: call budget spent, queued call for %s (%d waiting)",
			slot.Sub(now).Round(time.Millisecond), len(q.stack))
	})

	return e.abandoned
}

// Clear stops every pending timer and empties the waiting stack. Waiting
// tasks are abandoned, not called. The admission history is forgotten too,
// so the next Add is admitted as on a new queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	stack := q.stack
	q.stack = nil
	q.admissions = nil
	for _, e := range stack {
		e.done = true
	}
	q.mu.Unlock()

	for _, e := range stack {
		e.timer.Stop()
		close(e.stop)
		close(e.abandoned)
	}

	if len(stack) > 0 {
		q.logDebugf("discogs: queue cleared, abandoned %d waiting calls", len(stack))
	}
}

// Status returns the queue's current capacity.
func (q *Queue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.statusLocked(q.clock.Now())
}

// Len returns the number of calls waiting on the stack.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.stack)
}

// State returns the queue's admission state.
func (q *Queue) State() QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.admissions) == 0 {
		return QueueIdle
	}
	inWindow := q.inWindow(q.clock.Now())
	switch {
	case inWindow == 0:
		return QueueWindowExpired
	case inWindow >= q.maxCalls:
		return QueueSaturated
	default:
		return QueueAdmitting
	}
}

// nextSlot returns the earliest time a call arriving now may be admitted.
//
// A call may go when fewer than maxCalls admissions fall inside the trailing
// interval, so the slot is the admission maxCalls positions back plus one
// interval. Slots never move backwards, which keeps stacked calls in order.
func (q *Queue) nextSlot(now time.Time) time.Time {
	slot := now
	n := len(q.admissions)
	if n >= q.maxCalls {
		slot = q.admissions[n-q.maxCalls].Add(q.interval)
	}
	if n > 0 && slot.Before(q.admissions[n-1]) {
		slot = q.admissions[n-1]
	}
	if slot.Before(now) {
		slot = now
	}
	return slot
}

// record appends an admission and drops history that can no longer affect
// a slot: anything beyond the last maxCalls entries that has left the window.
func (q *Queue) record(at, now time.Time) {
	q.admissions = append(q.admissions, at)
	cutoff := now.Add(-q.interval)
	for len(q.admissions) > q.maxCalls && !q.admissions[0].After(cutoff) {
		q.admissions = q.admissions[1:]
	}
}

// inWindow counts admissions after now-interval, including planned ones.
func (q *Queue) inWindow(now time.Time) int {
	cutoff := now.Add(-q.interval)
	count := 0
	for i := len(q.admissions) - 1; i >= 0; i-- {
		if !q.admissions[i].After(cutoff) {
			break
		}
		count++
	}
	return count
}

func (q *Queue) statusLocked(now time.Time) QueueStatus {
	remaining := q.maxCalls - q.inWindow(now)
	if remaining < 0 {
		remaining = 0
	}
	stack := q.maxStack - len(q.stack)
	if stack < 0 {
		stack = 0
	}
	return QueueStatus{RemainingCalls: remaining, RemainingStack: stack}
}

// wait blocks until the entry's slot or until the entry is released.
func (q *Queue) wait(e *queueEntry) {
	select {
	case <-e.timer.C:
		q.fire(e)
	case <-e.stop:
	}
}

// fire dispatches e together with every entry ahead of it. Entries ahead
// have slots no later than e's, so their timers are due as well; taking them
// here keeps dispatch order FIFO even when timers fire out of order.
func (q *Queue) fire(e *queueEntry) {
	q.dispatch.Lock()
	defer q.dispatch.Unlock()

	q.mu.Lock()
	if e.done {
		q.mu.Unlock()
		return
	}

	var ready []*queueEntry
	for len(q.stack) > 0 {
		head := q.stack[0]
		q.stack[0] = nil
		q.stack = q.stack[1:]
		head.done = true
		ready = append(ready, head)
		if head == e {
			break
		}
	}
	status := q.statusLocked(q.clock.Now())
	q.mu.Unlock()

	for _, r := range ready {
		if r != e {
			r.timer.Stop()
			close(r.stop)
		}
		r.task(nil, status)
	}
}

func (q *Queue) logDebugf(format string, args ...interface{}) {
	if q.logger != nil {
		q.logger.Debugf(format, args...)
	}
}
