package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidWakeTime = errors.New("scheduler: invalid wake time")
	ErrEngineStopped   = errors.New("scheduler: engine stopped")
)

const DefaultInterval = 30 * time.Second

type wakeQueue []time.Time

func (q wakeQueue) Len() int           { return len(q) }
func (q wakeQueue) Less(i, j int) bool { return q[i].Before(q[j]) }
func (q wakeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *wakeQueue) Push(x any) {
	*q = append(*q, x.(time.Time))
}

func (q *wakeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Engine produces evaluation ticks: one on start, one per interval, and one
// for each requested wake time. Wake times that come due together collapse
// into a single tick. Ticks are never queued behind a slow consumer; when the
// buffer is full the tick is dropped and counted.
type Engine struct {
	mu       sync.Mutex
	interval time.Duration
	queue    wakeQueue
	out      chan time.Time
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewEngine(interval time.Duration, bufferSize int) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		interval: interval,
		queue:    make(wakeQueue, 0),
		out:      make(chan time.Time, bufferSize),
		wakeup:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// C is closed after Stop returns.
func (e *Engine) C() <-chan time.Time {
	return e.out
}

func (e *Engine) Interval() time.Duration {
	return e.interval
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// WakeAt requests an extra tick at the given instant. Instants already in
// the past fire on the next loop iteration.
func (e *Engine) WakeAt(at time.Time) error {
	if at.IsZero() {
		return ErrInvalidWakeTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}

	heap.Push(&e.queue, at)
	e.signalWakeup()
	return nil
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	e.emit(time.Now())

	var timer *time.Timer
	for {
		var timerC <-chan time.Time
		if next, ok := e.peek(); ok {
			timer = resetTimer(timer, max(time.Until(next), 0))
			timerC = timer.C
		}

		select {
		case at := <-ticker.C:
			e.emit(at)
		case <-timerC:
			now := time.Now()
			if e.popDue(now) > 0 {
				e.emit(now)
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) emit(at time.Time) {
	select {
	case e.out <- at:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return time.Time{}, false
	}
	return e.queue[0], true
}

func (e *Engine) popDue(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for len(e.queue) > 0 && !e.queue[0].After(now) {
		heap.Pop(&e.queue)
		n++
	}
	return n
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
