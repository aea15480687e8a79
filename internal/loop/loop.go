// Package loop provides the cooperative task loop that view refreshes run
// on. Tasks execute one at a time in submission order on a single
// goroutine, so state they touch is never mutated by two tasks at once.
package loop

import (
	"sync"

	"fintrack/internal/log"
)

// Scheduler queues a task for later execution.
type Scheduler interface {
	Schedule(task func())
}

// Loop is a FIFO task queue drained by one goroutine. The queue is
// unbounded so tasks may schedule further tasks.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	pending int // queued plus running
	closed  bool
	done    chan struct{}
	logger  *log.Logger
}

var _ Scheduler = (*Loop)(nil)

// New starts a loop. A nil logger falls back to the process default.
func New(logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default(log.ComponentLoop)
	} else {
		logger = logger.WithComponent(log.ComponentLoop)
	}
	l := &Loop{done: make(chan struct{}), logger: logger}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Schedule appends task to the queue. Tasks scheduled after Close are
// dropped.
func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.logger.Warn("Task scheduled on closed loop, dropping")
		return
	}
	l.queue = append(l.queue, task)
	l.pending++
	l.cond.Broadcast()
}

// Flush blocks until every task scheduled so far, and every task those
// tasks scheduled, has finished. It must not be called from a task.
func (l *Loop) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.pending > 0 {
		l.cond.Wait()
	}
}

// Close stops accepting tasks, runs what is queued and waits for the loop
// goroutine to exit.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.runTask(task)

		l.mu.Lock()
		l.pending--
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Task panicked", "panic", r)
		}
	}()
	task()
}

// Inline runs each task immediately on the caller's goroutine. Tests use
// it to make refreshes deterministic.
type Inline struct{}

func (Inline) Schedule(task func()) { task() }
