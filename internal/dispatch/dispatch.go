// Package dispatch provides the ordered task queue shared by all metrics
// of a runtime.
package dispatch

import (
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work executed by the queue's consumer.
type Task = func()

// queued is either a task or a drain barrier. A barrier carries no work;
// reaching it proves every earlier task has finished.
type queued struct {
	run     Task
	barrier chan struct{}
}

// Queue is a multi-producer, single-consumer FIFO task queue.
//
// Submit never blocks the producer: tasks are appended to an unbounded
// queue under a mutex and executed later by a single consumer goroutine.
// Because every producer appends under the same lock, the consumer
// observes one global total order across all producers, not a per-producer
// order. Test code quiesces the queue with DrainAndWait.
//
// A task that panics is terminal to that task only; the consumer logs it
// and moves on. The queue never retries.
type Queue struct {
	log *zap.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []queued
	closed bool

	done chan struct{}
}

// New creates a queue and starts its consumer goroutine. A nil logger
// disables logging.
func New(log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queue{
		log:  log,
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Submit enqueues a task for ordered execution and returns immediately.
// Tasks submitted after Shutdown are dropped.
func (q *Queue) Submit(task Task) {
	if task == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.log.Debug("task submitted after shutdown, dropping")
		return
	}
	q.tasks = append(q.tasks, queued{run: task})
	q.cond.Signal()
	q.mu.Unlock()
}

// DrainAndWait blocks until every task submitted before this call has
// finished executing. Calling it from within a task deadlocks; that is a
// caller invariant, not checked here.
func (q *Queue) DrainAndWait() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	barrier := make(chan struct{})
	q.tasks = append(q.tasks, queued{barrier: barrier})
	q.cond.Signal()
	q.mu.Unlock()
	<-barrier
}

// Shutdown executes all pending tasks, stops the consumer, and waits for
// it to exit. Idempotent; concurrent calls all block until the consumer
// is gone.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	q.mu.Unlock()
	<-q.done
}

// run is the consumer loop. It drains the queue in FIFO order and exits
// once the queue is closed and empty.
func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		next := q.tasks[0]
		q.tasks[0] = queued{}
		q.tasks = q.tasks[1:]
		if len(q.tasks) == 0 {
			q.tasks = nil
		}
		q.mu.Unlock()

		if next.barrier != nil {
			close(next.barrier)
			continue
		}
		q.execute(next.run)
	}
}

// execute runs one task, containing any panic to that task.
func (q *Queue) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Warn("dispatched task panicked", zap.Any("panic", r))
		}
	}()
	task()
}
