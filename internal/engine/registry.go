package engine

import (
	"sync"

	"github.com/wesleyorama2/beacon/timing"
)

// timerTable correlates running timers for one metric. Each timer moves
// through exactly one transition: begin makes it running, and the first
// consume (commit or discard) removes it. A consumed timer and a timer
// that never existed are indistinguishable afterwards, which is exactly
// the contract: a second stop is invalid state, a second cancel is
// silent.
//
// Safe for concurrent use; different timer IDs are fully independent.
type timerTable struct {
	mu      sync.Mutex
	nextID  uint64
	running map[timing.TimerID]int64
}

func newTimerTable() *timerTable {
	return &timerTable{
		running: make(map[timing.TimerID]int64),
	}
}

// begin registers a fresh timer at the given start timestamp and returns
// its ID. IDs are never zero and never reused.
func (t *timerTable) begin(startNanos int64) timing.TimerID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := timing.TimerID(t.nextID)
	t.running[id] = startNanos
	return id
}

// consumeForCommit removes a running timer and yields its start
// timestamp. Reports false for a timer that is unknown or was already
// consumed; the caller records that as invalid state.
func (t *timerTable) consumeForCommit(id timing.TimerID) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start, ok := t.running[id]
	if ok {
		delete(t.running, id)
	}
	return start, ok
}

// consumeForDiscard removes a running timer without yielding anything.
// Consuming an unknown or already-consumed timer is silent.
func (t *timerTable) consumeForDiscard(id timing.TimerID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.running, id)
}

// reset drops all running timers. The ID counter keeps advancing so old
// IDs stay dead.
func (t *timerTable) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = make(map[timing.TimerID]int64)
}
