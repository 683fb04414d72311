package engine

import (
	"sync"
	"testing"
)

func TestBeginReturnsDistinctIDs(t *testing.T) {
	table := newTimerTable()

	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := table.begin(int64(i))
		if id == 0 {
			t.Fatal("begin returned the zero timer ID")
		}
		if seen[uint64(id)] {
			t.Fatalf("timer ID %d issued twice", id)
		}
		seen[uint64(id)] = true
	}
}

func TestConsumeForCommitYieldsStart(t *testing.T) {
	table := newTimerTable()
	id := table.begin(12345)

	start, ok := table.consumeForCommit(id)
	if !ok {
		t.Fatal("consumeForCommit failed for a running timer")
	}
	if start != 12345 {
		t.Errorf("start = %d, want 12345", start)
	}
}

func TestConsumeForCommitTwice(t *testing.T) {
	table := newTimerTable()
	id := table.begin(1)

	if _, ok := table.consumeForCommit(id); !ok {
		t.Fatal("first consume failed")
	}
	if _, ok := table.consumeForCommit(id); ok {
		t.Error("second consume succeeded; first consumption must win")
	}
}

func TestConsumeForCommitUnknownID(t *testing.T) {
	table := newTimerTable()

	if _, ok := table.consumeForCommit(999); ok {
		t.Error("consuming an unknown timer succeeded")
	}
}

func TestDiscardThenCommit(t *testing.T) {
	table := newTimerTable()
	id := table.begin(1)

	table.consumeForDiscard(id)
	if _, ok := table.consumeForCommit(id); ok {
		t.Error("commit succeeded after discard; first consumption must win")
	}
}

func TestDiscardUnknownIDIsSilent(t *testing.T) {
	table := newTimerTable()
	table.consumeForDiscard(42)
	table.consumeForDiscard(42)
}

func TestResetDropsRunningTimers(t *testing.T) {
	table := newTimerTable()
	id := table.begin(1)
	table.reset()

	if _, ok := table.consumeForCommit(id); ok {
		t.Error("timer survived reset")
	}
}

func TestConcurrentTimersAreIndependent(t *testing.T) {
	table := newTimerTable()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := table.begin(int64(g*1000 + i))
				start, ok := table.consumeForCommit(id)
				if !ok {
					t.Errorf("goroutine %d: lost its own timer", g)
					return
				}
				if start != int64(g*1000+i) {
					t.Errorf("goroutine %d: got start %d, want %d", g, start, g*1000+i)
					return
				}
			}
		}()
	}
	wg.Wait()
}
