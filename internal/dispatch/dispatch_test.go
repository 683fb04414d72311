package dispatch

import (
	"sync"
	"testing"
	"time"
)

func TestSubmitExecutesInOrder(t *testing.T) {
	q := New(nil)
	defer q.Shutdown()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Submit(func() {
			// Only the consumer goroutine appends; no locking needed.
			got = append(got, i)
		})
	}
	q.DrainAndWait()

	if len(got) != 100 {
		t.Fatalf("executed %d tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d executed out of order (got sequence value %d)", i, v)
		}
	}
}

func TestSubmitOrderAcrossProducers(t *testing.T) {
	q := New(nil)
	defer q.Shutdown()

	const producers = 8
	const perProducer = 50

	type event struct{ producer, seq int }
	var got []event

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := 0; s < perProducer; s++ {
				s := s
				q.Submit(func() {
					got = append(got, event{producer: p, seq: s})
				})
			}
		}()
	}
	wg.Wait()
	q.DrainAndWait()

	if len(got) != producers*perProducer {
		t.Fatalf("executed %d tasks, want %d", len(got), producers*perProducer)
	}

	// The global order is whatever the lock decided, but each producer's
	// own submissions must execute in its submission order.
	lastSeq := make(map[int]int)
	for _, e := range got {
		last, seen := lastSeq[e.producer]
		if seen && e.seq != last+1 {
			t.Fatalf("producer %d: sequence %d executed after %d", e.producer, e.seq, last)
		}
		if !seen && e.seq != 0 {
			t.Fatalf("producer %d: first executed sequence is %d, want 0", e.producer, e.seq)
		}
		lastSeq[e.producer] = e.seq
	}
}

func TestDrainAndWaitCoversPriorTasks(t *testing.T) {
	q := New(nil)
	defer q.Shutdown()

	done := false
	q.Submit(func() {
		time.Sleep(20 * time.Millisecond)
		done = true
	})
	q.DrainAndWait()

	if !done {
		t.Error("DrainAndWait returned before a prior task completed")
	}
}

func TestDrainAndWaitEmptyQueue(t *testing.T) {
	q := New(nil)
	defer q.Shutdown()

	finished := make(chan struct{})
	go func() {
		q.DrainAndWait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("DrainAndWait on an empty queue did not return")
	}
}

func TestTaskPanicIsTerminalToThatTask(t *testing.T) {
	q := New(nil)
	defer q.Shutdown()

	ran := false
	q.Submit(func() { panic("engine exploded") })
	q.Submit(func() { ran = true })
	q.DrainAndWait()

	if !ran {
		t.Error("consumer did not survive a panicking task")
	}
}

func TestSubmitDoesNotBlockProducer(t *testing.T) {
	q := New(nil)
	defer q.Shutdown()

	release := make(chan struct{})
	q.Submit(func() { <-release })

	start := time.Now()
	for i := 0; i < 1000; i++ {
		q.Submit(func() {})
	}
	elapsed := time.Since(start)
	close(release)

	// Generous bound: appends must not wait on the stalled consumer.
	if elapsed > time.Second {
		t.Errorf("1000 submits took %v with a stalled consumer", elapsed)
	}
	q.DrainAndWait()
}

func TestShutdownRunsPendingTasks(t *testing.T) {
	q := New(nil)

	count := 0
	for i := 0; i < 10; i++ {
		q.Submit(func() { count++ })
	}
	q.Shutdown()

	if count != 10 {
		t.Errorf("executed %d tasks before shutdown completed, want 10", count)
	}
}

func TestSubmitAfterShutdownIsDropped(t *testing.T) {
	q := New(nil)
	q.Shutdown()

	q.Submit(func() { t.Error("task ran after shutdown") })
	q.DrainAndWait()
}

func TestShutdownIdempotent(t *testing.T) {
	q := New(nil)
	q.Shutdown()
	q.Shutdown()
}
