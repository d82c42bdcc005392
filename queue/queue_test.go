package queue

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// FIFO and close semantics
// ---------------------------------------------------------------------------

func TestQueue_FIFO(t *testing.T) {
	tx, rx := New[int]()

	for i := 1; i <= 5; i++ {
		if err := tx.Send(i); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	tx.Close()

	for want := 1; want <= 5; want++ {
		got, ok := rx.Recv()
		if !ok {
			t.Fatalf("premature close at %d", want)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}

	if _, ok := rx.Recv(); ok {
		t.Fatal("expected closed signal after drain")
	}
}

func TestQueue_SendAfterClose(t *testing.T) {
	tx, _ := New[string]()
	tx.Close()

	if err := tx.Send("late"); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	// Idempotent close.
	tx.Close()
}

func TestQueue_ClosedSignalIsTerminal(t *testing.T) {
	tx, rx := New[int]()
	tx.Close()

	for range 3 {
		if _, ok := rx.Recv(); ok {
			t.Fatal("recv on closed empty queue returned an item")
		}
	}
}

func TestQueue_BacklogDeliveredBeforeClosed(t *testing.T) {
	tx, rx := New[int]()

	const k = 50
	for i := range k {
		if err := tx.Send(i); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	tx.Close()

	// All k buffered items must arrive before the closed signal.
	for i := range k {
		got, ok := rx.Recv()
		if !ok {
			t.Fatalf("closed observed with %d items undelivered", k-i)
		}
		if got != i {
			t.Fatalf("got %d, want %d", got, i)
		}
	}
	if _, ok := rx.Recv(); ok {
		t.Fatal("expected closed after backlog drained")
	}
}

func TestQueue_RecvBlocksUntilSend(t *testing.T) {
	tx, rx := New[string]()

	done := make(chan string)
	go func() {
		v, _ := rx.Recv()
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	if err := tx.Send("hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case v := <-done:
		if v != "hello" {
			t.Fatalf("got %q, want %q", v, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("recv did not wake after send")
	}
}

// ---------------------------------------------------------------------------
// Producer handles
// ---------------------------------------------------------------------------

func TestQueue_CloneKeepsQueueOpen(t *testing.T) {
	tx, rx := New[int]()
	tx2 := tx.Clone()

	tx.Close()

	// Queue must stay open while tx2 is alive.
	if err := tx2.Send(7); err != nil {
		t.Fatalf("send on surviving handle: %v", err)
	}
	tx2.Close()

	got, ok := rx.Recv()
	if !ok || got != 7 {
		t.Fatalf("got (%d, %v), want (7, true)", got, ok)
	}
	if _, ok := rx.Recv(); ok {
		t.Fatal("expected closed after last handle dropped")
	}
}

func TestQueue_CloneOfClosedHandle(t *testing.T) {
	tx, _ := New[int]()
	tx.Close()

	tx2 := tx.Clone()
	if err := tx2.Send(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestQueue_MultipleProducersPerSenderOrder(t *testing.T) {
	tx, rx := New[[2]int]()

	const producers = 4
	const perProducer = 100

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		handle := tx.Clone()
		go func() {
			defer wg.Done()
			defer handle.Close()
			for i := range perProducer {
				if err := handle.Send([2]int{p, i}); err != nil {
					t.Errorf("producer %d send %d: %v", p, i, err)
					return
				}
			}
		}()
	}
	tx.Close()
	wg.Wait()

	// Arrival order across producers is unspecified, but each producer's
	// own sends must arrive in issuing order.
	lastSeen := make([]int, producers)
	for i := range lastSeen {
		lastSeen[i] = -1
	}
	count := 0
	for {
		v, ok := rx.Recv()
		if !ok {
			break
		}
		p, seq := v[0], v[1]
		if seq != lastSeen[p]+1 {
			t.Fatalf("producer %d: got seq %d after %d", p, seq, lastSeen[p])
		}
		lastSeen[p] = seq
		count++
	}
	if count != producers*perProducer {
		t.Fatalf("received %d items, want %d", count, producers*perProducer)
	}
}

// ---------------------------------------------------------------------------
// Shared receiver
// ---------------------------------------------------------------------------

func TestQueue_ExactlyOnceDelivery(t *testing.T) {
	tx, rx := New[int]()

	const n = 500
	for i := range n {
		if err := tx.Send(i); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	tx.Close()

	var mu sync.Mutex
	seen := make(map[int]int, n)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok := rx.Recv()
				if !ok {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("saw %d distinct items, want %d", len(seen), n)
	}
	for v, times := range seen {
		if times != 1 {
			t.Fatalf("item %d delivered %d times", v, times)
		}
	}
}

// ---------------------------------------------------------------------------
// Bounded queue and explicit close
// ---------------------------------------------------------------------------

func TestQueue_BoundedBlocksSender(t *testing.T) {
	tx, rx := New[int](WithCapacity(2))

	if err := tx.Send(1); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := tx.Send(2); err != nil {
		t.Fatalf("send: %v", err)
	}

	unblocked := make(chan error, 1)
	go func() {
		unblocked <- tx.Send(3)
	}()

	select {
	case <-unblocked:
		t.Fatal("send on full queue did not block")
	case <-time.After(50 * time.Millisecond):
	}

	// Dequeue one item; the blocked send must complete.
	if v, ok := rx.Recv(); !ok || v != 1 {
		t.Fatalf("recv = (%d, %v), want (1, true)", v, ok)
	}
	select {
	case err := <-unblocked:
		if err != nil {
			t.Fatalf("unblocked send: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send did not unblock after dequeue")
	}
}

func TestQueue_CloseUnblocksFullSender(t *testing.T) {
	tx, rx := New[int](WithCapacity(1))

	if err := tx.Send(1); err != nil {
		t.Fatalf("send: %v", err)
	}

	unblocked := make(chan error, 1)
	go func() {
		unblocked <- tx.Send(2)
	}()

	time.Sleep(20 * time.Millisecond)
	rx.Close()

	select {
	case err := <-unblocked:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("err = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked send did not observe close")
	}

	// The buffered item is still deliverable after close.
	if v, ok := rx.Recv(); !ok || v != 1 {
		t.Fatalf("recv = (%d, %v), want (1, true)", v, ok)
	}
}

func TestQueue_ExplicitReceiverClose(t *testing.T) {
	tx, rx := New[int]()

	rx.Close()
	rx.Close() // idempotent

	if err := tx.Send(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	if !rx.Closed() {
		t.Fatal("Closed() = false after explicit close")
	}
}

func TestQueue_TryRecv(t *testing.T) {
	tx, rx := New[int]()

	if _, ok, closed := rx.TryRecv(); ok || closed {
		t.Fatalf("TryRecv on empty open queue = (_, %v, %v)", ok, closed)
	}

	if err := tx.Send(9); err != nil {
		t.Fatalf("send: %v", err)
	}
	if v, ok, _ := rx.TryRecv(); !ok || v != 9 {
		t.Fatalf("TryRecv = (%d, %v), want (9, true)", v, ok)
	}

	tx.Close()
	if _, ok, closed := rx.TryRecv(); ok || !closed {
		t.Fatalf("TryRecv on drained closed queue = (_, %v, %v)", ok, closed)
	}
}

func TestQueue_Len(t *testing.T) {
	tx, rx := New[int]()
	for i := range 3 {
		if err := tx.Send(i); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if rx.Len() != 3 {
		t.Fatalf("Len = %d, want 3", rx.Len())
	}
}

func TestQueue_RateLimitedSend(t *testing.T) {
	tx, rx := New[int](WithRateLimit(100, 1))

	start := time.Now()
	for i := range 5 {
		if err := tx.Send(i); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	// 5 sends at 100/s with burst 1 need roughly 40ms of pacing.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("rate limiter did not pace sends: %v", elapsed)
	}

	tx.Close()
	for range 5 {
		if _, ok := rx.Recv(); !ok {
			t.Fatal("item lost under rate limiting")
		}
	}
}
