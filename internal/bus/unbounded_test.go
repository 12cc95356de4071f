package bus

import (
	"testing"
	"time"
)

func TestUnboundedFIFO(t *testing.T) {
	u := NewUnbounded[int]()
	for i := 0; i < 5; i++ {
		u.Send(i)
	}
	for i := 0; i < 5; i++ {
		v, ok := u.Recv()
		if !ok || v != i {
			t.Fatalf("expected %d, got %d ok=%v", i, v, ok)
		}
	}
}

func TestUnboundedBlocksThenWakes(t *testing.T) {
	u := NewUnbounded[string]()
	done := make(chan string, 1)
	go func() {
		v, ok := u.Recv()
		if !ok {
			done <- "closed"
			return
		}
		done <- v
	}()

	time.Sleep(20 * time.Millisecond) // give Recv time to block
	u.Send("hi")

	select {
	case got := <-done:
		if got != "hi" {
			t.Fatalf("expected %q, got %q", "hi", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv never woke up")
	}
}

func TestUnboundedCloseWakesReceiver(t *testing.T) {
	u := NewUnbounded[int]()
	done := make(chan bool, 1)
	go func() {
		_, ok := u.Recv()
		done <- ok
	}()
	time.Sleep(20 * time.Millisecond)
	u.Close()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv never woke up after Close")
	}
}
