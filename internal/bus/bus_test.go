package bus

import (
	"testing"
	"time"

	"loom/internal/ipc"
)

func TestPtyBytesThenRenderPreservesOrder(t *testing.T) {
	b := New()
	ctx := ipc.NewErrorContext().Add("pty")
	b.Screen.Send(NewPtyBytes(ctx, 1, []byte("hi")))
	b.Screen.Send(NewRender(ctx, 1))

	first, ok := b.Screen.Recv()
	if !ok {
		t.Fatal("expected first instruction")
	}
	if _, ok := first.(PtyBytes); !ok {
		t.Fatalf("expected PtyBytes first, got %T", first)
	}
	second, ok := b.Screen.Recv()
	if !ok {
		t.Fatal("expected second instruction")
	}
	if _, ok := second.(Render); !ok {
		t.Fatalf("expected Render second, got %T", second)
	}
}

func TestShutdownIsDeterministic(t *testing.T) {
	b := New()
	go func() {
		exit := <-b.Exit
		close(exit.Done)
	}()

	done := make(chan struct{})
	go func() {
		b.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown never returned")
	}

	if _, ok := b.Screen.Recv(); ok {
		t.Fatal("expected Screen channel closed after Shutdown")
	}
}
