package httpapi

import (
	"context"
	"testing"
	"time"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled")
	}
}

func TestJoinContextsCancelsOnEitherSide(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	b, cancelB := context.WithCancel(context.Background())
	defer cancelB()

	joined, cancel := joinContexts(a, b)
	defer cancel()
	select {
	case <-joined.Done():
		t.Fatal("canceled before either input")
	default:
	}
	cancelA()
	waitDone(t, joined)

	joined2, cancel2 := joinContexts(context.Background(), b)
	defer cancel2()
	cancelB()
	waitDone(t, joined2)
}

func TestJoinContextsCancelDetaches(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	joined, cancel := joinContexts(a, context.Background())
	cancel()
	waitDone(t, joined)
}

func TestSetBaseContextNilRestoresDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	cancel()
	if serverBaseCtx.Err() == nil {
		t.Fatal("expected installed context to be canceled")
	}
	SetBaseContext(nil)
	if serverBaseCtx.Err() != nil {
		t.Fatal("expected Background after nil reset")
	}
}
