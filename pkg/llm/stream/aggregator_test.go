package stream

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCollectorFoldsOrderedFragments(t *testing.T) {
	var published []string
	c := NewCollector(func(acc string) {
		published = append(published, acc)
	})

	for _, f := range []string{"Hel", "lo", " wor", "ld"} {
		c.OnFragment(f)
	}

	if got := c.Result(); got != "Hello world" {
		t.Errorf("Result = %q, want %q", got, "Hello world")
	}
	want := []string{"Hel", "Hello", "Hello wor", "Hello world"}
	if len(published) != len(want) {
		t.Fatalf("published %d intermediates, want %d", len(published), len(want))
	}
	for i := range want {
		if published[i] != want[i] {
			t.Errorf("published[%d] = %q, want %q", i, published[i], want[i])
		}
	}
}

func TestCollectorSkipsEmptyFragments(t *testing.T) {
	var publishes int
	c := NewCollector(func(string) { publishes++ })

	c.OnFragment("")
	c.OnFragment("a")
	c.OnFragment("")
	c.OnFragment("b")

	if got := c.Result(); got != "ab" {
		t.Errorf("Result = %q, want %q", got, "ab")
	}
	if publishes != 2 {
		t.Errorf("publishes = %d, want 2", publishes)
	}
}

func TestCollectReturnsFinalString(t *testing.T) {
	got, err := Collect(context.Background(), 0, nil, func(ctx context.Context, onFragment func(string)) error {
		onFragment("one ")
		onFragment("two")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one two" {
		t.Errorf("got %q, want %q", got, "one two")
	}
}

func TestCollectDiscardsPartialOnFailure(t *testing.T) {
	boom := errors.New("connection reset")
	got, err := Collect(context.Background(), 0, nil, func(ctx context.Context, onFragment func(string)) error {
		onFragment("partial text that must not survive")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if got != "" {
		t.Errorf("partial accumulation leaked: %q", got)
	}
}

func TestCollectCancellationDiscardsBuffer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	got, err := Collect(ctx, 0, nil, func(ctx context.Context, onFragment func(string)) error {
		onFragment("first")
		cancel()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return errors.New("cancellation not observed")
		}
	})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
	if got != "" {
		t.Errorf("partial accumulation leaked: %q", got)
	}
}

func TestCollectTimeout(t *testing.T) {
	got, err := Collect(context.Background(), 10*time.Millisecond, nil, func(ctx context.Context, onFragment func(string)) error {
		onFragment("slow start")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if got != "" {
		t.Errorf("partial accumulation leaked: %q", got)
	}
}
