package stream

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrTimeout means the generation call exceeded its deadline.
	ErrTimeout = errors.New("generation timed out")
	// ErrCanceled means the caller stopped the generation mid-stream.
	ErrCanceled = errors.New("generation canceled")
)

// PublishFunc receives the full accumulated text after each appended
// fragment, for live display.
type PublishFunc func(accumulated string)

// StreamFunc adapts a provider's streaming call: it must invoke onFragment
// for every fragment in order and return once the stream ends or fails.
type StreamFunc func(ctx context.Context, onFragment func(fragment string)) error

// Collector folds an ordered fragment sequence into a growing string.
// Empty fragments are skipped and never published.
type Collector struct {
	buf     strings.Builder
	publish PublishFunc
}

func NewCollector(publish PublishFunc) *Collector {
	return &Collector{publish: publish}
}

func (c *Collector) OnFragment(fragment string) {
	if fragment == "" {
		return
	}
	c.buf.WriteString(fragment)
	if c.publish != nil {
		c.publish(c.buf.String())
	}
}

func (c *Collector) Result() string {
	return c.buf.String()
}

func (c *Collector) Len() int {
	return c.buf.Len()
}

// Collect drives fn under an optional timeout and folds its fragments.
// On success it returns the final accumulated string. On any failure,
// timeout, or cancellation the partial accumulation is discarded: the
// caller only ever sees complete responses or an error, never a partial
// string to persist.
func Collect(ctx context.Context, timeout time.Duration, publish PublishFunc, fn StreamFunc) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	collector := NewCollector(publish)
	if err := fn(ctx, collector.OnFragment); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", ErrTimeout
		case errors.Is(err, context.Canceled):
			return "", ErrCanceled
		default:
			return "", err
		}
	}
	return collector.Result(), nil
}
