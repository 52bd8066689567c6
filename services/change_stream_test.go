package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// scriptedStream yields n events, then blocks until ctx is done or ends with
// err when end is set.
type scriptedStream struct {
	events int
	end    bool
	err    error
	closed atomic.Bool
}

func (s *scriptedStream) Next(ctx context.Context) bool {
	if s.events > 0 {
		s.events--
		return true
	}
	if !s.end {
		<-ctx.Done()
	}
	return false
}

func (s *scriptedStream) Err() error { return s.err }

func (s *scriptedStream) Close(context.Context) error {
	s.closed.Store(true)
	return nil
}

func TestChangeWatcherCoalescesBursts(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var changes atomic.Int32
	stream := &scriptedStream{events: 50}
	w := newProjectionChangeWatcher(
		func(context.Context) (ChangeStream, error) { return stream, nil },
		func(context.Context) { changes.Add(1) },
	)
	w.Quiet = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Watch(ctx)
	}()

	assert.Eventually(t, func() bool { return changes.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, changes.Load())

	cancel()
	<-done
	assert.True(t, stream.closed.Load())
}

func TestChangeWatcherReconnects(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var opens, changes atomic.Int32
	w := newProjectionChangeWatcher(
		func(context.Context) (ChangeStream, error) {
			switch opens.Add(1) {
			case 1:
				return nil, errors.New("not a replica set")
			case 2:
				return &scriptedStream{events: 1, end: true, err: errors.New("cursor killed")}, nil
			default:
				return &scriptedStream{}, nil
			}
		},
		func(context.Context) { changes.Add(1) },
	)
	w.Quiet = time.Hour
	w.RetryBackoff = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Watch(ctx)
	}()

	// The event seen before the stream died still fires without waiting out
	// the quiet period.
	assert.Eventually(t, func() bool { return opens.Load() >= 3 && changes.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.EqualValues(t, 1, changes.Load())
}
