package behavior

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAsyncLeaf_RunningThenSuccess(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	leaf := NewAsyncLeaf("async", func(ctx context.Context) (Status, error) {
		<-release
		return Success, nil
	})

	require.Equal(t, Running, Tick(leaf))
	require.Equal(t, Running, Tick(leaf), "still in flight, Initialise must not restart it")

	close(release)
	require.Eventually(t, func() bool {
		return Tick(leaf) == Success
	}, time.Second, time.Millisecond)
}

func TestAsyncLeaf_ErrorMapsToFailureWithFeedback(t *testing.T) {
	t.Parallel()
	leaf := NewAsyncLeaf("async", func(ctx context.Context) (Status, error) {
		return Invalid, errors.New("tool exploded")
	})

	Tick(leaf)
	require.Eventually(t, func() bool {
		return Tick(leaf) == Failure
	}, time.Second, time.Millisecond)
	require.Equal(t, "tool exploded", leaf.FeedbackMessage())
}

func TestAsyncLeaf_NoFunctionMapsToFailure(t *testing.T) {
	t.Parallel()
	leaf := NewAsyncLeaf("async", nil)
	require.Equal(t, Failure, Tick(leaf))
}

func TestAsyncLeaf_StaleCompletionDiscardedAfterReInitialise(t *testing.T) {
	t.Parallel()
	firstStarted := make(chan struct{})
	var callCount int
	leaf := NewAsyncLeaf("async", func(ctx context.Context) (Status, error) {
		callCount++
		if callCount == 1 {
			close(firstStarted)
			<-ctx.Done()
			return Success, nil
		}
		return Failure, nil
	})

	require.Equal(t, Running, Tick(leaf))
	<-firstStarted

	// Interrupt cancels the in-flight goroutine and resets to invalid; the
	// next Tick re-initialises, bumping the generation so the first
	// goroutine's eventual (stale) Success is discarded.
	Interrupt(leaf)
	require.Eventually(t, func() bool {
		return Tick(leaf) == Failure
	}, time.Second, time.Millisecond)
}

func TestAsyncLeaf_TerminateDiscardsLaterCompletionWithoutWaking(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	proceed := make(chan struct{})
	leaf := NewAsyncLeaf("async", func(ctx context.Context) (Status, error) {
		close(started)
		<-proceed
		return Success, nil
	})

	var wakeCount int32
	leaf.BindWakeUp(func() {
		atomic.AddInt32(&wakeCount, 1)
	})

	require.Equal(t, Running, Tick(leaf))
	<-started

	// Terminate (no subsequent Initialise) while the goroutine above is
	// still blocked past its cancellation check.
	Interrupt(leaf)

	// Let the stale goroutine finish now; its finalize call must be
	// discarded by the bumped generation, not apply a result or wake.
	close(proceed)
	time.Sleep(50 * time.Millisecond)

	require.Equal(t, int32(0), atomic.LoadInt32(&wakeCount), "terminated leaf must not wake on a stale completion")
	status, err := leaf.Update()
	require.NoError(t, err)
	require.Equal(t, Failure, status, "idle state reports Failure, not the stale Success")
}

func TestAsyncLeaf_BindWakeUpInvokedOnCompletion(t *testing.T) {
	t.Parallel()
	woken := make(chan struct{}, 1)
	leaf := NewAsyncLeaf("async", func(ctx context.Context) (Status, error) {
		return Success, nil
	})
	leaf.BindWakeUp(func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	})

	Tick(leaf)
	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("wake callback was not invoked")
	}
}
