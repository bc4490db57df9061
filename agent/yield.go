package agent

import "runtime"

// yieldToScheduler cooperatively yields the calling goroutine, giving any
// goroutine-backed AsyncLeaf a chance to run before Step returns. This is
// the Go analogue of the Python original's `await asyncio.sleep(0)`: Go has
// no equivalent "yield once to the event loop" primitive since goroutines
// aren't cooperatively scheduled around a single loop, so runtime.Gosched
// (already used by runner.Run's throttle path) is the closest match.
func yieldToScheduler() {
	runtime.Gosched()
}
