package graphics

import (
	"time"

	"isogrid/internal/loop"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// eventQueue maps window activity onto loop events. The blocking wait, the
// clock and the close flag are injected so the mapping does not need a window.
type eventQueue struct {
	// wait blocks until window events arrive or timeout passes. A negative
	// timeout waits without limit, zero only polls.
	wait        func(timeout time.Duration)
	now         func() time.Time
	shouldClose func() bool

	started        bool
	closeRequested bool
	pending        []loop.Event
}

func (q *eventQueue) push(ev loop.Event) {
	q.pending = append(q.pending, ev)
}

func (q *eventQueue) requestClose() {
	q.closeRequested = true
}

// Wait returns loop.EventInit on the first call without blocking. After that
// it reports a close request ahead of anything else, then queued events in
// arrival order, and otherwise blocks until deadline. Returning at or after
// deadline is loop.EventWake; returning early with nothing to report is
// loop.EventOther.
func (q *eventQueue) Wait(deadline time.Time) loop.Event {
	if !q.started {
		q.started = true
		return loop.Event{Kind: loop.EventInit}
	}
	if ev, ok := q.next(); ok {
		return ev
	}

	if deadline.IsZero() {
		q.wait(-1)
	} else {
		q.wait(max(deadline.Sub(q.now()), 0))
	}

	if ev, ok := q.next(); ok {
		return ev
	}
	if !deadline.IsZero() && !q.now().Before(deadline) {
		return loop.Event{Kind: loop.EventWake}
	}
	return loop.Event{Kind: loop.EventOther, Detail: "early wake"}
}

func (q *eventQueue) next() (loop.Event, bool) {
	if q.closeRequested || (q.shouldClose != nil && q.shouldClose()) {
		q.closeRequested = true
		return loop.Event{Kind: loop.EventClose}, true
	}
	if len(q.pending) == 0 {
		return loop.Event{}, false
	}
	ev := q.pending[0]
	q.pending = q.pending[1:]
	return ev, true
}

func glfwWait(timeout time.Duration) {
	switch {
	case timeout < 0:
		glfw.WaitEvents()
	case timeout == 0:
		glfw.PollEvents()
	default:
		glfw.WaitEventsTimeout(timeout.Seconds())
	}
}
