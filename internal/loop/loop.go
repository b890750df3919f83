// Package loop drives redraws of a static scene at a fixed cadence.
//
// The driver is a three-state machine. It sleeps (Idle) until the event
// source reports either the initial activation or that the scheduled wake
// time has passed, renders exactly one frame (Rendering), and goes back to
// sleep. A close request moves it to Terminated from any state and Run
// returns. Every other event is dropped without a redraw.
package loop

import (
	"fmt"
	"log/slog"
	"time"

	"isogrid/internal/scene"
)

// DefaultInterval is the wake period for a 60 Hz redraw.
const DefaultInterval = 16_666_667 * time.Nanosecond

// State is the driver's position in its state machine.
type State int

const (
	Idle State = iota
	Rendering
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventKind classifies what woke the driver.
type EventKind int

const (
	// EventOther covers resize, focus, input and spurious wake-ups.
	EventOther EventKind = iota
	// EventInit is delivered once, before anything else.
	EventInit
	// EventWake means the deadline passed to Wait was reached.
	EventWake
	// EventClose is a request to close the window.
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventOther:
		return "other"
	case EventInit:
		return "init"
	case EventWake:
		return "wake"
	case EventClose:
		return "close"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one occurrence reported by an EventSource.
type Event struct {
	Kind EventKind
	// Detail names the underlying window event for logging, e.g. "resize".
	Detail string
}

// EventSource blocks until something happens or deadline passes. A zero
// deadline means wait indefinitely.
type EventSource interface {
	Wait(deadline time.Time) Event
}

// FrameRenderer draws and presents one frame. An error is fatal.
type FrameRenderer interface {
	RenderFrame(f scene.Frame) error
}

// FrameSource produces the per-frame transforms and draw state.
type FrameSource interface {
	Frame() scene.Frame
}

// Clock returns the current time.
type Clock func() time.Time

// Driver owns the redraw schedule.
type Driver struct {
	events   EventSource
	renderer FrameRenderer
	frames   FrameSource

	interval time.Duration
	now      Clock
	log      *slog.Logger
	onFrame  func(n uint64, at time.Time)

	state    State
	count    uint64
	nextWake time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithInterval sets the wake period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(dr *Driver) { dr.now = c }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(dr *Driver) { dr.log = l }
}

// WithFrameHook registers fn to run after every presented frame with the
// running frame count.
func WithFrameHook(fn func(n uint64, at time.Time)) Option {
	return func(dr *Driver) { dr.onFrame = fn }
}

// New returns an Idle driver.
func New(events EventSource, renderer FrameRenderer, frames FrameSource, opts ...Option) *Driver {
	d := &Driver{
		events:   events,
		renderer: renderer,
		frames:   frames,
		interval: DefaultInterval,
		now:      time.Now,
		log:      slog.Default(),
		state:    Idle,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// State returns the current state.
func (d *Driver) State() State { return d.state }

// Frames returns how many frames have been presented.
func (d *Driver) Frames() uint64 { return d.count }

// Run processes events until a close request (nil) or a failed frame (error).
// It must be called from the thread that owns the window.
func (d *Driver) Run() error {
	if d.state == Terminated {
		return nil
	}
	for {
		ev := d.events.Wait(d.nextWake)
		switch ev.Kind {
		case EventClose:
			d.transition(Terminated, ev)
			return nil
		case EventInit, EventWake:
			if err := d.redraw(ev); err != nil {
				d.transition(Terminated, ev)
				return err
			}
		default:
			d.log.Debug("ignoring event", "event", ev.Kind, "detail", ev.Detail)
		}
	}
}

// redraw renders one frame. The next wake is scheduled from the moment the
// frame starts, so a slow frame makes the following wake fire late rather
// than be skipped.
func (d *Driver) redraw(ev Event) error {
	d.transition(Rendering, ev)
	start := d.now()
	d.nextWake = start.Add(d.interval)

	if err := d.renderer.RenderFrame(d.frames.Frame()); err != nil {
		return fmt.Errorf("loop: frame %d: %w", d.count+1, err)
	}
	d.count++
	if d.onFrame != nil {
		d.onFrame(d.count, start)
	}
	d.transition(Idle, ev)
	return nil
}

func (d *Driver) transition(to State, ev Event) {
	if d.state == to {
		return
	}
	d.log.Debug("state", "from", d.state, "to", to, "event", ev.Kind)
	d.state = to
}
