package loop

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"isogrid/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedEvents struct {
	t         *testing.T
	events    []Event
	deadlines []time.Time
	// onWait runs before each event is returned, e.g. to check renderer state.
	onWait func(i int)
}

func (s *scriptedEvents) Wait(deadline time.Time) Event {
	s.deadlines = append(s.deadlines, deadline)
	i := len(s.deadlines) - 1
	if s.onWait != nil {
		s.onWait(i)
	}
	if i >= len(s.events) {
		s.t.Fatalf("driver waited past the end of the script (call %d)", i)
	}
	return s.events[i]
}

type recordingRenderer struct {
	frames []scene.Frame
	failAt int
}

func (r *recordingRenderer) RenderFrame(f scene.Frame) error {
	r.frames = append(r.frames, f)
	if r.failAt > 0 && len(r.frames) == r.failAt {
		return errors.New("swap buffers failed")
	}
	return nil
}

// fakeClock advances by step every time it is read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newDriver(t *testing.T, events []Event, r *recordingRenderer, opts ...Option) (*Driver, *scriptedEvents) {
	t.Helper()
	src := &scriptedEvents{t: t, events: events}
	clock := &fakeClock{now: t0}
	all := append([]Option{WithClock(clock.Now), WithLogger(quiet())}, opts...)
	return New(src, r, scene.New(scene.DefaultOptions()), all...), src
}

func ev(k EventKind) Event { return Event{Kind: k} }

func TestInitThenWakesRender(t *testing.T) {
	r := &recordingRenderer{}
	d, _ := newDriver(t, []Event{ev(EventInit), ev(EventWake), ev(EventWake), ev(EventClose)}, r)

	require.NoError(t, d.Run())
	assert.Len(t, r.frames, 3)
	assert.Equal(t, uint64(3), d.Frames())
	assert.Equal(t, Terminated, d.State())
}

func TestOtherEventsAreIgnored(t *testing.T) {
	r := &recordingRenderer{}
	d, _ := newDriver(t, []Event{
		ev(EventInit),
		{Kind: EventOther, Detail: "resize"},
		{Kind: EventOther, Detail: "focus"},
		ev(EventWake),
		{Kind: EventOther, Detail: "key"},
		ev(EventClose),
	}, r)

	require.NoError(t, d.Run())
	assert.Len(t, r.frames, 2)
}

func TestCloseBeforeFirstFrame(t *testing.T) {
	r := &recordingRenderer{}
	d, src := newDriver(t, []Event{ev(EventClose)}, r)

	require.NoError(t, d.Run())
	assert.Empty(t, r.frames)
	assert.Equal(t, Terminated, d.State())
	assert.True(t, src.deadlines[0].IsZero(), "first wait has no deadline")
}

func TestNoDrawAfterClose(t *testing.T) {
	r := &recordingRenderer{}
	d, src := newDriver(t, []Event{ev(EventInit), ev(EventClose), ev(EventWake), ev(EventWake)}, r)

	require.NoError(t, d.Run())
	assert.Len(t, r.frames, 1)
	assert.Len(t, src.deadlines, 2, "driver stops waiting once closed")

	// a terminated driver stays terminated
	require.NoError(t, d.Run())
	assert.Len(t, r.frames, 1)
}

func TestFixedCadence(t *testing.T) {
	r := &recordingRenderer{}
	interval := 10 * time.Millisecond
	d, src := newDriver(t, []Event{ev(EventInit), ev(EventWake), ev(EventOther), ev(EventWake), ev(EventClose)}, r,
		WithInterval(interval))

	require.NoError(t, d.Run())

	// the fake clock is read once per frame and advances 0 between reads
	require.Len(t, src.deadlines, 5)
	assert.True(t, src.deadlines[0].IsZero())
	assert.Equal(t, t0.Add(interval), src.deadlines[1])
	assert.Equal(t, t0.Add(interval), src.deadlines[2])
	// an ignored event keeps the pending deadline
	assert.Equal(t, src.deadlines[2], src.deadlines[3])
	assert.Equal(t, t0.Add(interval), src.deadlines[4])
}

func TestSlowFramesScheduleFromFrameStart(t *testing.T) {
	r := &recordingRenderer{}
	src := &scriptedEvents{t: t, events: []Event{ev(EventInit), ev(EventWake), ev(EventWake), ev(EventClose)}}
	// every frame takes 40ms against a 16ms interval
	clock := &fakeClock{now: t0, step: 40 * time.Millisecond}
	d := New(src, r, scene.New(scene.DefaultOptions()),
		WithClock(clock.Now), WithLogger(quiet()), WithInterval(16*time.Millisecond))

	require.NoError(t, d.Run())
	assert.Len(t, r.frames, 3, "late frames are drawn, not skipped")
	assert.Equal(t, t0.Add(16*time.Millisecond), src.deadlines[1])
	assert.Equal(t, t0.Add(56*time.Millisecond), src.deadlines[2])
	assert.Equal(t, t0.Add(96*time.Millisecond), src.deadlines[3])
}

func TestRenderErrorIsFatal(t *testing.T) {
	r := &recordingRenderer{failAt: 2}
	d, src := newDriver(t, []Event{ev(EventInit), ev(EventWake), ev(EventWake), ev(EventClose)}, r)

	err := d.Run()
	require.Error(t, err)
	assert.ErrorContains(t, err, "frame 2")
	assert.ErrorContains(t, err, "swap buffers failed")
	assert.Equal(t, Terminated, d.State())
	assert.Equal(t, uint64(1), d.Frames())
	assert.Len(t, src.deadlines, 2)
}

func TestStateDuringRender(t *testing.T) {
	var d *Driver
	var seen []State
	r := &stateProbe{state: func() State { return d.State() }, seen: &seen}
	src := &scriptedEvents{t: t, events: []Event{ev(EventInit), ev(EventWake), ev(EventClose)}}
	src.onWait = func(int) { seen = append(seen, d.State()) }
	d = New(src, r, scene.New(scene.DefaultOptions()), WithLogger(quiet()))

	require.NoError(t, d.Run())
	assert.Equal(t, []State{Idle, Rendering, Idle, Rendering, Idle}, seen)
}

type stateProbe struct {
	state func() State
	seen  *[]State
}

func (p *stateProbe) RenderFrame(scene.Frame) error {
	*p.seen = append(*p.seen, p.state())
	return nil
}

func TestFrameHook(t *testing.T) {
	r := &recordingRenderer{}
	var counts []uint64
	d, _ := newDriver(t, []Event{ev(EventInit), ev(EventWake), ev(EventClose)}, r,
		WithFrameHook(func(n uint64, _ time.Time) { counts = append(counts, n) }))

	require.NoError(t, d.Run())
	assert.Equal(t, []uint64{1, 2}, counts)
}

func TestFramesAreConstant(t *testing.T) {
	r := &recordingRenderer{}
	d, _ := newDriver(t, []Event{ev(EventInit), ev(EventWake), ev(EventWake), ev(EventClose)}, r)

	require.NoError(t, d.Run())
	require.Len(t, r.frames, 3)
	assert.Equal(t, r.frames[0], r.frames[1])
	assert.Equal(t, r.frames[1], r.frames[2])
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "rendering", Rendering.String())
	assert.Equal(t, "terminated", Terminated.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.Equal(t, "close", EventClose.String())
	assert.Equal(t, "wake", EventWake.String())
}

func TestDefaultInterval(t *testing.T) {
	assert.Equal(t, 16666667*time.Nanosecond, DefaultInterval)
	d := New(&scriptedEvents{t: t}, &recordingRenderer{}, scene.New(scene.DefaultOptions()), WithInterval(-1))
	assert.Equal(t, DefaultInterval, d.interval)
}
