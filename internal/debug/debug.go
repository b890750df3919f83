package debug

import (
	"fmt"
	"runtime"
	"time"
)

// reportEvery is how often Stats produces a new summary.
const reportEvery = time.Second

// Stats counts presented frames and summarises them once per second for the
// window title and the log. Zero value is ready to use.
type Stats struct {
	// ShowMemAlloc adds heap usage to the summary.
	ShowMemAlloc bool

	windowStart time.Time
	frames      int
	memStats    runtime.MemStats
}

// Frame records one presented frame at time at. When a second has passed
// since the last summary it returns the new summary text and true. The first
// call only starts the clock.
func (s *Stats) Frame(at time.Time) (string, bool) {
	if s.windowStart.IsZero() {
		s.windowStart = at
		return "", false
	}
	s.frames++
	elapsed := at.Sub(s.windowStart)
	if elapsed < reportEvery {
		return "", false
	}

	fps := float64(s.frames) / elapsed.Seconds()
	text := fmt.Sprintf("FPS: %.0f", fps)
	if s.ShowMemAlloc {
		runtime.ReadMemStats(&s.memStats)
		text += fmt.Sprintf(" | Mem: %.2f MiB", float64(s.memStats.Alloc)/(1024*1024))
	}
	s.frames = 0
	s.windowStart = at
	return text, true
}
