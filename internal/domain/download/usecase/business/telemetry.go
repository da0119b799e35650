package business

import (
	"fmt"
	"time"
)

// minSpeedWindow is the shortest interval used for instantaneous throughput
const minSpeedWindow = 500 * time.Millisecond

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders n bytes with one decimal, e.g. "1.5 MB"
func FormatSize(n int64) string {
	if n < 0 {
		return "?"
	}

	f := float64(n)
	i := 0
	for f >= 1024 && i < len(sizeUnits)-1 {
		f /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", f, sizeUnits[i])
}

// FormatOptionalSize renders a size that may be unknown
func FormatOptionalSize(n *int64) string {
	if n == nil {
		return "?"
	}
	return FormatSize(*n)
}

// tracker turns raw transfer callbacks into percentage and throughput
type tracker struct {
	name  string
	start time.Time
	now   func() time.Time

	lastAt   time.Time
	lastDone int64
	speed    float64
}

func newTracker(name string, now func() time.Time) *tracker {
	t := now()
	return &tracker{name: name, start: t, lastAt: t, now: now}
}

// sample is a single progress reading
type sample struct {
	Done    int64
	Total   int64
	Percent int
	Speed   float64 // bytes per second
}

// update records a progress callback and returns the derived reading
func (t *tracker) update(done, total int64) sample {
	now := t.now()

	if window := now.Sub(t.lastAt); window >= minSpeedWindow {
		t.speed = float64(done-t.lastDone) / window.Seconds()
		t.lastAt = now
		t.lastDone = done
	} else if t.speed == 0 {
		if elapsed := now.Sub(t.start).Seconds(); elapsed > 0 {
			t.speed = float64(done) / elapsed
		}
	}
	if t.speed < 0 {
		t.speed = 0
	}

	s := sample{Done: done, Total: total, Speed: t.speed}
	if total > 0 {
		s.Percent = int(done * 100 / total)
		if s.Percent > 100 {
			s.Percent = 100
		}
	}
	return s
}

// format renders "name - 45% - 1.1 MB/2.5 MB - 350.0 KB/s"
func (t *tracker) format(s sample) string {
	total := "?"
	if s.Total > 0 {
		total = FormatSize(s.Total)
	}
	return fmt.Sprintf("%s - %d%% - %s/%s - %s/s",
		t.name, s.Percent, FormatSize(s.Done), total, FormatSize(int64(s.Speed)))
}
