package business

import (
	"testing"
	"time"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0.0 B"},
		{in: 1023, want: "1023.0 B"},
		{in: 1536, want: "1.5 KB"},
		{in: 5 * 1024 * 1024, want: "5.0 MB"},
		{in: 3 * 1024 * 1024 * 1024 * 1024 * 1024, want: "3072.0 TB"},
		{in: -1, want: "?"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, expected %q", tt.in, got, tt.want)
		}
	}

	if got := FormatOptionalSize(nil); got != "?" {
		t.Errorf("FormatOptionalSize(nil) = %q", got)
	}
}

func TestTracker(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	now := func() time.Time { return clock }

	tr := newTracker("video.mp4", now)

	clock = clock.Add(time.Second)
	s := tr.update(512*1024, 2*1024*1024)
	if s.Percent != 25 {
		t.Errorf("Expected 25%%, got: %d", s.Percent)
	}
	if got := tr.format(s); got != "video.mp4 - 25% - 512.0 KB/2.0 MB - 512.0 KB/s" {
		t.Errorf("Unexpected status: %q", got)
	}

	clock = clock.Add(2 * time.Second)
	s = tr.update(2*1024*1024, 2*1024*1024)
	if s.Percent != 100 {
		t.Errorf("Expected 100%%, got: %d", s.Percent)
	}
	if s.Speed != 768*1024 {
		t.Errorf("Expected instantaneous speed of 768 KB/s, got: %f", s.Speed)
	}
}

func TestTracker_UnknownTotal(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	tr := newTracker("doc", func() time.Time { return clock })

	clock = clock.Add(time.Second)
	s := tr.update(100, 0)
	if s.Percent != 0 {
		t.Errorf("Expected 0%% for unknown total, got: %d", s.Percent)
	}
	if got := tr.format(s); got != "doc - 0% - 100.0 B/? - 100.0 B/s" {
		t.Errorf("Unexpected status: %q", got)
	}
}
