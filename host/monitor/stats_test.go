package monitor

import (
	"bytes"
	"strings"
	"testing"
)

func TestToggleStatsSegments(t *testing.T) {
	var s ToggleStats
	s.SetRate(1000)
	for _, c := range []uint32{1000, 2000, 3000} {
		s.Toggle(c)
	}
	s.SetRate(500)
	s.Toggle(3200)
	s.Toggle(3700)
	s.Toggle(4200)

	segs := s.Segments()
	if len(segs) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segs))
	}
	if segs[0].Rate != 1000 || segs[0].Count != 2 || segs[0].Mean != 1000 || segs[0].StdDev != 0 {
		t.Errorf("Unexpected first segment: %+v", segs[0])
	}
	if segs[1].Rate != 500 || segs[1].Count != 2 || segs[1].Mean != 500 {
		t.Errorf("Unexpected second segment: %+v", segs[1])
	}
	if !s.Within(0.5) {
		t.Errorf("Expected intervals to match rates")
	}
}

func TestToggleStatsJitter(t *testing.T) {
	var s ToggleStats
	s.SetRate(250)
	for _, c := range []uint32{0, 240, 500, 750, 1010} {
		s.Toggle(c)
	}

	seg := s.Segments()[0]
	if seg.Mean != 252.5 {
		t.Errorf("Expected mean 252.5, got %f", seg.Mean)
	}
	if seg.StdDev == 0 {
		t.Errorf("Expected nonzero stddev")
	}
	if s.Within(1) {
		t.Errorf("Expected mean off by more than 1ms")
	}
}

func TestToggleStatsClockWrap(t *testing.T) {
	var s ToggleStats
	s.SetRate(500)
	s.Toggle(0xFFFFFF00)
	s.Toggle(0x000000F4)

	if seg := s.Segments()[0]; seg.Mean != 500 {
		t.Errorf("Expected 500ms across the wrap, got %f", seg.Mean)
	}
}

func TestToggleStatsRestart(t *testing.T) {
	var s ToggleStats
	s.SetRate(1000)
	s.Toggle(1000)
	s.Restart()
	s.Toggle(5000)

	if len(s.Segments()) != 0 {
		t.Errorf("Expected no interval across a restart, got %+v", s.Segments())
	}

	var out bytes.Buffer
	s.Report(&out)
	if !strings.Contains(out.String(), "no toggle intervals") {
		t.Errorf("Unexpected report: %q", out.String())
	}
}
