package monitor

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ToggleStats measures the spacing of LED toggles against the rate the
// firmware announced. Intervals are collected per rate; a rate change
// starts a new segment since the first interval after it is partial.
type ToggleStats struct {
	rate      uint32
	lastClock uint32
	haveLast  bool
	intervals []float64
	segments  []Segment
}

// Segment summarises the toggles seen at one rate
type Segment struct {
	Rate   uint32
	Count  int
	Mean   float64
	StdDev float64
}

// SetRate closes the current segment and starts one at rate
func (s *ToggleStats) SetRate(rate uint32) {
	s.closeSegment()
	s.rate = rate
	s.haveLast = false
}

// Toggle records an LED toggle at clock (milliseconds, wrapping)
func (s *ToggleStats) Toggle(clock uint32) {
	if s.haveLast {
		s.intervals = append(s.intervals, float64(clock-s.lastClock))
	}
	s.lastClock = clock
	s.haveLast = true
}

// Restart forgets the previous toggle (used after a reboot or lost frames)
func (s *ToggleStats) Restart() {
	s.haveLast = false
}

func (s *ToggleStats) closeSegment() {
	if len(s.intervals) == 0 {
		return
	}
	s.segments = append(s.segments, summarise(s.rate, s.intervals))
	s.intervals = s.intervals[:0]
}

func summarise(rate uint32, intervals []float64) Segment {
	seg := Segment{Rate: rate, Count: len(intervals)}
	if len(intervals) == 1 {
		seg.Mean = intervals[0]
		return seg
	}
	seg.Mean, seg.StdDev = stat.MeanStdDev(intervals, nil)
	return seg
}

// Segments returns every segment including the one in progress
func (s *ToggleStats) Segments() []Segment {
	segs := append([]Segment(nil), s.segments...)
	if len(s.intervals) > 0 {
		segs = append(segs, summarise(s.rate, s.intervals))
	}
	return segs
}

// Within reports whether every segment's mean interval is within tol
// milliseconds of its rate
func (s *ToggleStats) Within(tol float64) bool {
	for _, seg := range s.Segments() {
		if seg.Rate != 0 && math.Abs(seg.Mean-float64(seg.Rate)) > tol {
			return false
		}
	}
	return true
}

// Report writes one line per segment
func (s *ToggleStats) Report(w io.Writer) {
	segs := s.Segments()
	if len(segs) == 0 {
		fmt.Fprintln(w, "no toggle intervals recorded")
		return
	}
	for _, seg := range segs {
		fmt.Fprintf(w, "rate=%-5d intervals=%-4d mean=%.1fms stddev=%.2fms\n",
			seg.Rate, seg.Count, seg.Mean, seg.StdDev)
	}
}
