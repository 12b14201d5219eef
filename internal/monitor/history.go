package monitor

import "time"

// DefaultHistorySize is the number of samples kept for the graphs.
// At the default 2s metrics interval that is about two minutes.
const DefaultHistorySize = 60

// Series is a bounded, insertion-ordered window of graph samples.
// Once full, each Append evicts the oldest sample.
//
// Series is not safe for concurrent use. The dashboard only touches it from
// the Bubble Tea update loop.
type Series struct {
	data  []SeriesPoint
	head  int
	count int
	size  int
}

// NewSeries creates a series holding at most size samples.
func NewSeries(size int) *Series {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Series{
		data: make([]SeriesPoint, size),
		size: size,
	}
}

// Append adds a sample at the end, dropping the oldest when the series is full.
func (s *Series) Append(p SeriesPoint) {
	s.data[s.head] = p
	s.head = (s.head + 1) % s.size
	if s.count < s.size {
		s.count++
	}
}

// Len returns the number of samples held.
func (s *Series) Len() int {
	return s.count
}

// Cap returns the maximum number of samples.
func (s *Series) Cap() int {
	return s.size
}

// Points returns a copy of the samples, oldest first.
func (s *Series) Points() []SeriesPoint {
	if s.count == 0 {
		return nil
	}
	out := make([]SeriesPoint, s.count)
	start := (s.head - s.count + s.size) % s.size
	for i := 0; i < s.count; i++ {
		out[i] = s.data[(start+i)%s.size]
	}
	return out
}

// Last returns the newest sample.
func (s *Series) Last() (SeriesPoint, bool) {
	if s.count == 0 {
		return SeriesPoint{}, false
	}
	return s.data[(s.head-1+s.size)%s.size], true
}

// CPU returns the CPU values, oldest first.
func (s *Series) CPU() []float64 {
	return s.values(func(p SeriesPoint) float64 { return p.CPU })
}

// Mem returns the memory values, oldest first.
func (s *Series) Mem() []float64 {
	return s.values(func(p SeriesPoint) float64 { return p.Mem })
}

// Disk returns the disk values, oldest first.
func (s *Series) Disk() []float64 {
	return s.values(func(p SeriesPoint) float64 { return p.Disk })
}

// Span returns the time covered from the oldest to the newest sample.
func (s *Series) Span() time.Duration {
	pts := s.Points()
	if len(pts) < 2 {
		return 0
	}
	first, last := pts[0].Time, pts[len(pts)-1].Time
	if first.IsZero() || last.IsZero() || last.Before(first) {
		return 0
	}
	return last.Sub(first)
}

func (s *Series) values(get func(SeriesPoint) float64) []float64 {
	pts := s.Points()
	if pts == nil {
		return nil
	}
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = get(p)
	}
	return out
}
