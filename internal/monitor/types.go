package monitor

import (
	"context"
	"time"
)

// Snapshot is one reading from the metrics endpoint. Sub-objects are nil when
// the backend leaves them out of the body.
type Snapshot struct {
	Timestamp     time.Time  `json:"timestamp"`
	Host          string     `json:"host"`
	CPU           *CPUStat   `json:"cpu,omitempty"`
	Memory        *UsageStat `json:"memory,omitempty"`
	Disk          *UsageStat `json:"disk,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
}

// CPUStat holds the CPU reading.
type CPUStat struct {
	Percent float64 `json:"percent"`
}

// UsageStat holds a used/total reading for memory or disk.
type UsageStat struct {
	Percent float64 `json:"percent"`
	Used    uint64  `json:"used"`
	Total   uint64  `json:"total"`
}

// CPUPercent returns the CPU percentage, or 0 when absent.
func (s *Snapshot) CPUPercent() float64 {
	if s == nil || s.CPU == nil {
		return 0
	}
	return s.CPU.Percent
}

// MemoryPercent returns the memory percentage, or 0 when absent.
func (s *Snapshot) MemoryPercent() float64 {
	if s == nil || s.Memory == nil {
		return 0
	}
	return s.Memory.Percent
}

// DiskPercent returns the disk percentage, or 0 when absent.
func (s *Snapshot) DiskPercent() float64 {
	if s == nil || s.Disk == nil {
		return 0
	}
	return s.Disk.Percent
}

// Point derives the graph sample for this snapshot.
func (s *Snapshot) Point() SeriesPoint {
	var t time.Time
	if s != nil {
		t = s.Timestamp
	}
	return SeriesPoint{
		Time: t,
		CPU:  s.CPUPercent(),
		Mem:  s.MemoryPercent(),
		Disk: s.DiskPercent(),
	}
}

// SeriesPoint is a single graph sample.
type SeriesPoint struct {
	Time time.Time
	CPU  float64
	Mem  float64
	Disk float64
}

// ProcessGroup is a set of processes aggregated by name on the server.
type ProcessGroup struct {
	Name     string         `json:"name"`
	Count    int            `json:"count"`
	CPU      float64        `json:"cpu"`
	Mem      float64        `json:"mem"`
	RSS      uint64         `json:"rss"`
	Children []ProcessEntry `json:"children,omitempty"`
}

// ProcessEntry is one member process of a group.
type ProcessEntry struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	RSS  uint64 `json:"rss"`
}

// Source is where the dashboard gets its data.
// internal/api.Client is the production implementation. Metrics returns
// either a non-nil snapshot or an error.
type Source interface {
	Metrics(ctx context.Context) (*Snapshot, error)
	Processes(ctx context.Context, query string) ([]ProcessGroup, error)
	Terminate(ctx context.Context, pid int) error
}
