package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(i int) SeriesPoint {
	return SeriesPoint{
		Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * 2 * time.Second),
		CPU:  float64(i),
		Mem:  float64(i) + 0.5,
		Disk: 50,
	}
}

func TestNewSeries(t *testing.T) {
	s := NewSeries(10)
	assert.Equal(t, 10, s.Cap())
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Points())

	_, ok := s.Last()
	assert.False(t, ok)
}

func TestNewSeries_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultHistorySize, NewSeries(0).Cap())
	assert.Equal(t, DefaultHistorySize, NewSeries(-5).Cap())
	assert.Equal(t, 60, DefaultHistorySize)
}

func TestSeries_AppendBelowCapacity(t *testing.T) {
	s := NewSeries(60)
	for i := 1; i <= 5; i++ {
		s.Append(point(i))
	}

	require.Equal(t, 5, s.Len())
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, s.CPU())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 5.0, last.CPU)
}

func TestSeries_EvictsOldest(t *testing.T) {
	s := NewSeries(60)
	for i := 1; i <= 61; i++ {
		s.Append(point(i))
	}

	pts := s.Points()
	require.Len(t, pts, 60)
	assert.Equal(t, 2.0, pts[0].CPU, "first append should be gone")
	assert.Equal(t, 61.0, pts[59].CPU)
}

func TestSeries_LengthNeverExceedsCap(t *testing.T) {
	tests := []struct {
		appends int
		want    int
	}{
		{0, 0},
		{1, 1},
		{59, 59},
		{60, 60},
		{61, 60},
		{500, 60},
	}

	for _, tt := range tests {
		s := NewSeries(60)
		for i := 0; i < tt.appends; i++ {
			s.Append(point(i))
		}
		assert.Equal(t, tt.want, s.Len(), "after %d appends", tt.appends)
	}
}

func TestSeries_OrderAfterWrap(t *testing.T) {
	s := NewSeries(3)
	for i := 1; i <= 7; i++ {
		s.Append(point(i))
	}
	assert.Equal(t, []float64{5, 6, 7}, s.CPU())
	assert.Equal(t, []float64{5.5, 6.5, 7.5}, s.Mem())
	assert.Equal(t, []float64{50, 50, 50}, s.Disk())
}

func TestSeries_PointsIsACopy(t *testing.T) {
	s := NewSeries(5)
	s.Append(point(1))

	pts := s.Points()
	pts[0].CPU = 99

	assert.Equal(t, []float64{1}, s.CPU())
}

func TestSeries_SizeOne(t *testing.T) {
	s := NewSeries(1)
	s.Append(point(1))
	s.Append(point(2))
	assert.Equal(t, []float64{2}, s.CPU())
}

func TestSeries_Span(t *testing.T) {
	s := NewSeries(60)
	assert.Equal(t, time.Duration(0), s.Span())

	s.Append(point(0))
	assert.Equal(t, time.Duration(0), s.Span())

	for i := 1; i < 60; i++ {
		s.Append(point(i))
	}
	assert.Equal(t, 118*time.Second, s.Span())

	// Missing timestamps don't produce a bogus span
	z := NewSeries(3)
	z.Append(SeriesPoint{CPU: 1})
	z.Append(SeriesPoint{CPU: 2})
	assert.Equal(t, time.Duration(0), z.Span())
}

func TestSnapshot_PointDefaultsMissingToZero(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap *Snapshot
		want SeriesPoint
	}{
		{
			name: "all present",
			snap: &Snapshot{Timestamp: ts, CPU: &CPUStat{Percent: 10}, Memory: &UsageStat{Percent: 20}, Disk: &UsageStat{Percent: 30}},
			want: SeriesPoint{Time: ts, CPU: 10, Mem: 20, Disk: 30},
		},
		{
			name: "cpu missing",
			snap: &Snapshot{Timestamp: ts, Memory: &UsageStat{Percent: 20}, Disk: &UsageStat{Percent: 30}},
			want: SeriesPoint{Time: ts, CPU: 0, Mem: 20, Disk: 30},
		},
		{
			name: "everything missing",
			snap: &Snapshot{},
			want: SeriesPoint{},
		},
		{
			name: "nil snapshot",
			snap: nil,
			want: SeriesPoint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.Point())
		})
	}
}
