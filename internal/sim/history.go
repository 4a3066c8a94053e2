package sim

import "github.com/kmishmael/dieselops/internal/control"

// WindowCapacity caps each sliding-window history at the last 100 samples.
const WindowCapacity = 100

// Point is one sampled value in a plotting window.
type Point struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// TimedSample is one controller history entry exported for plotting:
// the measured value against its setpoint at a simulated time.
type TimedSample struct {
	Time     float64 `json:"time"`
	Value    float64 `json:"value"`
	Setpoint float64 `json:"setpoint"`
}

// CascadeSample is one cascade history entry: both controller stages at a
// simulated time, recorded on every tick the cascade drives its loop.
type CascadeSample struct {
	Time  float64              `json:"time"`
	State control.CascadeState `json:"state"`
}

// Series is a bounded FIFO sliding window; appending past capacity evicts
// the oldest point.
type Series struct {
	capacity int
	points   []Point
}

// NewSeries returns an empty window holding at most capacity points.
func NewSeries(capacity int) *Series {
	return &Series{
		capacity: capacity,
		points:   make([]Point, 0, capacity),
	}
}

func (s *Series) Append(p Point) {
	s.points = append(s.points, p)
	if len(s.points) > s.capacity {
		s.points = s.points[1:]
	}
}

func (s *Series) Len() int { return len(s.points) }

// Points returns a copy of the window, oldest first.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Values returns just the sampled values, oldest first, for terminal plots.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

func (s *Series) reset() {
	s.points = s.points[:0]
}
