package schema

import "math"

// Point is one sample on a time axis.
//
// Fake points were synthesized because no measurement exists at their timestamp.
// Newest marks points at or after the most recent real data, Oldest marks points
// at or before the earliest real data. A point may carry both flags.
type Point struct {
	Timestamp                 int64    `json:"timestamp"`
	Value                     *float64 `json:"value"`
	PointDuration             int64    `json:"pointDuration,omitempty"`
	FirstMeasurementTimestamp *int64   `json:"firstMeasurementTimestamp,omitempty"`
	LastMeasurementTimestamp  *int64   `json:"lastMeasurementTimestamp,omitempty"`
	Fake                      bool     `json:"fake"`
	Oldest                    bool     `json:"oldest"`
	Newest                    bool     `json:"newest"`
}

// PointOption adjusts a point created by NewPoint.
type PointOption func(*Point)

// WithPointDuration sets the time span covered by a point.
func WithPointDuration(d int64) PointOption {
	return func(p *Point) { p.PointDuration = d }
}

// WithMeasurementWindow sets the first and last measurement timestamps.
func WithMeasurementWindow(first, last *int64) PointOption {
	return func(p *Point) {
		p.FirstMeasurementTimestamp = first
		p.LastMeasurementTimestamp = last
	}
}

// AsFake marks a point as synthesized.
func AsFake() PointOption { return func(p *Point) { p.Fake = true } }

// AsOldest marks a point as the oldest edge.
func AsOldest() PointOption { return func(p *Point) { p.Oldest = true } }

// AsNewest marks a point as the newest edge.
func AsNewest() PointOption { return func(p *Point) { p.Newest = true } }

// NewPoint creates a point. A nil value is an empty sample.
func NewPoint(timestamp int64, value *float64, opts ...PointOption) Point {
	p := Point{Timestamp: timestamp, Value: value, PointDuration: DefaultPointDuration}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// HasValue reports whether the point carries a finite value.
func (p Point) HasValue() bool {
	return p.Value != nil && !math.IsNaN(*p.Value) && !math.IsInf(*p.Value, 0)
}

// WithValue returns a copy of the point holding v.
func (p Point) WithValue(v *float64) Point {
	p.Value = v
	return p
}

// MeasurementDuration returns how many seconds of real measurement a point
// describes. Edge points may cover only part of PointDuration. The result is
// never smaller than 1.
func (p Point) MeasurementDuration() int64 {
	pointDuration := p.PointDuration
	if pointDuration <= 0 {
		pointDuration = DefaultPointDuration
	}
	first := p.Timestamp
	if p.FirstMeasurementTimestamp != nil {
		first = *p.FirstMeasurementTimestamp
	}
	last := p.Timestamp + pointDuration - 1
	if p.LastMeasurementTimestamp != nil {
		last = *p.LastMeasurementTimestamp
	}

	var d int64
	switch {
	case !p.Oldest && !p.Newest:
		d = pointDuration
	case p.Fake:
		d = 1
	case p.Oldest && !p.Newest:
		d = p.Timestamp + pointDuration - first
	case !p.Oldest && p.Newest:
		d = last - p.Timestamp + 1
	default:
		d = last - first + 1
	}
	return max(d, 1)
}

// PointValues returns the values of points as a slice of nullable numbers
// suitable for transform functions.
func PointValues(points []Point) []any {
	values := make([]any, len(points))
	for i, p := range points {
		if p.Value == nil {
			values[i] = nil
		} else {
			values[i] = *p.Value
		}
	}
	return values
}

// MergePointValues copies points and replaces their values with the given ones.
// Values that are not numbers become nulls. Extra values are ignored.
func MergePointValues(points []Point, values []any) []Point {
	merged := make([]Point, len(points))
	for i, p := range points {
		var v *float64
		if i < len(values) {
			if f, ok := ToFloat(values[i]); ok {
				v = Float(f)
			}
		}
		merged[i] = p.WithValue(v)
	}
	return merged
}

// ClonePoints returns a copy of points.
func ClonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
