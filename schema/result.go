package schema

import (
	"encoding/json"
	"fmt"
)

// Result is the output of a series function.
// A basic result holds a scalar or a slice of scalars in Data; a points result
// holds a time-indexed series in Points.
type Result struct {
	Type   ResultType
	Data   any
	Points []Point
}

// BasicResult wraps a scalar or vector value.
func BasicResult(data any) Result {
	return Result{Type: BasicResultType, Data: data}
}

// PointsResult wraps a series.
func PointsResult(points []Point) Result {
	if points == nil {
		points = []Point{}
	}
	return Result{Type: PointsResultType, Points: points}
}

// NullResult is the basic null result configuration errors degrade to.
func NullResult() Result {
	return BasicResult(nil)
}

// IsPoints reports whether the result is a points result.
func (r Result) IsPoints() bool {
	return r.Type == PointsResultType
}

// Values returns the numeric payload as a slice: point values for points
// results, the data itself for basic slices, and a one-element slice for basic
// scalars. The second return value is false for scalar data.
func (r Result) Values() ([]any, bool) {
	if r.IsPoints() {
		return PointValues(r.Points), true
	}
	if s, ok := AsSlice(r.Data); ok {
		return s, true
	}
	return []any{r.Data}, false
}

// LastValue returns the last numeric value carried by the result.
func (r Result) LastValue() (float64, bool) {
	if r.IsPoints() {
		if len(r.Points) == 0 {
			return 0, false
		}
		last := r.Points[len(r.Points)-1]
		if !last.HasValue() {
			return 0, false
		}
		return *last.Value, true
	}
	if s, ok := AsSlice(r.Data); ok {
		if len(s) == 0 {
			return 0, false
		}
		return ToFloat(s[len(s)-1])
	}
	return ToFloat(r.Data)
}

type resultJSON struct {
	Type ResultType      `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the result as {"type": ..., "data": ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	var payload any = r.Data
	if r.IsPoints() {
		payload = r.Points
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	typ := r.Type
	if typ == "" {
		typ = BasicResultType
	}
	return json.Marshal(resultJSON{Type: typ, Data: data})
}

// UnmarshalJSON decodes the {"type": ..., "data": ...} shape.
func (r *Result) UnmarshalJSON(b []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case PointsResultType:
		var points []Point
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &points); err != nil {
				return fmt.Errorf("invalid points data: %w", err)
			}
		}
		*r = PointsResult(points)
	case BasicResultType, "":
		var data any
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &data); err != nil {
				return fmt.Errorf("invalid basic data: %w", err)
			}
		}
		*r = BasicResult(data)
	default:
		return fmt.Errorf("unknown result type %q", raw.Type)
	}
	return nil
}
