// Package algo holds the pure algorithms behind chart evaluation.
package algo

import "github.com/huangsam/tschart/schema"

// ReconcileTiming aligns several point arrays describing the same logical
// window onto one shared timeline.
//
// The shared timeline ends at the newest timestamp found in any series and is
// as long as the longest series, spaced by resolution. A resolution <= 0 is
// inferred from the first series that has two points. Existing points are
// copied unchanged and missing timestamps become fake null points. A fake point
// of a series that had no points at all is flagged newest and oldest; otherwise
// it is flagged newest when it lies at or after a newest-flagged point of its
// series and oldest when it lies at or before an oldest-flagged one.
//
// The input is never modified and the returned slices are new.
func ReconcileTiming(series [][]schema.Point, resolution int64) [][]schema.Point {
	result := make([][]schema.Point, len(series))

	width := 0
	var newest int64
	found := false
	for _, points := range series {
		width = max(width, len(points))
		for _, p := range points {
			if !found || p.Timestamp > newest {
				newest = p.Timestamp
				found = true
			}
		}
	}

	if width == 0 {
		for i, points := range series {
			result[i] = schema.ClonePoints(points)
		}
		return result
	}

	if resolution <= 0 {
		resolution = inferResolution(series)
	}
	start := newest - int64(width-1)*resolution
	fallbackDuration := pointDurationOf(series...)
	if fallbackDuration == 0 {
		fallbackDuration = schema.DefaultPointDuration
	}
	for i, points := range series {
		result[i] = alignSeries(points, start, width, resolution, fallbackDuration)
	}
	return result
}

// alignSeries maps one series onto width timestamps beginning at start.
func alignSeries(points []schema.Point, start int64, width int, resolution, fallbackDuration int64) []schema.Point {
	byTimestamp := make(map[int64]schema.Point, len(points))
	var newestEdge, oldestEdge *int64
	for _, p := range points {
		byTimestamp[p.Timestamp] = p
		if p.Newest && (newestEdge == nil || p.Timestamp < *newestEdge) {
			newestEdge = schema.Int64(p.Timestamp)
		}
		if p.Oldest && (oldestEdge == nil || p.Timestamp > *oldestEdge) {
			oldestEdge = schema.Int64(p.Timestamp)
		}
	}

	duration := pointDurationOf(points)
	if duration == 0 {
		duration = fallbackDuration
	}

	aligned := make([]schema.Point, width)
	for j := range width {
		ts := start + int64(j)*resolution
		if p, ok := byTimestamp[ts]; ok {
			aligned[j] = p
			continue
		}
		fake := schema.NewPoint(ts, nil, schema.AsFake(), schema.WithPointDuration(duration))
		if len(points) == 0 {
			fake.Newest = true
			fake.Oldest = true
		} else {
			fake.Newest = newestEdge != nil && ts >= *newestEdge
			fake.Oldest = oldestEdge != nil && ts <= *oldestEdge
		}
		aligned[j] = fake
	}
	return aligned
}

// inferResolution returns the spacing of the first series with two distinct timestamps.
func inferResolution(series [][]schema.Point) int64 {
	for _, points := range series {
		for i := 1; i < len(points); i++ {
			diff := points[i].Timestamp - points[i-1].Timestamp
			if diff < 0 {
				diff = -diff
			}
			if diff > 0 {
				return diff
			}
		}
	}
	return 1
}

// pointDurationOf returns the point duration of the first point found, or 0.
func pointDurationOf(series ...[]schema.Point) int64 {
	for _, points := range series {
		for _, p := range points {
			if p.PointDuration > 0 {
				return p.PointDuration
			}
		}
	}
	return 0
}
