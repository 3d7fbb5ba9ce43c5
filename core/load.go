package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// replaceEmptyOptions says how loadSeries fills holes in fetched data.
type replaceEmptyOptions struct {
	strategy schema.ReplaceEmptyStrategy
	fallback any
}

func defaultReplaceEmptyOptions() replaceEmptyOptions {
	return replaceEmptyOptions{strategy: schema.UseFallbackStrategy}
}

func normalizeReplaceEmptyOptions(r schema.Result) replaceEmptyOptions {
	if r.IsPoints() {
		return defaultReplaceEmptyOptions()
	}
	fields, ok := schema.AsMap(r.Data)
	if !ok {
		return defaultReplaceEmptyOptions()
	}
	return replaceEmptyOptions{
		strategy: algo.NormalizeStrategy(fields["strategy"]),
		fallback: fields["fallbackValue"],
	}
}

// loadSeries fetches raw points from an external source and fits them to the
// requested window.
func loadSeries(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	if ec.TimeResolution <= 0 || ec.PointsCount <= 0 || args == nil {
		return schema.PointsResult(nil), nil
	}

	parametersSpec, _ := argument(args, "sourceParameters", "sourceSpecProvider")
	results, err := evaluateArgs(ctx, ec, args["sourceType"], parametersSpec, args["replaceEmptyOptions"])
	if err != nil {
		return schema.NullResult(), err
	}
	sourceType, _ := results[0].Data.(string)
	parameters, _ := schema.AsMap(results[1].Data)
	options := normalizeReplaceEmptyOptions(results[2])

	if schema.SourceType(sourceType) != schema.ExternalSource {
		return schema.PointsResult(nil), nil
	}
	source, ok := ec.DataSource(schema.StringField(parameters, "externalSourceName"))
	if !ok {
		return schema.PointsResult(nil), nil
	}
	fetcher, ok := source.(contract.SeriesFetcher)
	if !ok {
		return schema.PointsResult(nil), nil
	}

	sourceParams, _ := schema.AsMap(parameters["externalSourceParameters"])
	raw, err := fetcher.FetchSeries(ctx, schema.SeriesFetchParams{
		LastPointTimestamp: copyInt64(ec.LastPointTimestamp),
		TimeResolution:     ec.TimeResolution,
		// One extra point tells whether the start of history was reached.
		PointsCount:   ec.PointsCount + 1,
		ReachesNewest: reachesNewest(ec),
	}, sourceParams)
	if err != nil {
		return schema.NullResult(), fmt.Errorf("fetching series: %w", err)
	}
	return schema.PointsResult(fitPoints(ec, options, raw)), nil
}

// reachesNewest reports whether the window ends at the newest data: no
// anchor, an anchor within one resolution of now, or an anchor at or after
// the newest point found by the chart.
func reachesNewest(ec EvaluationContext) bool {
	last := ec.LastPointTimestamp
	switch {
	case last == nil:
		return true
	case ec.NowTimestamp-*last < ec.TimeResolution:
		return true
	case ec.NewestPointTimestamp != nil && *last >= *ec.NewestPointTimestamp:
		return true
	}
	return false
}

// fitPoints turns raw points into exactly PointsCount points aligned to the
// resolution and ending at the requested last point. Holes are filled with
// fake points whose values come from the replace options; edge flags mark
// the oldest and newest available data.
func fitPoints(ec EvaluationContext, options replaceEmptyOptions, raw []schema.Point) []schema.Point {
	res := ec.TimeResolution
	last := ec.LastPointTimestamp

	// Work newest first.
	points := make([]schema.Point, 0, len(raw))
	for _, p := range raw {
		if last != nil && p.Timestamp > *last {
			continue
		}
		points = append(points, schema.NewPoint(p.Timestamp, p.Value,
			schema.WithPointDuration(res),
			schema.WithMeasurementWindow(p.FirstMeasurementTimestamp, p.LastMeasurementTimestamp),
		))
	}
	slices.SortStableFunc(points, func(a, b schema.Point) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})

	isLastPointNewest := last == nil || ec.NowTimestamp-*last < res

	var globallyOldest *int64
	if len(points) > 0 && len(points) < ec.PointsCount+1 {
		globallyOldest = schema.Int64(points[len(points)-1].Timestamp)
	}

	points = slices.DeleteFunc(points, func(p schema.Point) bool {
		return p.Timestamp%res != 0
	})

	if len(points) == 0 {
		if last == nil {
			return []schema.Point{}
		}
		anchor := *last - *last%res
		fakes := fitPoints(ec, options, []schema.Point{schema.NewPoint(anchor, nil)})
		for i := range fakes {
			fakes[i].Fake = true
			fakes[i].Oldest = true
			fakes[i].Newest = isLastPointNewest
		}
		return fakes
	}

	fake := func(ts int64) schema.Point {
		return schema.NewPoint(ts, nil, schema.AsFake(), schema.WithPointDuration(res))
	}

	// Fakes newer than the received data, up to the requested last point.
	if last != nil && *last-res >= points[0].Timestamp {
		missing := *last - points[0].Timestamp
		next := points[0].Timestamp + missing - missing%res
		var newer []schema.Point
		for next > points[0].Timestamp && len(newer) < ec.PointsCount {
			newer = append(newer, fake(next))
			next -= res
		}
		points = append(newer, points...)
	}

	// Fakes between and before received points.
	withGaps := points
	points = make([]schema.Point, 0, ec.PointsCount)
	next := withGaps[0].Timestamp
	for idx := 0; len(points) < ec.PointsCount; next -= res {
		if idx < len(withGaps) && withGaps[idx].Timestamp == next {
			points = append(points, withGaps[idx])
			idx++
		} else {
			points = append(points, fake(next))
		}
	}

	// usePrevious needs the value just before the window to fill its first point.
	oldestTimestamp := points[len(points)-1].Timestamp
	var seed any
	for _, p := range withGaps {
		if p.Timestamp < oldestTimestamp && p.Value != nil {
			seed = *p.Value
			break
		}
	}
	values := make([]any, 0, len(points)+1)
	values = append(values, seed)
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value != nil {
			values = append(values, *points[i].Value)
		} else {
			values = append(values, nil)
		}
	}
	replaced, _ := algo.ReplaceEmpty(values, options.strategy, options.fallback).([]any)

	fitted := make([]schema.Point, len(points))
	for i := range fitted {
		fitted[i] = points[len(points)-1-i]
	}
	if replaced != nil {
		fitted = schema.MergePointValues(fitted, replaced[1:])
	} else {
		fitted = schema.MergePointValues(fitted, nil)
	}

	if isLastPointNewest {
		for i := len(fitted) - 1; i >= 0; i-- {
			fitted[i].Newest = true
			if !fitted[i].Fake {
				break
			}
		}
	}
	if globallyOldest != nil {
		for i := range fitted {
			if fitted[i].Timestamp > *globallyOldest {
				break
			}
			fitted[i].Oldest = true
		}
	}
	return fitted
}
