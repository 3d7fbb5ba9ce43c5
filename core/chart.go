package core

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"golang.org/x/sync/errgroup"
)

// ErrNoTimeResolutions is returned when a chart has no resolution to evaluate.
var ErrNoTimeResolutions = errors.New("chart has no time resolution specs")

// liveModeOffset moves "now" back in live mode so that only fully aggregated
// points are shown.
const liveModeOffset int64 = 10

// Chart evaluates a chart definition against a set of external data sources.
// It remembers the newest point found by the first non-live evaluation so
// later windows can be anchored to it.
type Chart struct {
	definition schema.ChartDefinition
	specs      []schema.TimeResolutionSpec
	sources    map[string]contract.DataSource
	engine     *Engine
	clock      func() time.Time
	nowOffset  int64

	mu                   sync.Mutex
	newestPointTimestamp *int64
	newestEdgeTimestamp  *int64
}

// ChartOption configures a Chart.
type ChartOption func(*Chart)

// WithEngine evaluates the chart with the given engine.
func WithEngine(e *Engine) ChartOption {
	return func(c *Chart) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock func() time.Time) ChartOption {
	return func(c *Chart) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithNowOffset shifts "now" by offset seconds.
func WithNowOffset(offset int64) ChartOption {
	return func(c *Chart) { c.nowOffset = offset }
}

// NewChart creates a chart. Resolution specs are kept sorted ascending.
func NewChart(file schema.ChartFile, sources map[string]contract.DataSource, opts ...ChartOption) *Chart {
	specs := slices.Clone(file.TimeResolutionSpecs)
	slices.SortStableFunc(specs, func(a, b schema.TimeResolutionSpec) int {
		return cmp.Compare(a.TimeResolution, b.TimeResolution)
	})
	c := &Chart{
		definition: file.ChartDefinition,
		specs:      specs,
		sources:    sources,
		engine:     NewEngine(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Definition returns the evaluated chart definition.
func (c *Chart) Definition() schema.ChartDefinition {
	return c.definition
}

// TimeResolutionSpecs returns the selectable resolutions, smallest first.
func (c *Chart) TimeResolutionSpecs() []schema.TimeResolutionSpec {
	return slices.Clone(c.specs)
}

func (c *Chart) now(live bool) int64 {
	offset := c.nowOffset
	if live {
		offset -= liveModeOffset
	}
	return c.clock().Unix() + offset
}

// resolutionSpec picks the requested resolution or the smallest one.
func (c *Chart) resolutionSpec(resolution int64) schema.TimeResolutionSpec {
	for _, spec := range c.specs {
		if spec.TimeResolution == resolution {
			return spec
		}
	}
	return c.specs[0]
}

// State evaluates the chart for the given view.
func (c *Chart) State(ctx context.Context, view schema.ViewParameters) (schema.ChartState, error) {
	if len(c.specs) == 0 {
		return schema.ChartState{}, ErrNoTimeResolutions
	}
	spec := c.resolutionSpec(view.TimeResolution)
	res := spec.TimeResolution
	now := c.now(view.Live)

	if view.Live {
		c.resetNewest()
	} else if newest, _ := c.newest(); newest == nil {
		if err := c.preflight(ctx, now); err != nil {
			return schema.ChartState{}, err
		}
	}

	newestPoint, newestEdge := c.newest()
	var lastPoint *int64
	switch {
	case view.Live:
		if view.LastPointTimestamp != nil && *view.LastPointTimestamp < now-now%res {
			lastPoint = view.LastPointTimestamp
		}
		newestPoint, newestEdge = schema.Int64(now), schema.Int64(now)
	case newestPoint != nil && view.LastPointTimestamp != nil:
		lastPoint = schema.Int64(min(*newestPoint, *view.LastPointTimestamp))
	case newestPoint != nil:
		lastPoint = newestPoint
	default:
		lastPoint = view.LastPointTimestamp
	}
	if lastPoint == nil {
		lastPoint = newestPoint
	}

	ec := c.engine.NewContext(
		WithPointsCount(spec.PointsCount),
		WithTimeResolution(res),
		WithLastPointTimestamp(lastPoint),
		WithNewestPointTimestamp(newestPoint),
		WithNewestEdgeTimestamp(newestEdge),
		WithNowTimestamp(now),
		WithDataSources(c.sources),
	)

	var series []schema.SeriesState
	var groups []schema.SeriesGroupState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = c.allSeries(gctx, ec)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = c.engine.BuildSeriesGroups(gctx, ec, c.definition.SeriesGroupBuilders)
		return err
	})
	if err := g.Wait(); err != nil {
		return schema.ChartState{}, err
	}

	if !view.Live {
		if cached, _ := c.newest(); cached != nil {
			flagNewest(series, *cached)
		}
	}

	state := schema.ChartState{
		EvaluationID:         uuid.NewString(),
		Title:                c.titleState(),
		YAxes:                c.yAxesState(),
		XAxis:                xAxisState(series),
		SeriesGroups:         nonNil(groups),
		Series:               nonNil(series),
		TimeResolution:       res,
		PointsCount:          spec.PointsCount,
		NewestPointTimestamp: copyInt64(newestPoint),
	}
	fillEdges(&state)
	return state, nil
}

// allSeries builds every series and aligns their data onto one timeline.
func (c *Chart) allSeries(ctx context.Context, ec EvaluationContext) ([]schema.SeriesState, error) {
	series, err := c.engine.BuildSeries(ctx, ec, c.definition.SeriesBuilders)
	if err != nil {
		return nil, err
	}
	data := make([][]schema.Point, len(series))
	for i, s := range series {
		data[i] = s.Data
	}
	for i, points := range algo.ReconcileTiming(data, ec.TimeResolution) {
		series[i].Data = points
	}
	return series, nil
}

// preflight evaluates one point of the smallest resolution to find out where
// the newest data is.
func (c *Chart) preflight(ctx context.Context, now int64) error {
	res := c.specs[0].TimeResolution
	ec := c.engine.NewContext(
		WithPointsCount(1),
		WithTimeResolution(res),
		WithNowTimestamp(now),
		WithDataSources(c.sources),
	)
	series, err := c.allSeries(ctx, ec)
	if err != nil {
		return err
	}
	c.acquireNewest(series, res, now)
	return nil
}

// acquireNewest derives the globally newest point timestamp across all
// resolutions from preflight series.
func (c *Chart) acquireNewest(series []schema.SeriesState, usedResolution, now int64) {
	var newestPoint, newestEdge *int64
	for _, s := range series {
		if len(s.Data) == 0 {
			continue
		}
		last := s.Data[len(s.Data)-1]
		if newestPoint == nil || last.Timestamp > *newestPoint {
			newestPoint = schema.Int64(last.Timestamp)
		}
		if m := last.LastMeasurementTimestamp; m != nil && (newestEdge == nil || *m > *newestEdge) {
			newestEdge = schema.Int64(*m)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if newestPoint == nil {
		c.newestPointTimestamp = schema.Int64(now)
		c.newestEdgeTimestamp = schema.Int64(now)
		return
	}
	if newestEdge == nil {
		newestEdge = schema.Int64(*newestPoint + usedResolution - 1)
	}
	globallyNewest := *newestPoint
	for _, spec := range c.specs {
		globallyNewest = max(globallyNewest, *newestEdge-*newestEdge%spec.TimeResolution)
	}
	c.newestPointTimestamp = schema.Int64(globallyNewest)
	c.newestEdgeTimestamp = newestEdge
}

func (c *Chart) newest() (*int64, *int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyInt64(c.newestPointTimestamp), copyInt64(c.newestEdgeTimestamp)
}

func (c *Chart) resetNewest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.newestPointTimestamp = nil
	c.newestEdgeTimestamp = nil
}

func (c *Chart) titleState() schema.ChartTitle {
	title := c.definition.Title
	if title.Content == "" {
		return schema.ChartTitle{}
	}
	return title
}

func (c *Chart) yAxesState() []schema.YAxisState {
	axes := make([]schema.YAxisState, len(c.definition.YAxes))
	for i, axis := range c.definition.YAxes {
		provider := axis.ValueProvider
		if !schema.IsFunctionSpec(provider) {
			provider = schema.Call(schema.SupplyValueFunction, nil)
		}
		var minInterval *float64
		if axis.MinInterval != nil && *axis.MinInterval != 0 {
			minInterval = schema.Float(*axis.MinInterval)
		}
		axes[i] = schema.YAxisState{
			ID:            axis.ID,
			Name:          axis.Name,
			MinInterval:   minInterval,
			UnitName:      axis.UnitName,
			UnitOptions:   axis.UnitOptions,
			ValueProvider: provider,
		}
	}
	return axes
}

// FormatAxisValue renders a raw value the way the axis displays it.
func (c *Chart) FormatAxisValue(axis schema.YAxisState, value any) string {
	provided := c.engine.NewContext(WithValueToSupply(value)).EvaluateTransformFunction(axis.ValueProvider)
	switch v := provided.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	if f, ok := schema.ToFloat(provided); ok {
		return algo.FormatWithUnit(f, axis.UnitName, axis.UnitOptions)
	}
	return stringOf(provided)
}

// FormatTimestamp renders an x-axis timestamp with a layout fitting the resolution.
func FormatTimestamp(ts, resolution int64) string {
	t := time.Unix(ts, 0).UTC()
	switch {
	case resolution < 60:
		return t.Format("15:04:05 02/01/2006")
	case resolution%(24*60*60) != 0:
		return t.Format("15:04 02/01/2006")
	default:
		return t.Format("02/01/2006")
	}
}

func xAxisState(series []schema.SeriesState) schema.XAxisState {
	timestamps := []int64{}
	if len(series) > 0 {
		for _, p := range series[0].Data {
			timestamps = append(timestamps, p.Timestamp)
		}
	}
	return schema.XAxisState{Timestamps: timestamps}
}

// flagNewest marks trailing points at or after the newest timestamp.
func flagNewest(series []schema.SeriesState, newest int64) {
	for _, s := range series {
		for i := len(s.Data) - 1; i >= 0 && s.Data[i].Timestamp >= newest; i-- {
			s.Data[i].Newest = true
		}
	}
}

// fillEdges sets the window bounds and whether both ends of history are shown.
func fillEdges(state *schema.ChartState) {
	if ts := state.XAxis.Timestamps; len(ts) > 0 {
		state.FirstPointTimestamp = schema.Int64(ts[0])
		state.LastPointTimestamp = schema.Int64(ts[len(ts)-1])
	}
	state.HasReachedOldest = true
	state.HasReachedNewest = true
	for _, s := range state.Series {
		if len(s.Data) == 0 {
			continue
		}
		state.HasReachedOldest = state.HasReachedOldest && s.Data[0].Oldest
		state.HasReachedNewest = state.HasReachedNewest && s.Data[len(s.Data)-1].Newest
	}
}

func nonNil[S any](items []S) []S {
	if items == nil {
		return []S{}
	}
	return items
}
