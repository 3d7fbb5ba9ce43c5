package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/huangsam/tschart/schema"
)

var colorPattern = regexp.MustCompile(`(?i)^#[0-9a-f]{3}([0-9a-f]([0-9a-f]{2}([0-9a-f]{2})?)?)?$`)

var (
	seriesProps      = []string{"id", "name", "type", "yAxisId", "color", "groupId", "data"}
	seriesGroupProps = []string{"id", "name", "stacked", "showSum", "subgroups"}
)

// templateProps evaluates every property of a template. A property is read
// from its <prop>Provider function when present and from the literal field
// otherwise.
func templateProps(ctx context.Context, ec EvaluationContext, template map[string]any, props []string) (map[string]schema.Result, error) {
	calls := make([]seriesCall, len(props))
	for i, prop := range props {
		spec, ok := template[prop+"Provider"]
		if !ok {
			spec = schema.Call(schema.LiteralFunction, map[string]any{"data": template[prop]})
		}
		calls[i] = seriesCall{ec: ec, spec: spec}
	}
	results, err := evaluateAll(ctx, calls...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]schema.Result, len(props))
	for i, prop := range props {
		out[prop] = results[i]
	}
	return out, nil
}

// EvaluateSeries evaluates a series template into its state.
func (e *Engine) EvaluateSeries(ctx context.Context, ec EvaluationContext, template map[string]any) (schema.SeriesState, error) {
	props, err := templateProps(ctx, e.bind(ec), template, seriesProps)
	if err != nil {
		return schema.SeriesState{}, fmt.Errorf("evaluating series: %w", err)
	}

	state := schema.SeriesState{
		ID:      stringOf(props["id"].Data),
		Name:    stringOf(props["name"].Data),
		Type:    stringOf(props["type"].Data),
		YAxisID: stringOf(props["yAxisId"].Data),
		Data:    []schema.Point{},
	}
	if color, ok := props["color"].Data.(string); ok && colorPattern.MatchString(color) {
		state.Color = &color
	}
	if groupID, ok := props["groupId"].Data.(string); ok && groupID != "" {
		state.GroupID = &groupID
	}
	if data := props["data"]; data.IsPoints() {
		state.Data = data.Points
	}
	return state, nil
}

// EvaluateSeriesGroup evaluates a series group template and its subgroups.
func (e *Engine) EvaluateSeriesGroup(ctx context.Context, ec EvaluationContext, template map[string]any) (schema.SeriesGroupState, error) {
	ec = e.bind(ec)
	props, err := templateProps(ctx, ec, template, seriesGroupProps)
	if err != nil {
		return schema.SeriesGroupState{}, fmt.Errorf("evaluating series group: %w", err)
	}

	var templates []map[string]any
	if raw, ok := schema.AsSlice(props["subgroups"].Data); ok {
		for _, item := range raw {
			if sub, ok := schema.AsMap(item); ok {
				templates = append(templates, sub)
			}
		}
	}
	subgroups, err := mapConcurrently(ctx, templates, func(ctx context.Context, sub map[string]any) (schema.SeriesGroupState, error) {
		return e.EvaluateSeriesGroup(ctx, ec, sub)
	})
	if err != nil {
		return schema.SeriesGroupState{}, err
	}

	return schema.SeriesGroupState{
		ID:        stringOf(props["id"].Data),
		Name:      stringOf(props["name"].Data),
		Stacked:   truthy(props["stacked"].Data),
		ShowSum:   truthy(props["showSum"].Data),
		Subgroups: subgroups,
	}, nil
}

// stringOf renders identifiers that may have been produced by a function.
func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	if f, ok := schema.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}
	if f, ok := schema.ToFloat(v); ok {
		return f != 0
	}
	return true
}
