// Package schema has the chart definition, evaluation state and storage models shared by all parts of tschart.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ChartTitle is the optional heading of a chart.
type ChartTitle struct {
	Content string `json:"content" yaml:"content"`
	Tip     string `json:"tip,omitempty" yaml:"tip,omitempty"`
}

// YAxisDefinition describes one Y axis and how its values are formatted.
type YAxisDefinition struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	MinInterval   *float64       `json:"minInterval,omitempty" yaml:"minInterval,omitempty"`
	UnitName      UnitName       `json:"unitName,omitempty" yaml:"unitName,omitempty"`
	UnitOptions   map[string]any `json:"unitOptions,omitempty" yaml:"unitOptions,omitempty"`
	ValueProvider any            `json:"valueProvider,omitempty" yaml:"valueProvider,omitempty"`
}

// BuilderDefinition selects a builder and gives it a recipe.
type BuilderDefinition struct {
	BuilderType   BuilderType    `json:"builderType" yaml:"builderType"`
	BuilderRecipe map[string]any `json:"builderRecipe" yaml:"builderRecipe"`
}

// ChartDefinition is the declarative description of a chart.
type ChartDefinition struct {
	Title               ChartTitle          `json:"title" yaml:"title"`
	YAxes               []YAxisDefinition   `json:"yAxes" yaml:"yAxes"`
	SeriesBuilders      []BuilderDefinition `json:"seriesBuilders" yaml:"seriesBuilders"`
	SeriesGroupBuilders []BuilderDefinition `json:"seriesGroupBuilders" yaml:"seriesGroupBuilders"`
}

// TimeResolutionSpec is one selectable zoom level of a chart.
type TimeResolutionSpec struct {
	TimeResolution int64 `json:"timeResolution" yaml:"timeResolution"`
	PointsCount    int   `json:"pointsCount" yaml:"pointsCount"`
	UpdateInterval int64 `json:"updateInterval" yaml:"updateInterval"`
}

// ChartFile is the on-disk document holding a chart and its resolutions.
type ChartFile struct {
	ChartDefinition     ChartDefinition      `json:"chartDefinition" yaml:"chartDefinition"`
	TimeResolutionSpecs []TimeResolutionSpec `json:"timeResolutionSpecs" yaml:"timeResolutionSpecs"`
}

// ParseChartFile decodes a chart document. YAML is a superset of JSON, so both
// encodings are accepted.
func ParseChartFile(data []byte) (ChartFile, error) {
	var file ChartFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ChartFile{}, fmt.Errorf("invalid chart document: %w", err)
	}
	for _, spec := range file.TimeResolutionSpecs {
		if spec.TimeResolution <= 0 || spec.PointsCount <= 0 {
			return ChartFile{}, fmt.Errorf("invalid time resolution spec %+v: resolution and points count must be positive", spec)
		}
	}
	return file, nil
}

// ParseSpecDocument decodes a single function spec (or plain value) from JSON or YAML.
func ParseSpecDocument(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid spec document: %w", err)
	}
	return doc, nil
}

// Validate reports unknown function names anywhere in the definition.
func (d ChartDefinition) Validate() error {
	var nodes []any
	for _, axis := range d.YAxes {
		nodes = append(nodes, axis.ValueProvider)
	}
	for _, builder := range d.SeriesBuilders {
		nodes = append(nodes, builder.BuilderRecipe)
	}
	for _, builder := range d.SeriesGroupBuilders {
		nodes = append(nodes, builder.BuilderRecipe)
	}
	return ValidateSpec(nodes)
}

// ViewParameters select which window of a chart is evaluated.
type ViewParameters struct {
	Live               bool   `json:"live"`
	TimeResolution     int64  `json:"timeResolution,omitempty"`
	LastPointTimestamp *int64 `json:"lastPointTimestamp,omitempty"`
}

// SeriesFetchParams is the window requested from a data source.
type SeriesFetchParams struct {
	LastPointTimestamp *int64 `json:"lastPointTimestamp"`
	TimeResolution     int64  `json:"timeResolution"`
	PointsCount        int    `json:"pointsCount"`
	// ReachesNewest marks a window ending at data that may still be
	// aggregated, so its answer must not be reused.
	ReachesNewest bool `json:"-"`
}

// SeriesState is one evaluated series.
type SeriesState struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	YAxisID string  `json:"yAxisId"`
	Color   *string `json:"color"`
	GroupID *string `json:"groupId"`
	Data    []Point `json:"data"`
}

// SeriesGroupState is one evaluated series group.
type SeriesGroupState struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Stacked   bool               `json:"stacked"`
	ShowSum   bool               `json:"showSum"`
	Subgroups []SeriesGroupState `json:"subgroups"`
}

// YAxisState is an evaluated Y axis.
type YAxisState struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	MinInterval   *float64       `json:"minInterval"`
	UnitName      UnitName       `json:"unitName,omitempty"`
	UnitOptions   map[string]any `json:"unitOptions,omitempty"`
	ValueProvider any            `json:"-"`
}

// XAxisState lists the shared timestamps of all series.
type XAxisState struct {
	Timestamps []int64 `json:"timestamps"`
}

// ChartState is the fully evaluated chart handed to presentation layers.
type ChartState struct {
	EvaluationID         string             `json:"evaluationId"`
	Title                ChartTitle         `json:"title"`
	YAxes                []YAxisState       `json:"yAxes"`
	XAxis                XAxisState         `json:"xAxis"`
	SeriesGroups         []SeriesGroupState `json:"seriesGroups"`
	Series               []SeriesState      `json:"series"`
	TimeResolution       int64              `json:"timeResolution"`
	PointsCount          int                `json:"pointsCount"`
	NewestPointTimestamp *int64             `json:"newestPointTimestamp"`
	FirstPointTimestamp  *int64             `json:"firstPointTimestamp"`
	LastPointTimestamp   *int64             `json:"lastPointTimestamp"`
	HasReachedOldest     bool               `json:"hasReachedOldest"`
	HasReachedNewest     bool               `json:"hasReachedNewest"`
}

// YAxis returns the axis state with the given id.
func (s ChartState) YAxis(id string) (YAxisState, bool) {
	for _, axis := range s.YAxes {
		if axis.ID == id {
			return axis, true
		}
	}
	return YAxisState{}, false
}
