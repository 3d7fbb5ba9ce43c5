package core

import (
	"context"

	"github.com/huangsam/tschart/schema"
)

// SeriesFunc is an asynchronous series function. Arguments are unevaluated specs.
type SeriesFunc func(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error)

// TransformFunc is a synchronous, pure transform function.
type TransformFunc func(ec EvaluationContext, args map[string]any) any

var (
	seriesFunctions    map[schema.FunctionName]SeriesFunc
	transformFunctions map[schema.FunctionName]TransformFunc
)

// The registries are immutable after init.
func init() {
	seriesFunctions = map[schema.FunctionName]SeriesFunc{
		schema.LiteralFunction:                     literal,
		schema.LoadSeriesFunction:                  loadSeries,
		schema.TimeDerivativeFunction:              timeDerivative,
		schema.RateFunction:                        rate,
		schema.ReplaceEmptyFunction:                replaceEmptySeries,
		schema.MultiplyFunction:                    multiplySeries,
		schema.GetDynamicSeriesConfigFunction:      getDynamicSeriesConfig,
		schema.GetDynamicSeriesGroupConfigFunction: getDynamicSeriesGroupConfig,
	}
	transformFunctions = map[schema.FunctionName]TransformFunc{
		schema.AbsFunction:              abs,
		schema.AsBytesFunction:          asBytes,
		schema.AsBytesPerSecondFunction: asBytesPerSecond,
		schema.SupplyValueFunction:      supplyValue,
		schema.ReplaceEmptyFunction:     replaceEmptyTransform,
		schema.FormatWithUnitFunction:   formatWithUnit,
		schema.MultiplyFunction:         multiplyTransform,
	}
}
