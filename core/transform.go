package core

import (
	"math"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/schema"
)

// argument returns the first argument present under any of the given names.
// Older charts spell some arguments differently.
func argument(args map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := args[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// broadcast applies fn to a scalar or to every element of an array. Elements
// that are not finite numbers become nil.
func broadcast(data any, fn func(float64) any) any {
	apply := func(v any) any {
		f, ok := schema.ToFloat(v)
		if !ok {
			return nil
		}
		return fn(f)
	}
	if values, ok := schema.AsSlice(data); ok {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = apply(v)
		}
		return out
	}
	return apply(data)
}

func abs(ec EvaluationContext, args map[string]any) any {
	spec, ok := argument(args, "data", "inputDataProvider")
	if !ok {
		return nil
	}
	return broadcast(ec.EvaluateTransformFunction(spec), func(f float64) any {
		return math.Abs(f)
	})
}

func asBytes(ec EvaluationContext, args map[string]any) any {
	spec, ok := argument(args, "data", "inputDataProvider")
	if !ok {
		return nil
	}
	data := ec.EvaluateTransformFunction(spec)
	formatName, _ := ec.EvaluateTransformFunction(args["format"]).(string)
	format := schema.ByteFormat(formatName)
	if _, valid := schema.ValidByteFormats[format]; !valid {
		format = schema.IECFormat
	}
	return broadcast(data, func(f float64) any {
		return algo.FormatBytes(f, format)
	})
}

func asBytesPerSecond(ec EvaluationContext, args map[string]any) any {
	appendSuffix := func(v any) any {
		if s, ok := v.(string); ok {
			return s + "ps"
		}
		return nil
	}
	result := asBytes(ec, args)
	if values, ok := result.([]any); ok {
		for i, v := range values {
			values[i] = appendSuffix(v)
		}
		return values
	}
	return appendSuffix(result)
}

func supplyValue(ec EvaluationContext, _ map[string]any) any {
	return ec.ValueToSupply
}

func replaceEmptyTransform(ec EvaluationContext, args map[string]any) any {
	dataSpec, hasData := args["inputDataProvider"]
	fallbackSpec, hasFallback := args["fallbackValueProvider"]
	if !hasData || !hasFallback {
		return nil
	}
	data := ec.EvaluateTransformFunction(dataSpec)
	strategy := algo.NormalizeStrategy(ec.EvaluateTransformFunction(args["strategyProvider"]))
	fallback := ec.EvaluateTransformFunction(fallbackSpec)
	return algo.ReplaceEmpty(data, strategy, fallback)
}

func formatWithUnit(ec EvaluationContext, args map[string]any) any {
	if args == nil {
		return nil
	}
	data := ec.EvaluateTransformFunction(args["data"])
	unitName, _ := ec.EvaluateTransformFunction(args["unitName"]).(string)
	options, _ := ec.EvaluateTransformFunction(args["unitOptions"]).(map[string]any)
	return broadcast(data, func(f float64) any {
		return algo.FormatWithUnit(f, schema.UnitName(unitName), options)
	})
}

func multiplyTransform(ec EvaluationContext, args map[string]any) any {
	specs, ok := schema.AsSlice(args["operands"])
	if !ok {
		return nil
	}
	operands := make([]any, len(specs))
	for i, spec := range specs {
		operands[i] = ec.EvaluateTransformFunction(spec)
	}
	return algo.Multiply(operands)
}
