package algo

import "github.com/huangsam/tschart/schema"

// NormalizeStrategy maps anything but a known strategy name to useFallback.
func NormalizeStrategy(v any) schema.ReplaceEmptyStrategy {
	switch s, _ := v.(string); schema.ReplaceEmptyStrategy(s) {
	case schema.UsePreviousStrategy:
		return schema.UsePreviousStrategy
	default:
		return schema.UseFallbackStrategy
	}
}

// ReplaceEmpty fills nulls in data. Array data takes either an array fallback
// of the same length or a scalar repeated for every element; scalar data only
// accepts a scalar fallback. Incompatible shapes give nil.
//
// With usePrevious a null takes the previous output value when that one is
// not null, and the fallback otherwise.
func ReplaceEmpty(data any, strategy schema.ReplaceEmptyStrategy, fallback any) any {
	values, isArray := schema.AsSlice(data)
	fallbacks, fallbackIsArray := schema.AsSlice(fallback)

	if !isArray {
		if fallbackIsArray {
			return nil
		}
		if IsNull(data) {
			return fallback
		}
		return data
	}

	if fallbackIsArray {
		if len(fallbacks) != len(values) {
			return nil
		}
	} else {
		fallbacks = make([]any, len(values))
		for i := range fallbacks {
			fallbacks[i] = fallback
		}
	}

	result := make([]any, len(values))
	for i, v := range values {
		switch {
		case !IsNull(v):
			result[i] = v
		case strategy == schema.UsePreviousStrategy && i > 0 && !IsNull(result[i-1]):
			result[i] = result[i-1]
		default:
			result[i] = fallbacks[i]
		}
	}
	return result
}

// Multiply multiplies operands element-wise. Scalars are broadcast over
// arrays; arrays of different lengths give nil. A non-finite factor makes the
// product null. The result is an array when any operand is one.
func Multiply(operands []any) any {
	if len(operands) == 0 {
		return nil
	}

	length := -1
	for _, operand := range operands {
		if s, ok := schema.AsSlice(operand); ok {
			if length >= 0 && length != len(s) {
				return nil
			}
			length = len(s)
		}
	}
	isArray := length >= 0
	if !isArray {
		length = 1
	}

	product := numbers(operands[0], length)
	for _, operand := range operands[1:] {
		factors := numbers(operand, length)
		for i := range product {
			if product[i] == nil {
				continue
			}
			if factors[i] == nil {
				product[i] = nil
				continue
			}
			product[i] = schema.Float(*product[i] * *factors[i])
		}
	}

	result := make([]any, length)
	for i, p := range product {
		if p != nil {
			result[i] = *p
		}
	}
	if isArray {
		return result
	}
	return result[0]
}

// numbers converts an operand to length nullable numbers.
func numbers(operand any, length int) []*float64 {
	out := make([]*float64, length)
	if s, ok := schema.AsSlice(operand); ok {
		for i := range out {
			if f, ok := schema.ToFloat(s[i]); ok {
				out[i] = schema.Float(f)
			}
		}
		return out
	}
	if f, ok := schema.ToFloat(operand); ok {
		for i := range out {
			out[i] = schema.Float(f)
		}
	}
	return out
}

// IsNull reports whether v is a null value.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(*float64); ok {
		return f == nil
	}
	return false
}
