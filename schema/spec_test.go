package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFunctionSpec(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   FunctionSpec
		wantOK bool
	}{
		{"struct", Call(RateFunction, nil), Call(RateFunction, nil), true},
		{"pointer", &FunctionSpec{FunctionName: AbsFunction}, FunctionSpec{FunctionName: AbsFunction}, true},
		{"nil pointer", (*FunctionSpec)(nil), FunctionSpec{}, false},
		{
			"decoded object",
			map[string]any{"functionName": "abs", "functionArguments": map[string]any{"data": 1.0}},
			Call(AbsFunction, map[string]any{"data": 1.0}),
			true,
		},
		{"object without name", map[string]any{"data": 1.0}, FunctionSpec{}, false},
		{"object with non-string name", map[string]any{"functionName": 1}, FunctionSpec{}, false},
		{"scalar", 1.0, FunctionSpec{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsFunctionSpec(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, TimeDerivativeFunction, FunctionName("time-derivative").Canonical())
	assert.Equal(t, SupplyValueFunction, FunctionName("currentValue").Canonical())
	assert.Equal(t, RateFunction, RateFunction.Canonical())
	assert.True(t, FunctionName("getDynamicSeriesGroupConfigData").IsKnown())
	assert.False(t, FunctionName("nope").IsKnown())
}

func TestValidateSpec(t *testing.T) {
	assert.NoError(t, ValidateSpec(Call(RateFunction, map[string]any{
		"inputDataProvider": Call(LoadSeriesFunction, nil),
	})))

	err := ValidateSpec(map[string]any{
		"a": []any{Call("zeta", nil), Call("alpha", nil)},
		"b": Call(AbsFunction, map[string]any{"data": Call("zeta", nil)}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.Equal(t, "unknown function: \"alpha\"\nunknown function: \"zeta\"", err.Error())
}
