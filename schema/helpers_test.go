package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"float", 1.5, 1.5, true},
		{"int", 3, 3, true},
		{"uint8", uint8(7), 7, true},
		{"json number", json.Number("2.5"), 2.5, true},
		{"pointer", Float(4), 4, true},
		{"nil pointer", (*float64)(nil), 0, false},
		{"nil", nil, 0, false},
		{"string", "1", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(-1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsSlice(t *testing.T) {
	s, ok := AsSlice([]*float64{Float(1), nil})
	assert.True(t, ok)
	assert.Equal(t, []any{1.0, nil}, s)

	s, ok = AsSlice([]float64{2})
	assert.True(t, ok)
	assert.Equal(t, []any{2.0}, s)

	_, ok = AsSlice(1.0)
	assert.False(t, ok)
}
