package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultValues(t *testing.T) {
	values, isArray := PointsResult([]Point{NewPoint(0, Float(1)), NewPoint(5, nil)}).Values()
	assert.True(t, isArray)
	assert.Equal(t, []any{1.0, nil}, values)

	values, isArray = BasicResult(3.0).Values()
	assert.False(t, isArray)
	assert.Equal(t, []any{3.0}, values)
}

func TestResultLastValue(t *testing.T) {
	v, ok := PointsResult([]Point{NewPoint(0, Float(1)), NewPoint(5, Float(2))}).LastValue()
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = PointsResult(nil).LastValue()
	assert.False(t, ok)

	v, ok = BasicResult([]any{1.0, 4.0}).LastValue()
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(PointsResult([]Point{NewPoint(5, Float(1), AsNewest())}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"points","data":[{"timestamp":5,"value":1,"pointDuration":5,"fake":false,"oldest":false,"newest":true}]}`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal([]byte(`{"type":"basic","data":[1,null]}`), &decoded))
	assert.Equal(t, BasicResult([]any{1.0, nil}), decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"weird","data":1}`), &decoded))
}
