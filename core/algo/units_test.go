package algo

import (
	"testing"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    float64
		format   schema.ByteFormat
		expected string
	}{
		{"zero", 0, schema.IECFormat, "0 B"},
		{"small", 512, schema.IECFormat, "512 B"},
		{"one gibibyte", 1073741824, schema.IECFormat, "1 GiB"},
		{"fraction", 1536, schema.IECFormat, "1.5 KiB"},
		{"rounded up to next unit", 1048575, schema.IECFormat, "1 MiB"},
		{"si", 1000, schema.SIFormat, "1 kB"},
		{"si gigabytes", 2500000000, schema.SIFormat, "2.5 GB"},
		{"bits", 125, schema.BitFormat, "1 kb"},
		{"iec bits", 128, schema.BitIECFormat, "1 Kib"},
		{"negative", -2048, schema.IECFormat, "-2 KiB"},
		{"unknown format falls back to iec", 1024, schema.ByteFormat("weird"), "1 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.bytes, tt.format))
		})
	}
}

func TestFormatWithUnit(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     schema.UnitName
		options  map[string]any
		expected string
	}{
		{"milliseconds below one second", 250, schema.MillisecondsUnit, nil, "250 ms"},
		{"seconds below a minute", 5.55, schema.SecondsUnit, nil, "5.5 sec"},
		{"seconds split into parts", 3690, schema.SecondsUnit, nil, "1 h 1 min 30 s"},
		{"negative duration", -86400, schema.SecondsUnit, nil, "-1 d"},
		{"bytes default iec", 1073741824, schema.BytesUnit, nil, "1 GiB"},
		{"bytes si", 1000000, schema.BytesUnit, map[string]any{"format": "si"}, "1 MB"},
		{"bytes per second", 1024, schema.BytesPerSecUnit, nil, "1 KiB/s"},
		{"bits", 1000, schema.BitsUnit, map[string]any{"format": "si"}, "1 kb"},
		{"bits per second iec", 1024, schema.BitsPerSecUnit, nil, "1 Kib/s"},
		{"hertz", 1500, schema.HertzUnit, nil, "1.5 kHz"},
		{"counts per second", 2000000, schema.CountsPerSecUnit, nil, "2M c/s"},
		{"small operations per second", 12, schema.OperationsPerSecUnit, nil, "12 ops/s"},
		{"percent", 42.5, schema.PercentUnit, nil, "42.5%"},
		{"percent normalized", 0.5, schema.PercentNormalizedUnit, nil, "50%"},
		{"boolean false", 0, schema.BooleanUnit, nil, "False"},
		{"boolean true", 3, schema.BooleanUnit, nil, "True"},
		{"custom name", 7, schema.CustomUnit, map[string]any{"customName": "files"}, "7 files"},
		{"custom metric suffix", 1500, schema.CustomUnit, map[string]any{"useMetricSuffix": true, "customName": "files"}, "1.5K files"},
		{"unknown unit", 3.25, schema.UnitName(""), nil, "3.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatWithUnit(tt.value, tt.unit, tt.options))
		})
	}
}
