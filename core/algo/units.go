package algo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/tschart/schema"
)

var (
	iecByteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}
	siByteUnits  = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
	iecBitUnits  = []string{"b", "Kib", "Mib", "Gib", "Tib", "Pib", "Eib", "Zib", "Yib"}
	siBitUnits   = []string{"b", "kb", "Mb", "Gb", "Tb", "Pb", "Eb", "Zb", "Yb"}
)

// unitSuffixes are appended to metric-suffixed numbers.
var unitSuffixes = map[schema.UnitName]string{
	schema.HertzUnit:              "Hz",
	schema.CountsPerSecUnit:       "c/s",
	schema.OperationsPerSecUnit:   "ops/s",
	schema.RequestsPerSecUnit:     "req/s",
	schema.ReadsPerSecUnit:        "rd/s",
	schema.WritesPerSecUnit:       "wr/s",
	schema.IOOperationsPerSecUnit: "io/s",
}

// FormatBytes stringifies a byte count, e.g. 1073741824 -> "1 GiB".
// Bit formats print the count multiplied by 8. Unknown formats use iec.
func FormatBytes(bytes float64, format schema.ByteFormat) string {
	base := 1024.0
	units := iecByteUnits
	value := bytes
	switch format {
	case schema.SIFormat:
		base, units = 1000, siByteUnits
	case schema.BitFormat, schema.BitSIFormat:
		base, units, value = 1000, siBitUnits, bytes*8
	case schema.BitIECFormat:
		base, units, value = 1024, iecBitUnits, bytes*8
	}

	exp := 0
	if abs := math.Abs(value); abs >= 1 {
		exp = min(int(math.Floor(math.Log(abs)/math.Log(base))), len(units)-1)
	}
	scaled := roundTo(value/math.Pow(base, float64(exp)), 1)
	if math.Abs(scaled) >= base && exp < len(units)-1 {
		exp++
		scaled = roundTo(value/math.Pow(base, float64(exp)), 1)
	}
	return formatNumber(scaled) + " " + units[exp]
}

// FormatWithUnit stringifies a finite value in the given unit. Options are
// `format` (iec or si) for byte units and `customName` / `useMetricSuffix`
// for the custom unit.
func FormatWithUnit(value float64, unit schema.UnitName, options map[string]any) string {
	switch unit {
	case schema.MillisecondsUnit, schema.SecondsUnit:
		seconds := value
		if unit == schema.MillisecondsUnit {
			seconds = value / 1000
		}
		return formatDuration(seconds)

	case schema.BitsUnit, schema.BytesUnit, schema.BitsPerSecUnit, schema.BytesPerSecUnit:
		format := schema.ByteFormat(schema.StringField(options, "format"))
		if format != schema.SIFormat {
			format = schema.IECFormat
		}
		bytes := value
		if unit == schema.BitsUnit || unit == schema.BitsPerSecUnit {
			format = schema.BitFormatFor(format)
			bytes = value / 8
		}
		out := FormatBytes(bytes, format)
		if unit == schema.BitsPerSecUnit || unit == schema.BytesPerSecUnit {
			out += "/s"
		}
		return out

	case schema.HertzUnit:
		scaled, prefix := humanize.ComputeSI(value)
		return humanize.FtoaWithDigits(scaled, 2) + " " + prefix + unitSuffixes[unit]

	case schema.CountsPerSecUnit, schema.OperationsPerSecUnit, schema.RequestsPerSecUnit,
		schema.ReadsPerSecUnit, schema.WritesPerSecUnit, schema.IOOperationsPerSecUnit:
		return MetricSuffix(value) + " " + unitSuffixes[unit]

	case schema.PercentUnit:
		return formatNumber(value) + "%"

	case schema.PercentNormalizedUnit:
		return formatNumber(value*100) + "%"

	case schema.BooleanUnit:
		if value == 0 {
			return "False"
		}
		return "True"

	case schema.CustomUnit:
		out := formatNumber(value)
		if useSuffix, _ := options["useMetricSuffix"].(bool); useSuffix {
			out = MetricSuffix(value)
		}
		if name := schema.StringField(options, "customName"); name != "" {
			out += " " + name
		}
		return out

	default:
		return formatNumber(value)
	}
}

// MetricSuffix shortens a number with an upper-case metric suffix, e.g. 1500 -> "1.5K".
func MetricSuffix(value float64) string {
	if math.Abs(value) < 1000 {
		return formatNumber(value)
	}
	scaled, prefix := humanize.ComputeSI(value)
	return humanize.FtoaWithDigits(scaled, 2) + strings.ToUpper(prefix)
}

// formatDuration prints short durations in ms or sec and longer ones split
// into days, hours, minutes and seconds.
func formatDuration(seconds float64) string {
	switch {
	case math.Abs(seconds) < 1:
		return fmt.Sprintf("%d ms", int64(math.Floor(seconds*1000)))
	case math.Abs(seconds) < 60:
		return formatNumber(math.Floor(seconds*10)/10) + " sec"
	}

	total := int64(math.Abs(seconds))
	parts := make([]string, 0, 4)
	for _, unit := range []struct {
		size  int64
		label string
	}{{86400, "d"}, {3600, "h"}, {60, "min"}, {1, "s"}} {
		if n := total / unit.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, unit.label))
			total %= unit.size
		}
	}
	out := strings.Join(parts, " ")
	if seconds < 0 {
		out = "-" + out
	}
	return out
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// formatNumber prints the shortest representation, "1" rather than "1.0".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
