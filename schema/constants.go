package schema

// Custom string types for type safety.
type (
	// ResultType discriminates the two shapes a series function can produce.
	ResultType string

	// FunctionName identifies a series or transform function.
	FunctionName string

	// BuilderType identifies a series or series-group builder.
	BuilderType string

	// SourceType identifies where dynamic configs or series data come from.
	SourceType string

	// ByteFormat is the notation used when stringifying byte counts.
	ByteFormat string

	// ReplaceEmptyStrategy decides how null values are filled.
	ReplaceEmptyStrategy string

	// UnitName names a value unit understood by formatWithUnit.
	UnitName string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage.
	DatabaseBackend string

	// ConfigKind distinguishes dynamic series configs from series-group configs.
	ConfigKind string
)

// All result types.
const (
	BasicResultType  ResultType = "basic"
	PointsResultType ResultType = "points"
)

// Series functions.
const (
	LiteralFunction                     FunctionName = "literal"
	LoadSeriesFunction                  FunctionName = "loadSeries"
	TimeDerivativeFunction              FunctionName = "timeDerivative"
	RateFunction                        FunctionName = "rate"
	ReplaceEmptyFunction                FunctionName = "replaceEmpty"
	MultiplyFunction                    FunctionName = "multiply"
	GetDynamicSeriesConfigFunction      FunctionName = "getDynamicSeriesConfig"
	GetDynamicSeriesGroupConfigFunction FunctionName = "getDynamicSeriesGroupConfig"
)

// Transform functions. replaceEmpty and multiply exist in both registries.
const (
	AbsFunction              FunctionName = "abs"
	AsBytesFunction          FunctionName = "asBytes"
	AsBytesPerSecondFunction FunctionName = "asBytesPerSecond"
	SupplyValueFunction      FunctionName = "supplyValue"
	FormatWithUnitFunction   FunctionName = "formatWithUnit"
)

// FunctionAliases maps legacy spellings found in persisted charts to their
// canonical names.
var FunctionAliases = map[FunctionName]FunctionName{
	"time-derivative":                 TimeDerivativeFunction,
	"currentValue":                    SupplyValueFunction,
	"getDynamicSeriesGroupConfigData": GetDynamicSeriesGroupConfigFunction,
}

// ValidSeriesFunctions lists all series function names.
var ValidSeriesFunctions = map[FunctionName]struct{}{
	LiteralFunction:                     {},
	LoadSeriesFunction:                  {},
	TimeDerivativeFunction:              {},
	RateFunction:                        {},
	ReplaceEmptyFunction:                {},
	MultiplyFunction:                    {},
	GetDynamicSeriesConfigFunction:      {},
	GetDynamicSeriesGroupConfigFunction: {},
}

// ValidTransformFunctions lists all transform function names.
var ValidTransformFunctions = map[FunctionName]struct{}{
	AbsFunction:              {},
	AsBytesFunction:          {},
	AsBytesPerSecondFunction: {},
	SupplyValueFunction:      {},
	FormatWithUnitFunction:   {},
	ReplaceEmptyFunction:     {},
	MultiplyFunction:         {},
}

// All builder types.
const (
	StaticBuilder  BuilderType = "static"
	DynamicBuilder BuilderType = "dynamic"
)

// ValidBuilderTypes lists all builder types.
var ValidBuilderTypes = map[BuilderType]struct{}{
	StaticBuilder:  {},
	DynamicBuilder: {},
}

// ExternalSource is the only source type currently understood.
const ExternalSource SourceType = "external"

// All byte formats.
const (
	IECFormat ByteFormat = "iec" // default
	SIFormat  ByteFormat = "si"
	BitFormat ByteFormat = "bit"

	BitIECFormat ByteFormat = "bitIec"
	BitSIFormat  ByteFormat = "bitSi"
)

// BitFormatFor returns the bit flavour of an iec or si format.
func BitFormatFor(format ByteFormat) ByteFormat {
	if format == SIFormat {
		return BitSIFormat
	}
	return BitIECFormat
}

// ValidByteFormats lists byte formats accepted by asBytes.
var ValidByteFormats = map[ByteFormat]struct{}{
	IECFormat: {},
	SIFormat:  {},
	BitFormat: {},
}

// All replaceEmpty strategies.
const (
	UseFallbackStrategy ReplaceEmptyStrategy = "useFallback" // default
	UsePreviousStrategy ReplaceEmptyStrategy = "usePrevious"
)

// All units understood by formatWithUnit.
const (
	MillisecondsUnit       UnitName = "milliseconds"
	SecondsUnit            UnitName = "seconds"
	BitsUnit               UnitName = "bits"
	BytesUnit              UnitName = "bytes"
	BitsPerSecUnit         UnitName = "bitsPerSec"
	BytesPerSecUnit        UnitName = "bytesPerSec"
	HertzUnit              UnitName = "hertz"
	CountsPerSecUnit       UnitName = "countsPerSec"
	OperationsPerSecUnit   UnitName = "operationsPerSec"
	RequestsPerSecUnit     UnitName = "requestsPerSec"
	ReadsPerSecUnit        UnitName = "readsPerSec"
	WritesPerSecUnit       UnitName = "writesPerSec"
	IOOperationsPerSecUnit UnitName = "ioOperationsPerSec"
	PercentUnit            UnitName = "percent"
	PercentNormalizedUnit  UnitName = "percentNormalized"
	BooleanUnit            UnitName = "boolean"
	CustomUnit             UnitName = "custom"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// All dynamic config kinds.
const (
	SeriesConfigKind      ConfigKind = "series"
	SeriesGroupConfigKind ConfigKind = "group"
)

// DefaultPointDuration is the five-second metric resolution.
const DefaultPointDuration int64 = 5
