package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// InputFormat represents the encoding of a metric table on disk.
	InputFormat string

	// ComplexityMode selects how non-complex file density is computed.
	ComplexityMode string

	// ResultLevel identifies the layer of the quality model a value belongs to.
	ResultLevel string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All input formats supported.
const (
	AutoFormat    InputFormat = "auto" // default
	JSONFormat    InputFormat = "json"
	CSVFormat     InputFormat = "csv"
	YAMLFormat    InputFormat = "yaml"
	ParquetFormat InputFormat = "parquet"
)

// All complexity modes supported.
const (
	DensityComplexity ComplexityMode = "density" // default
	MedianComplexity  ComplexityMode = "median"
)

// Quality model levels.
const (
	MeasureLevel           ResultLevel = "measure"
	SubcharacteristicLevel ResultLevel = "subcharacteristic"
	CharacteristicLevel    ResultLevel = "characteristic"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	AutoFormat:    {},
	JSONFormat:    {},
	CSVFormat:     {},
	YAMLFormat:    {},
	ParquetFormat: {},
}

// ValidComplexityModes lists all valid complexity modes.
var ValidComplexityModes = map[ComplexityMode]struct{}{
	DensityComplexity: {},
	MedianComplexity:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
