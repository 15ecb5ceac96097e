package contract

import (
	"encoding/json"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/measuresoftgram/msgram/core/measure"
	"github.com/measuresoftgram/msgram/core/model"
	"github.com/measuresoftgram/msgram/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 2
	MaxPrecision        = 4
	DefaultHistoryLimit = 50
	MaxResultLimit      = 1000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ThresholdsRawInput holds a partial threshold override from the YAML config file.
// A missing side keeps the measure default.
type ThresholdsRawInput struct {
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	Inputs      []string
	InputFormat schema.InputFormat
	Excludes    []string

	// Measures is the list of measures to compute. When ExplicitMeasures is false
	// it holds every registered measure and unsupported ones are skipped.
	Measures         []measure.Key
	ExplicitMeasures bool
	ComplexityMode   schema.ComplexityMode

	// Thresholds holds the overrides only; measures without an entry use their defaults.
	Thresholds map[measure.Key]schema.Thresholds

	MeasureWeights        model.Weights
	CharacteristicWeights model.Weights

	// MinScores maps a measure, subcharacteristic or characteristic key to its minimum.
	MinScores map[string]float64

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	HistorySource string
	HistoryKey    string
	Since         time.Time
	Limit         int

	NoCache  bool
	Revision bool // Stamp runs with the git revision of the input

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	InputPaths    []string
	HistorySource string

	// --- Fields from rootCmd.PersistentFlags() ---
	Measures          string `mapstructure:"measures"`
	ComplexityMode    string `mapstructure:"complexity-mode"`
	InputFormat       string `mapstructure:"input-format"`
	Exclude           string `mapstructure:"exclude"`
	OutputFile        string `mapstructure:"output-file"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	Width             int    `mapstructure:"width"`
	NoCache           bool   `mapstructure:"no-cache"`
	Revision          bool   `mapstructure:"revision"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`
	ThresholdsStr     string `mapstructure:"thresholds-override"`

	// --- Fields from checkCmd.Flags() ---
	MinScoresStr string `mapstructure:"min-scores"`

	// --- Fields from historyCmd.Flags() ---
	Key   string `mapstructure:"key"`
	Since string `mapstructure:"since"`
	Limit int    `mapstructure:"limit"`

	// --- Sections from config file ---
	Thresholds            map[string]ThresholdsRawInput `mapstructure:"thresholds"`
	Weights               map[string]map[string]float64 `mapstructure:"weights"`
	CharacteristicWeights map[string]map[string]float64 `mapstructure:"characteristic-weights"`
	Minimums              map[string]float64            `mapstructure:"minimums"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Inputs = slices.Clone(c.Inputs)
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Measures = slices.Clone(c.Measures)
	if c.Thresholds != nil {
		clone.Thresholds = maps.Clone(c.Thresholds)
	}
	if c.MinScores != nil {
		clone.MinScores = maps.Clone(c.MinScores)
	}
	clone.MeasureWeights = cloneWeights(c.MeasureWeights)
	clone.CharacteristicWeights = cloneWeights(c.CharacteristicWeights)
	return &clone
}

func cloneWeights(w model.Weights) model.Weights {
	if w == nil {
		return nil
	}
	out := make(model.Weights, len(w))
	for group, members := range w {
		out[group] = maps.Clone(members)
	}
	return out
}

// MeasureOptions returns the engine options for measure k under this config.
func (c *Config) MeasureOptions(k measure.Key) measure.Options {
	opts := measure.Options{ComplexityMode: c.ComplexityMode}
	if th, ok := c.Thresholds[k]; ok {
		opts.Thresholds = &th
	}
	return opts
}

// Fingerprint returns a stable string covering every setting that changes a report.
// It is part of the report cache key.
func (c *Config) Fingerprint() string {
	thresholds := make(map[string]schema.Thresholds, len(c.Thresholds))
	for k, th := range c.Thresholds {
		thresholds[k.String()] = th
	}
	measures := make([]string, len(c.Measures))
	for i, k := range c.Measures {
		measures[i] = k.String()
	}
	payload := struct {
		Measures              []string                     `json:"measures"`
		Explicit              bool                         `json:"explicit"`
		ComplexityMode        schema.ComplexityMode        `json:"complexity_mode"`
		Thresholds            map[string]schema.Thresholds `json:"thresholds"`
		MeasureWeights        model.Weights                `json:"weights"`
		CharacteristicWeights model.Weights                `json:"characteristic_weights"`
		Excludes              []string                     `json:"excludes"`
		InputFormat           schema.InputFormat           `json:"input_format"`
	}{measures, c.ExplicitMeasures, c.ComplexityMode, thresholds, c.MeasureWeights, c.CharacteristicWeights, c.Excludes, c.InputFormat}
	b, _ := json.Marshal(payload)
	return string(b)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processMeasures(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processMinScores(cfg, input); err != nil {
		return err
	}
	return processHistory(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' with host:port")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	// Cache and analysis must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Inputs = slices.Clone(input.InputPaths)
	cfg.OutputFile = input.OutputFile
	cfg.NoCache = input.NoCache
	cfg.Revision = input.Revision

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers and width ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers
	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 3. Input format and complexity mode ---
	cfg.InputFormat = schema.InputFormat(strings.ToLower(input.InputFormat))
	if cfg.InputFormat == "" {
		cfg.InputFormat = schema.AutoFormat
	}
	if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be auto, json, csv, yaml, parquet", input.InputFormat)
	}
	cfg.ComplexityMode = schema.ComplexityMode(strings.ToLower(input.ComplexityMode))
	if cfg.ComplexityMode == "" {
		cfg.ComplexityMode = schema.DensityComplexity
	}
	if _, ok := schema.ValidComplexityModes[cfg.ComplexityMode]; !ok {
		return fmt.Errorf("invalid complexity mode '%s'. must be density, median", input.ComplexityMode)
	}

	// --- 4. Backend Validation ---
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	// --- 5. Excludes Processing ---
	cfg.Excludes = nil
	for p := range strings.SplitSeq(input.Exclude, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return fmt.Errorf("invalid exclude pattern '%s'", p)
		}
		cfg.Excludes = append(cfg.Excludes, p)
	}
	return nil
}

// processMeasures resolves the comma-separated measure list. An empty list selects all.
func processMeasures(cfg *Config, input *ConfigRawInput) error {
	cfg.Measures = nil
	cfg.ExplicitMeasures = false
	for part := range strings.SplitSeq(input.Measures, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := measure.ParseKey(part)
		if err != nil {
			return fmt.Errorf("invalid --measures value: %w", err)
		}
		if !slices.Contains(cfg.Measures, k) {
			cfg.Measures = append(cfg.Measures, k)
		}
	}
	if len(cfg.Measures) > 0 {
		cfg.ExplicitMeasures = true
		return nil
	}
	cfg.Measures = measure.AllKeys()
	return nil
}

// processThresholds merges config file thresholds with the --thresholds-override flag,
// which takes precedence, and validates every resulting pair.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := make(map[measure.Key]schema.Thresholds)

	for name, raw := range input.Thresholds {
		k, def, err := thresholdMeasure(name)
		if err != nil {
			return err
		}
		th := def.Defaults
		if raw.Min != nil {
			th.Min = *raw.Min
		}
		if raw.Max != nil {
			th.Max = *raw.Max
		}
		thresholds[k] = th
	}

	if input.ThresholdsStr != "" {
		parsed, err := parseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	for k, th := range thresholds {
		def := measure.Get(k)
		if err := measure.ValidateThresholds(k.String(), th, def.Bounds); err != nil {
			return err
		}
	}
	cfg.Thresholds = thresholds
	return nil
}

func thresholdMeasure(name string) (measure.Key, measure.Definition, error) {
	k, err := measure.ParseKey(strings.TrimSpace(name))
	if err != nil {
		return 0, measure.Definition{}, err
	}
	def := measure.Get(k)
	if !def.HasThresholds {
		return 0, measure.Definition{}, fmt.Errorf("measure %s does not take thresholds", k)
	}
	return k, def, nil
}

// parseThresholdsString parses a string like "test_coverage:50:80,passed_tests:0.5:1"
// into a map of measure key to thresholds.
func parseThresholdsString(s string) (map[measure.Key]schema.Thresholds, error) {
	thresholds := make(map[measure.Key]schema.Thresholds)
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'measure:min:max'", part)
		}
		k, _, err := thresholdMeasure(fields[0])
		if err != nil {
			return nil, err
		}
		minValue, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min threshold '%s' for %s: %w", fields[1], k, err)
		}
		maxValue, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max threshold '%s' for %s: %w", fields[2], k, err)
		}
		thresholds[k] = schema.Thresholds{Min: minValue, Max: maxValue}
	}
	return thresholds, nil
}

// processWeights validates subcharacteristic and characteristic weights from the config file.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	measureWeights := make(model.Weights, len(input.Weights))
	for group, members := range input.Weights {
		normalized := make(map[string]float64, len(members))
		for name, w := range members {
			k, err := measure.ParseKey(name)
			if err != nil {
				return fmt.Errorf("invalid weights for %s: %w", group, err)
			}
			normalized[k.String()] = w
		}
		measureWeights[group] = normalized
	}
	if err := model.ValidateMeasureWeights(measureWeights); err != nil {
		return err
	}

	characteristicWeights := model.Weights(input.CharacteristicWeights)
	if err := model.ValidateCharacteristicWeights(characteristicWeights); err != nil {
		return err
	}

	cfg.MeasureWeights = measureWeights
	cfg.CharacteristicWeights = cloneWeights(characteristicWeights)
	return nil
}

// processMinScores merges config file minimums with the --min-scores flag.
func processMinScores(cfg *Config, input *ConfigRawInput) error {
	minimums := make(map[string]float64)
	for key, v := range input.Minimums {
		name, err := normalizeScoreKey(key)
		if err != nil {
			return err
		}
		minimums[name] = v
	}

	for part := range strings.SplitSeq(input.MinScoresStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return fmt.Errorf("invalid min score format '%s', expected 'key:value'", part)
		}
		name, err := normalizeScoreKey(keyValue[0])
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(keyValue[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid min score value '%s' for %s: %w", keyValue[1], name, err)
		}
		minimums[name] = v
	}

	for name, v := range minimums {
		if v < 0 || v > 1 {
			return fmt.Errorf("min score for %s must be between 0.0 and 1.0 (received %.2f)", name, v)
		}
	}
	cfg.MinScores = minimums
	return nil
}

// normalizeScoreKey maps a measure alias to its canonical key and accepts
// subcharacteristic and characteristic keys unchanged.
func normalizeScoreKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if k, err := measure.ParseKey(key); err == nil {
		return k.String(), nil
	}
	if _, ok := model.FindSubcharacteristic(key); ok {
		return key, nil
	}
	if _, ok := model.FindCharacteristic(key); ok {
		return key, nil
	}
	return "", fmt.Errorf("unknown score key '%s'", key)
}

// processHistory handles the history command parameters.
func processHistory(cfg *Config, input *ConfigRawInput) error {
	cfg.HistorySource = strings.TrimSpace(input.HistorySource)

	cfg.HistoryKey = ""
	if input.Key != "" {
		name, err := normalizeScoreKey(input.Key)
		if err != nil {
			return fmt.Errorf("invalid --key value: %w", err)
		}
		cfg.HistoryKey = name
	}

	since, err := ParseTimeArg(input.Since, time.Now())
	if err != nil {
		return fmt.Errorf("invalid --since value: %w", err)
	}
	cfg.Since = since

	cfg.Limit = input.Limit
	if cfg.Limit == 0 {
		cfg.Limit = DefaultHistoryLimit
	}
	if cfg.Limit < 0 || cfg.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	return nil
}

// RevalidateMeasures re-applies the measure selection and complexity mode on an
// already validated config. Empty values keep what cfg holds.
func RevalidateMeasures(cfg *Config, measures, complexityMode string) error {
	if measures != "" {
		if err := processMeasures(cfg, &ConfigRawInput{Measures: measures}); err != nil {
			return err
		}
	}
	if complexityMode != "" {
		mode := schema.ComplexityMode(strings.ToLower(complexityMode))
		if _, ok := schema.ValidComplexityModes[mode]; !ok {
			return fmt.Errorf("invalid complexity mode '%s'. must be density, median", complexityMode)
		}
		cfg.ComplexityMode = mode
	}
	return nil
}

// RevalidateMinScores replaces the minimums of cfg with the parsed "key:value" list.
func RevalidateMinScores(cfg *Config, minScores string) error {
	if strings.TrimSpace(minScores) == "" {
		return fmt.Errorf("min_scores is required. Example: maintainability:0.6")
	}
	return processMinScores(cfg, &ConfigRawInput{MinScoresStr: minScores})
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
