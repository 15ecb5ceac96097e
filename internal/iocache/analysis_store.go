package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// Table names for measure history.
const (
	measureRunsTable   = "msgram_measure_runs"
	measureValuesTable = "msgram_measure_values"
)

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the measure history tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{measureRunsTable, getCreateMeasureRunsQuery(backend)},
		{measureValuesTable, getCreateMeasureValuesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateMeasureRunsQuery returns the CREATE TABLE query for msgram_measure_runs.
func getCreateMeasureRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(measureRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				source VARCHAR(512) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_files INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				source TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_files INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				source TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_files INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateMeasureValuesQuery returns the CREATE TABLE query for msgram_measure_values.
func getCreateMeasureValuesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(measureValuesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				value_level VARCHAR(32) NOT NULL,
				value_key VARCHAR(100) NOT NULL,
				score DOUBLE NOT NULL,
				min_threshold DOUBLE,
				max_threshold DOUBLE,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, value_level, value_key)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				value_level TEXT NOT NULL,
				value_key TEXT NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				min_threshold DOUBLE PRECISION,
				max_threshold DOUBLE PRECISION,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, value_level, value_key)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				value_level TEXT NOT NULL,
				value_key TEXT NOT NULL,
				score REAL NOT NULL,
				min_threshold REAL,
				max_threshold REAL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, value_level, value_key)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new measure run and returns its ID and UUID.
func (as *AnalysisStoreImpl) BeginRun(source string, startTime time.Time, configParams map[string]any) (int64, string, error) {
	runUUID := uuid.NewString()
	if as.db == nil {
		return 0, runUUID, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(measureRunsTable, as.backend)
	args := []any{runUUID, source, formatTime(startTime, as.backend), string(configJSON)}

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, source, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, source, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert measure run: %w", err)
	}

	return runID, runUUID, nil
}

// RecordValue stores one value of a run.
func (as *AnalysisStoreImpl) RecordValue(runID int64, value schema.MeasureValueRecord) error {
	if as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, value_level, value_key, score, min_threshold, max_threshold, recorded_at) VALUES (%s)`,
		quoteTableName(measureValuesTable, as.backend), placeholderList(as.backend, 7))
	_, err := as.db.Exec(query,
		runID, string(value.Level), value.Key, value.Value,
		value.MinThreshold, value.MaxThreshold, formatTime(value.RecordedAt, as.backend),
	)
	if err != nil {
		return fmt.Errorf("failed to insert measure value %s: %w", value.Key, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (as *AnalysisStoreImpl) EndRun(runID int64, endTime time.Time, totalFiles int) error {
	if as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(measureRunsTable, as.backend)
	ph := placeholders(as.backend, 4)

	start := timeScanner{backend: as.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, ph[0])
	if err := as.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}

	durationMs := int32(0)
	if startTime != nil {
		durationMs = int32(endTime.Sub(*startTime).Milliseconds())
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_files = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3])
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, totalFiles, runID); err != nil {
		return fmt.Errorf("failed to update measure run: %w", err)
	}
	return nil
}

// GetHistory returns the stored values of a source, newest run first.
// An empty key selects every value, a zero since disables the time filter
// and a non-positive limit returns all rows.
func (as *AnalysisStoreImpl) GetHistory(source string, key string, since time.Time, limit int) ([]schema.HistoryPoint, error) {
	if as.db == nil {
		return nil, nil
	}

	var conds []string
	var args []any
	next := func() string {
		if as.backend == schema.PostgreSQLBackend {
			return fmt.Sprintf("$%d", len(args))
		}
		return "?"
	}

	args = append(args, source)
	conds = append(conds, "r.source = "+next())
	if key != "" {
		args = append(args, key)
		conds = append(conds, "v.value_key = "+next())
	}
	if !since.IsZero() {
		args = append(args, formatTime(since, as.backend))
		conds = append(conds, "v.recorded_at >= "+next())
	}

	query := fmt.Sprintf(`SELECT v.run_id, r.run_uuid, r.source, v.value_level, v.value_key, v.score, v.recorded_at
		FROM %s v JOIN %s r ON r.run_id = v.run_id
		WHERE %s
		ORDER BY v.run_id DESC, v.value_level, v.value_key`,
		quoteTableName(measureValuesTable, as.backend),
		quoteTableName(measureRunsTable, as.backend),
		strings.Join(conds, " AND "))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measure history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryPoint
	for rows.Next() {
		var p schema.HistoryPoint
		var level string
		recorded := timeScanner{backend: as.backend}
		if err := rows.Scan(&p.RunID, &p.RunUUID, &p.Source, &level, &p.Key, &p.Value, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan measure history: %w", err)
		}
		p.Level = schema.ResultLevel(level)
		t, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			p.RecordedAt = *t
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measure history: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := quoteTableName(measureRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: as.backend}
		row := as.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: as.backend}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_files), 0), COUNT(DISTINCT source) FROM %s", runs))
		if err := row.Scan(&status.TotalFilesEvaluated, &status.TrackedSources); err != nil {
			return status, fmt.Errorf("failed to get run totals: %w", err)
		}
	}

	for _, table := range []string{measureRunsTable, measureValuesTable} {
		var count int64
		row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all measure runs from the store.
func (as *AnalysisStoreImpl) GetAllRuns() ([]schema.MeasureRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, run_uuid, source, start_time, end_time, run_duration_ms, total_files, config_params FROM %s ORDER BY run_id",
		quoteTableName(measureRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query measure runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MeasureRunRecord
	for rows.Next() {
		var record schema.MeasureRunRecord
		start := timeScanner{backend: as.backend}
		end := timeScanner{backend: as.backend}
		var duration sql.NullInt32
		var params sql.NullString
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Source, start.dest(), end.dest(), &duration, &record.TotalFiles, &params); err != nil {
			return nil, fmt.Errorf("failed to scan measure run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		if params.Valid {
			record.ConfigParams = &params.String
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measure runs: %w", err)
	}
	return results, nil
}

// GetAllValues retrieves all stored measure values.
func (as *AnalysisStoreImpl) GetAllValues() ([]schema.MeasureValueRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, value_level, value_key, score, min_threshold, max_threshold, recorded_at
		FROM %s ORDER BY run_id, value_level, value_key`, quoteTableName(measureValuesTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query measure values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MeasureValueRecord
	for rows.Next() {
		var record schema.MeasureValueRecord
		var level string
		var minThreshold, maxThreshold sql.NullFloat64
		recorded := timeScanner{backend: as.backend}
		if err := rows.Scan(&record.RunID, &level, &record.Key, &record.Value, &minThreshold, &maxThreshold, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan measure value: %w", err)
		}
		record.Level = schema.ResultLevel(level)
		if minThreshold.Valid {
			record.MinThreshold = &minThreshold.Float64
		}
		if maxThreshold.Valid {
			record.MaxThreshold = &maxThreshold.Float64
		}
		t, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			record.RecordedAt = *t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measure values: %w", err)
	}
	return results, nil
}
