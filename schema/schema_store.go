package schema

import "time"

// MeasureRunRecord represents a row from the msgram_measure_runs table.
type MeasureRunRecord struct {
	RunID         int64
	RunUUID       string
	Source        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalFiles    int32
	ConfigParams  *string
}

// MeasureValueRecord represents a row from the msgram_measure_values table.
type MeasureValueRecord struct {
	RunID        int64
	Level        ResultLevel
	Key          string
	Value        float64
	MinThreshold *float64
	MaxThreshold *float64
	RecordedAt   time.Time
}

// HistoryPoint is a single stored value joined with its run metadata.
type HistoryPoint struct {
	RunID      int64       `json:"run_id"`
	RunUUID    string      `json:"run_uuid"`
	Source     string      `json:"source"`
	Level      ResultLevel `json:"level"`
	Key        string      `json:"key"`
	Value      float64     `json:"value"`
	RecordedAt time.Time   `json:"recorded_at"`
}
