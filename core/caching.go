package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// currentCacheVersion defines the version of the cached report layout
const currentCacheVersion = 1

// cacheTTL is how long a cached report stays valid.
const cacheTTL = 7 * 24 * time.Hour

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll calls.
var (
	reportEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	reportDecoder, _ = zstd.NewReader(nil)
)

// cachedReport returns the cached report for key, or nil on a miss.
func cachedReport(store contract.CacheStore, key string) *schema.QualityReport {
	if store == nil {
		return nil
	}
	return checkCacheHit(store, key, time.Now())
}

// checkCacheHit attempts to retrieve and validate a cached report
func checkCacheHit(store contract.CacheStore, key string, now time.Time) *schema.QualityReport {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || now.Sub(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}

	report, err := decodeReport(data)
	if err != nil {
		return nil
	}
	report.Cached = true
	return report
}

// storeReport writes report to the cache. Failures only cost a recomputation later.
func storeReport(store contract.CacheStore, key string, report *schema.QualityReport) {
	if store == nil {
		return
	}
	data, err := encodeReport(report)
	if err != nil {
		return
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to cache report", err)
	}
}

// encodeReport serializes a report as zstd-compressed JSON.
func encodeReport(report *schema.QualityReport) ([]byte, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return reportEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// decodeReport is the inverse of encodeReport.
func decodeReport(data []byte) (*schema.QualityReport, error) {
	raw, err := reportDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress report: %w", err)
	}
	var report schema.QualityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// generateCacheKey creates a unique key from the table content and every
// setting that changes the report.
func generateCacheKey(cfg *contract.Config, data []byte) string {
	h := sha256.New()
	_, _ = h.Write(data)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(cfg.Fingerprint()))
	return fmt.Sprintf("%x", h.Sum(nil))
}
