// Package main provides a performance benchmarking tool for the msgram CLI.
// It measures execution times across metric tables of different sizes and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - msgram binary installed and available in PATH
// - Metric tables exported to the specified base directory
// - Tables: small.json, medium.csv, large.parquet
//
// Usage: go run benchmark/main.go [table-base-dir]
//
//	table-base-dir: Directory containing metric tables
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Table       string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	TableBase   string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Tables      []string
	MinScores   string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [table-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		TableBase:   os.Args[1],
		Timeout:     2 * time.Minute,
		Workers:     4,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Tables:      []string{"small.json", "medium.csv", "large.parquet"},
		MinScores:   "reliability:0,maintainability:0",
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("msgram", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the msgram binary and metric tables exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("msgram"); err != nil {
		return fmt.Errorf("msgram binary not found in PATH")
	}
	for _, table := range config.Tables {
		tablePath := filepath.Join(config.TableBase, table)
		if _, err := os.Stat(tablePath); os.IsNotExist(err) {
			return fmt.Errorf("metric table %s not found at %s", table, tablePath)
		}
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured tables
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d tables, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Tables), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, table := range config.Tables {
		fmt.Printf("Benchmarking %s\n", table)
		tablePath := filepath.Join(config.TableBase, table)

		results = append(results, runBenchmarkSuite(config, table, "measures", []string{tablePath}))
		results = append(results, runBenchmarkSuite(config, table, "check", []string{"--min-scores", config.MinScores, tablePath}))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, table, command string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, table)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Table:       table,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes an msgram command multiple times with the given cache backend
// and returns the cold time and the warm times
func runBenchmark(config BenchmarkConfig, command string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers)}
	args = append(args, extraArgs...)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := exec.Command("msgram", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "check" {
		return strings.Contains(outputStr, "All scores met their minimums")
	}
	return strings.Contains(outputStr, "Evaluated") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/msgram_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"table", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Table, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"measures", "check"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-14s: No-cache: %s, Cold: %s, Warm: %s\n", result.Table, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
