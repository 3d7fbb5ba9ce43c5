// Package main provides a performance benchmarking tool for the tschart CLI.
// It measures evaluation times for every chart and series spec in a
// directory, running each one multiple times without a fetch cache and with
// a SQLite fetch cache, treating the first cached run as cold and averaging
// the rest as warm, and writes CSV output for performance analysis.
//
// Prerequisites:
// - tschart binary installed and available in PATH
// - A metric store populated with the series the charts reference
//
// Usage: go run benchmark/main.go [chart-dir]
//
//	chart-dir: Directory containing *.yaml charts and *.json series specs
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Spec        string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ChartDir    string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	ExtraArgs   map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [chart-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		ChartDir:    os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		ExtraArgs: map[string][]string{
			"evaluate": {"--live"},
			"series":   {"--resolution", "60", "--points", "360", "--live"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing fetch cache...\n")
	clearCmd := exec.Command("tschart", "store", "clear", "--cache", "--cache-backend", "sqlite")
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

// checkPrerequisites verifies that the tschart binary and the chart directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("tschart"); err != nil {
		return fmt.Errorf("tschart binary not found in PATH")
	}
	if info, err := os.Stat(config.ChartDir); err != nil || !info.IsDir() {
		return fmt.Errorf("chart directory %s not found", config.ChartDir)
	}
	return nil
}

// specCommand maps a spec file to the command that evaluates it.
func specCommand(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "evaluate", true
	case ".json":
		return "series", true
	}
	return "", false
}

// runBenchmarks executes all benchmark tests across the specs of the chart directory
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	entries, err := os.ReadDir(config.ChartDir)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", config.ChartDir, err)
		return nil
	}

	var specs []string
	for _, entry := range entries {
		if _, ok := specCommand(entry.Name()); ok && !entry.IsDir() {
			specs = append(specs, filepath.Join(config.ChartDir, entry.Name()))
		}
	}
	sort.Strings(specs)

	fmt.Printf("Starting benchmark: %d specs, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(specs), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	var results []BenchmarkResult
	for _, spec := range specs {
		command, _ := specCommand(spec)
		results = append(results, runBenchmarkSuite(config, spec, command))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a spec
func runBenchmarkSuite(config BenchmarkConfig, spec, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, spec)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, spec, command, cacheBackend, numRuns)
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
		Spec:        filepath.Base(spec),
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a tschart command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, spec, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, spec, "--cache-backend", cacheBackend}
	args = append(args, config.ExtraArgs[command]...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()
		cmd := exec.Command("tschart", args...)

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
			_ = cmd.Process.Kill()
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
	if command == "series" {
		return strings.Contains(outputStr, "Evaluated") && strings.Contains(outputStr, "result in")
	}
	return strings.Contains(outputStr, "Evaluated") && strings.Contains(outputStr, "series over")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/tschart_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"spec", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Spec, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "evaluate", "Chart Evaluation:")
	printCommandSummary(results, "series", "Series Evaluation:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-20s: No-cache: %s, Cold: %s, Warm: %s\n", result.Spec, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
