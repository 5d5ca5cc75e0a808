package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fwdslash/dynkv/cmd/util"
	"github.com/fwdslash/dynkv/lib/value"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for dynkv stores",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfOpsPerTest       = 10000
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("How many operations each benchmark performs"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOpsPerTest = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for dynkv stores")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetStoreConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Ops per test: %d\n", perfOpsPerTest)
	fmt.Println()

	fmt.Println("starting tests...")

	smallValue := value.Object().Set("data", value.String("test"))
	largeValue := value.Object().Set("data", value.String(strings.Repeat("x", perfLargeValueSizeKB*1024)))

	// Create results map
	results := make(map[string]metrics.Timer)

	results["set"] = runBenchmark("set", func(counter int, getKey func(int) string) {
		kvStore.Set(getKey(counter), smallValue)
	}, value.Null())

	results["set-large"] = runBenchmark("set-large", func(counter int, getKey func(int) string) {
		kvStore.Set(getKey(counter), largeValue)
	}, value.Null())

	results["get"] = runBenchmark("get", func(counter int, getKey func(int) string) {
		kvStore.Get(getKey(counter))
	}, smallValue)

	results["push"] = runBenchmark("push", func(counter int, getKey func(int) string) {
		kvStore.Push(getKey(counter), smallValue)
	}, smallValue)

	results["has"] = runBenchmark("has", func(counter int, getKey func(int) string) {
		kvStore.HasKey(getKey(counter))
	}, smallValue)

	results["has-not"] = runBenchmark("has-not", func(counter int, _ func(int) string) {
		kvStore.HasKey(fmt.Sprintf("%s-absent-%d", perfKeyPrefix, counter%perfKeySpread))
	}, value.Null())

	results["delete"] = runBenchmark("delete", func(counter int, getKey func(int) string) {
		kvStore.Delete(getKey(counter))
	}, smallValue)

	results["mixed"] = runBenchmark("mixed", func(counter int, getKey func(int) string) {
		key := getKey(counter)
		switch counter % 4 {
		case 0:
			kvStore.Set(key, smallValue)
		case 1:
			kvStore.Get(key)
		case 2:
			kvStore.Delete(key)
		case 3:
			kvStore.HasKey(key)
		}
	}, smallValue)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runBenchmark runs op perfOpsPerTest times across perfNumThreads goroutines
// and records each invocation in a timer. If seed is non-nil, every test key
// is set to it before the timed run. All test keys are deleted afterwards.
func runBenchmark(test string, op func(counter int, getKey func(int) string), seed value.Value) metrics.Timer {
	timer := metrics.NewTimer()

	if shouldSkip(test) {
		printResult(test, timer)
		return timer
	}

	getKey, iter := getKeys(test)

	if !seed.IsNull() {
		iter(func(k string) {
			kvStore.Set(k, seed)
		})
	}

	opsPerThread := perfOpsPerTest / perfNumThreads
	var wg sync.WaitGroup
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := 0; i < opsPerThread; i++ {
				counter := offset + i
				start := time.Now()
				op(counter, getKey)
				timer.UpdateSince(start)
			}
		}(t * opsPerThread)
	}
	wg.Wait()

	// cleanup
	iter(func(k string) {
		kvStore.Delete(k)
	})

	printResult(test, timer)
	return timer
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer metrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	mean := time.Duration(timer.Mean())
	p95 := time.Duration(timer.Percentile(0.95))

	fmt.Printf("%-20smean %s/op\tp95 %s/op\t%.0f ops/sec\n", test, mean, p95, timer.RateMean())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]metrics.Timer) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	config := util.GetStoreConfig()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P95Ns", "OpsPerSec", "Skipped",
		"DBPath", "OwnerID", "OwnerKind",
		"MaxSlotBytes", "MaxTotalBytes",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, timer := range results {
		skipped := "false"
		if timer.Count() == 0 {
			skipped = "true"
		}

		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", timer.Percentile(0.95)),
			fmt.Sprintf("%.0f", timer.RateMean()),
			skipped,
			config.DBPath,
			config.OwnerID,
			config.OwnerKind,
			strconv.Itoa(config.MaxSlotBytes),
			strconv.Itoa(config.MaxTotalBytes),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
