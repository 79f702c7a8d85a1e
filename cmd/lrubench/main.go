// Command lrubench replays closing-price series through both cache
// façades and writes per-operation timings to a benchmark log, so the
// lock-free context-local handle can be compared against the locked
// shared cache on identical workloads.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HN026/LocalLru/internal/pricedata"
	"github.com/HN026/LocalLru/pkg/locallru"
	"github.com/HN026/LocalLru/pkg/metrics"
)

func main() {
	var (
		dataDir     = flag.String("data", "data", "directory holding <symbol>.csv price files")
		symbolList  = flag.String("symbols", "AAPL,MSFT,GOOG,TSLA", "comma-separated symbols to replay")
		capacity    = flag.Int("capacity", 1000, "cache capacity for both façades")
		ttl         = flag.Duration("ttl", 0, "entry time-to-live (0 means never expire)")
		outPath     = flag.String("out", "results/trading_benchmark.log", "benchmark log file")
		metricsAddr = flag.String("metrics-addr", "", "optional address to serve Prometheus metrics on (e.g. :9090)")
	)
	flag.Parse()

	logger := locallru.NewDefaultLogger(locallru.LogLevelInfo)

	if err := run(*dataDir, *symbolList, *capacity, *ttl, *outPath, *metricsAddr, logger); err != nil {
		logger.Error("benchmark failed", locallru.F("error", err))
		os.Exit(1)
	}
}

func run(dataDir, symbolList string, capacity int, ttl time.Duration, outPath, metricsAddr string, logger locallru.Logger) error {
	symbols := strings.Split(symbolList, ",")
	for i := range symbols {
		symbols[i] = strings.TrimSpace(symbols[i])
	}

	all, err := pricedata.LoadDir(dataDir, symbols)
	if err != nil {
		return err
	}
	for _, s := range all {
		if s.Skipped > 0 {
			logger.Warn("skipped malformed price rows",
				locallru.F("symbol", s.Symbol), locallru.F("rows", s.Skipped))
		}
	}

	cfg := locallru.NewDefaultConfig().WithCapacity(capacity).WithTTL(ttl)

	local, err := locallru.NewLocal[string, float64](cfg)
	if err != nil {
		return err
	}
	handle := local.Acquire()

	sharedCfg := cfg.WithLogger(logger)
	if metricsAddr != "" {
		exporter, err := metrics.NewPrometheusExporter(nil)
		if err != nil {
			return fmt.Errorf("creating exporter: %w", err)
		}
		sharedCfg = sharedCfg.WithMetricsExporter(exporter, "lrubench")

		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				logger.Error("metrics listener failed", locallru.F("error", err))
			}
		}()
		logger.Info("serving metrics", locallru.F("addr", metricsAddr))
	}

	shared, err := locallru.NewShared[string, float64](sharedCfg)
	if err != nil {
		return err
	}
	defer shared.Close()

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating results directory: %w", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	defer w.Flush()

	fmt.Fprintf(w, "[Benchmark Start]\nSymbols: %s\n", strings.Join(symbols, " "))
	fmt.Fprintln(w, "---------------------------------")

	startTotal := time.Now()

	for _, series := range all {
		fmt.Fprintf(w, "%s processing %d rows\n", series.Symbol, len(series.Prices))

		for _, price := range series.Prices {
			localStart := time.Now()
			handle.Put(series.Symbol, price)
			handle.Get(series.Symbol)
			localElapsed := time.Since(localStart)

			sharedStart := time.Now()
			shared.Put(series.Symbol, price)
			shared.Get(series.Symbol)
			sharedElapsed := time.Since(sharedStart)

			fmt.Fprintf(w, "%s price=%g local_ns=%d shared_ns=%d\n",
				series.Symbol, price, localElapsed.Nanoseconds(), sharedElapsed.Nanoseconds())
		}
	}

	fmt.Fprintf(w, "Total elapsed time (s): %g\n", time.Since(startTotal).Seconds())

	stats := shared.Stats()
	fmt.Fprintf(w, "Shared cache: hits=%d misses=%d evictions=%d hit_rate=%.2f%%\n",
		stats.Hits(), stats.Misses(), stats.Evictions(), stats.HitRate())
	fmt.Fprintln(w, "[Benchmark End]")

	logger.Info("benchmark complete", locallru.F("log", outPath))
	return nil
}
