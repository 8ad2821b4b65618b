// Command kvs-server runs the TCP server fronting a kvs store.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/iamNilotpal/kvs/internal/engine"
	"github.com/iamNilotpal/kvs/internal/server"
	"github.com/iamNilotpal/kvs/internal/threadpool"
	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/iamNilotpal/kvs/pkg/options"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	defaults := options.NewDefaultOptions()

	flags := flag.NewFlagSet("kvs-server", flag.ContinueOnError)
	addr := flags.String("addr", defaults.Addr, "TCP address to listen on")
	engineName := flags.String("engine", defaults.Engine, "storage engine: kvs or sled")
	dataDir := flags.String("data-dir", defaults.DataDir, "directory holding segment files")
	metricsAddr := flags.String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	workers := flags.Int("workers", 8, "number of worker goroutines in the shared thread pool")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logger.New("kvs-server")
	defer log.Sync()

	opts := options.NewDefaultOptions()
	options.WithAddr(*addr)(&opts)
	options.WithEngine(*engineName)(&opts)
	options.WithDataDir(*dataDir)(&opts)

	eng, err := engine.Open(&opts, log)
	if err != nil {
		log.Errorw("failed to open engine", "error", err)
		return 1
	}
	defer eng.Close()

	reg := prometheus.NewRegistry()
	pool := threadpool.NewSharedQueueThreadPool(*workers, log)
	srv := server.New(eng, pool, log, reg)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Errorw("metrics server stopped", "error", err)
			}
		}()
	}

	if err := srv.ListenAndServe(opts.Addr); err != nil {
		log.Errorw("server stopped", "error", err)
		return 1
	}
	return 0
}
