// cmd/server/main.go
// Serves lab variants over HTTP, Prometheus metrics on a separate port, and
// a gRPC health service so orchestration can probe the node.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/dattu/lab_variants/pkg/config"
	"github.com/dattu/lab_variants/pkg/metrics"
	"github.com/dattu/lab_variants/pkg/server"
	"github.com/dattu/lab_variants/pkg/storage"
)

/* ------------------------------------------------------------------------ */
/* constants                                                                */
/* ------------------------------------------------------------------------ */

const (
	defaultHistory  = "variants.db"
	shutdownTimeout = 10 * time.Second
	readTimeout     = 5 * time.Second
)

/* ------------------------------------------------------------------------ */
/* main                                                                     */
/* ------------------------------------------------------------------------ */

func main() {
	/* flags */
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	cfgPath := fs.String("config", "", "optional YAML config file")
	fs.String("paths-root", ".", "project root")
	fs.String("paths-template", "ASSIGNMENT_TEMPLATE.md", "assignment template")
	fs.String("paths-history", defaultHistory, "bbolt history file")
	fs.Int("server-http-port", 8080, "HTTP port for /variants")
	fs.Int("server-grpc-port", 50051, "gRPC health port")
	fs.Int("server-metrics-port", 9102, "HTTP port for /metrics")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgPath, fs)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	/* history */
	historyPath := cfg.HistoryPath()
	if historyPath == "" {
		historyPath = cfg.Resolve(defaultHistory)
	}
	history, err := storage.OpenHistory(historyPath)
	if err != nil {
		log.Fatalf("history: %v", err)
	}
	defer history.Close()
	batcher := storage.NewBatcher(history)
	defer batcher.Close()

	m := metrics.New()
	srv := &server.Server{
		Metrics:      m,
		History:      batcher,
		TemplatePath: cfg.TemplatePath(),
	}

	/* /metrics endpoint */
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: readTimeout,
	}
	go func() {
		log.Printf("Prometheus metrics on %s/metrics", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	/* gRPC health */
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	gs, hs := server.NewGRPCServer()
	go func() {
		log.Printf("gRPC health on %s", lis.Addr())
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("grpc: %v", err)
		}
	}()

	/* HTTP variants */
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readTimeout,
	}
	go func() {
		log.Printf("Variants on %s (history %s)", httpSrv.Addr, historyPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	/* shutdown */
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")

	hs.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	httpSrv.Shutdown(ctx)
	metricsSrv.Shutdown(ctx)
	gs.GracefulStop()
}
