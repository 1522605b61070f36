// Command ringbuf-producer creates a named overwrite ring and streams
// ringrecord.Snapshot records into it at a fixed interval (the -interval
// flag), with the ring name and metrics settings read from config.yaml
// (SPEC_FULL.md §4.6). It plays the role the source's external
// `rbp` benchmark harness plays, adapted to this implementation's ambient
// stack instead of left as an out-of-scope collaborator.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringconfig"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringlog"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringmetrics/prom"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringproducer"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringrecord"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	prod := flag.Bool("prod", false, "use production (JSON) logging")
	rate := flag.Duration("interval", time.Millisecond, "interval between pushes")
	flag.Parse()

	logger, sync := ringlog.New(*prod)
	defer sync()

	cfg := ringconfig.MustLoad[ringconfig.Config](*configPath)

	var metrics *prom.Adapter
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics = prom.New(reg, "ringbuf", "producer", prometheus.Labels{"ring": cfg.Ring.Name})
		go serveMetrics(cfg.Metrics.Addr, reg, logger)
	}

	var opts []ringproducer.Option
	if metrics != nil {
		opts = append(opts, ringproducer.WithMetrics(metrics))
	}

	p, err := ringproducer.New[ringrecord.Snapshot](cfg.Ring.Name, opts...)
	if err != nil {
		logger.Error("failed to create ring", "ring", cfg.Ring.Name, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := p.Destroy(); err != nil {
			logger.Error("failed to destroy ring", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("producer started", "ring", cfg.Ring.Name, "capacity", p.Capacity())

	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	var rec ringrecord.Snapshot
	for {
		select {
		case <-ctx.Done():
			logger.Info("producer stopping")
			return
		case <-ticker.C:
			rec.Seq++
			p.Push(&rec)
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger interface {
	Error(msg string, args ...any)
}) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error(fmt.Sprintf("metrics server on %s exited", addr), "err", err)
	}
}
