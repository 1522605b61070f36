// Command ringbuf-consumer opens a named overwrite ring and polls it,
// logging status transitions (SPEC_FULL.md §4.6). It plays the role the
// source's external `rbc` benchmark harness plays.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringconfig"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringconsumer"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringlog"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringmetrics/prom"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringrecord"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	prod := flag.Bool("prod", false, "use production (JSON) logging")
	poll := flag.Duration("poll", 200*time.Microsecond, "interval between pop attempts")
	flag.Parse()

	logger, sync := ringlog.New(*prod)
	defer sync()

	cfg := ringconfig.MustLoad[ringconfig.Config](*configPath)

	var opts []ringconsumer.Option
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics := prom.New(reg, "ringbuf", "consumer", prometheus.Labels{"ring": cfg.Ring.Name})
		opts = append(opts, ringconsumer.WithMetrics(metrics))
	}

	c, err := ringconsumer.Open[ringrecord.Snapshot](cfg.Ring.Name, opts...)
	if err != nil {
		logger.Error("failed to open ring", "ring", cfg.Ring.Name, "err", err)
		os.Exit(1)
	}
	defer c.Close()

	c.Catchup()
	logger.Info("consumer caught up", "ring", cfg.Ring.Name, "cursor", c.Cursor())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*poll)
	defer ticker.Stop()

	var rec ringrecord.Snapshot
	last := ringconsumer.ReadNoNew
	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer stopping")
			return
		case <-ticker.C:
			status := c.Pop(&rec)
			if status != last {
				logger.Info("status changed", "status", status.String(), "cursor", c.Cursor())
				last = status
			}
			if status == ringconsumer.ReadNew || status == ringconsumer.ReadLappedPrecaution {
				logger.Debug("delivered", "seq", rec.Seq, "status", status.String())
			}
		}
	}
}
