// cmd/transformer-monitor/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/config"
	"github.com/tamzrod/transformer-monitor/internal/envelope"
	"github.com/tamzrod/transformer-monitor/internal/logging"
	"github.com/tamzrod/transformer-monitor/internal/metrics"
	"github.com/tamzrod/transformer-monitor/internal/poller"
	"github.com/tamzrod/transformer-monitor/internal/profile"
	"github.com/tamzrod/transformer-monitor/internal/publish"
	"github.com/tamzrod/transformer-monitor/internal/status"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: transformer-monitor <config.yaml>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "transformer-monitor: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	// --------------------
	// Outputs
	// --------------------

	var rec poller.Recorder = poller.NopRecorder{}
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus()
		rec = prom
		srv := serveMetrics(cfg.Metrics.Listen, prom.Handler(), log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	var sink publish.Sink = publish.LogSink{Log: log.With().Str("component", "publish").Logger()}
	if cfg.MQTT.Enabled {
		ms, err := publish.NewMQTTSink(cfg.MQTT, log.With().Str("component", "mqtt").Logger())
		if err != nil {
			return err
		}
		sink = ms
	}
	defer sink.Close()

	// --------------------
	// Build per-device pipelines
	// --------------------

	var (
		wg      sync.WaitGroup
		devices []*poller.Device
	)

	for _, dc := range cfg.Devices {
		d, r, err := profile.Build(dc, profile.Options{
			Logger:   log,
			Recorder: rec,
		})
		if err != nil {
			shutdownAll(devices, log)
			return err
		}
		devices = append(devices, d)

		out := make(chan poller.PollResult)

		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Run(ctx, out)
		}()
		go func(asset string) {
			defer wg.Done()
			orchestrate(ctx, asset, out, sink, log.With().Str("device", r.ID).Logger())
		}(dc.Asset)

		log.Info().
			Str("device", dc.ID).
			Str("profile", dc.Profile).
			Str("endpoint", d.Endpoint().HostPort()).
			Dur("interval", r.Interval).
			Msg("device started")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	wg.Wait()
	shutdownAll(devices, log)
	return nil
}

// orchestrate owns the health tracker of one device and publishes each poll.
func orchestrate(ctx context.Context, asset string, in <-chan poller.PollResult, sink publish.Sink, log zerolog.Logger) {
	var tr status.Tracker

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			prev := tr.Current().Health
			snap := tr.Observe(res.Readings, res.At)
			if snap.Health != prev {
				ev := log.Info()
				if snap.Health != status.HealthOK {
					ev = log.Warn().Int("failed", snap.Failed).Str("last_failure", snap.LastFailure.String())
				}
				ev.Str("health", status.HealthName(snap.Health)).Msg("device health changed")
			}

			if err := sink.Publish(ctx, envelope.New(asset, res, snap)); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("publish failed")
			}
		}
	}
}

func shutdownAll(devices []*poller.Device, log zerolog.Logger) {
	for _, d := range devices {
		msg, err := d.Shutdown()
		if err != nil {
			log.Error().Err(err).Str("device", d.Name()).Msg("shutdown failed")
			continue
		}
		log.Info().Str("device", d.Name()).Msg(msg)
	}
}

func serveMetrics(addr string, h http.Handler, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("listen", addr).Msg("metrics server failed")
		}
	}()
	log.Info().Str("listen", addr).Msg("metrics server started")
	return srv
}
