// Package metrics exports autosave activity as Prometheus metrics. Each
// Recorder owns a private registry, so several sessions (or tests) never
// collide on metric names.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "draftkeeper"

var statuses = []autosave.Status{
	autosave.StatusIdle,
	autosave.StatusSaving,
	autosave.StatusSaved,
	autosave.StatusError,
	autosave.StatusOffline,
}

// Recorder implements autosave.Observer.
type Recorder struct {
	registry *prometheus.Registry

	saves    *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
	status   *prometheus.GaugeVec
	versions prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Persistence attempts by result (success, failure, offline).",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Time spent in the persist call.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "saves_in_flight",
			Help:      "1 while a persist call is running.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status",
			Help:      "Current save status; the active status is 1.",
		}, []string{"status"}),
		versions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "versions_retained",
			Help:      "Number of versions held in the history.",
		}),
	}

	r.registry.MustRegister(
		r.saves, r.duration, r.inFlight, r.status, r.versions,
		collectors.NewGoCollector(),
	)
	r.StatusChanged(autosave.StatusIdle.String())
	return r
}

func (r *Recorder) SaveStarted() {
	r.inFlight.Inc()
}

func (r *Recorder) SaveFinished(elapsed time.Duration, err error) {
	r.inFlight.Dec()
	r.duration.Observe(elapsed.Seconds())

	switch {
	case err == nil:
		r.saves.WithLabelValues("success").Inc()
	case autosave.IsConnectivityError(err):
		r.saves.WithLabelValues("offline").Inc()
	default:
		r.saves.WithLabelValues("failure").Inc()
	}
}

func (r *Recorder) StatusChanged(status string) {
	for _, s := range statuses {
		v := 0.0
		if s.String() == status {
			v = 1
		}
		r.status.WithLabelValues(s.String()).Set(v)
	}
}

func (r *Recorder) VersionsRetained(n int) {
	r.versions.Set(float64(n))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
