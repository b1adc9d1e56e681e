// Package metrics exposes conversation counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
)

const namespace = "viridian"

// Recorder 汇总会话、情绪与回复分支的计数。nil Recorder 的方法均为空操作。
type Recorder struct {
	registry        *prometheus.Registry
	turns           *prometheus.CounterVec
	branches        *prometheus.CounterVec
	patterns        *prometheus.CounterVec
	progressions    *prometheus.CounterVec
	classifications *prometheus.CounterVec
	sessions        prometheus.Counter
	summaries       prometheus.Counter
}

// NewRecorder registers all collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed user turns by detected emotion.",
		}, []string{"emotion"}),
		branches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_branches_total",
			Help:      "Composed replies by decision branch.",
		}, []string{"branch"}),
		patterns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_detected_total",
			Help:      "Turns on which a recurring emotion pattern was present.",
		}, []string{"pattern"}),
		progressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progressions_detected_total",
			Help:      "Turns on which an emotional progression was present.",
		}, []string{"progression"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Emotion classifications by source.",
		}, []string{"source"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Sessions started.",
		}),
		summaries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_generated_total",
			Help:      "Session summaries generated.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.turns,
		r.branches,
		r.patterns,
		r.progressions,
		r.classifications,
		r.sessions,
		r.summaries,
	)
	return r
}

// ObserveTurn implements therapy.Observer.
func (r *Recorder) ObserveTurn(turn therapy.Turn) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(string(turn.Emotion)).Inc()
	if turn.Branch != "" {
		r.branches.WithLabelValues(string(turn.Branch)).Inc()
	}
	if turn.State.Pattern != emotion.PatternNone {
		r.patterns.WithLabelValues(string(turn.State.Pattern)).Inc()
	}
	if turn.State.Progression != emotion.ProgressionNone {
		r.progressions.WithLabelValues(string(turn.State.Progression)).Inc()
	}
}

// ObserveClassification counts one classifier result.
func (r *Recorder) ObserveClassification(source string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(source).Inc()
}

// SessionStarted counts a new session.
func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	r.sessions.Inc()
}

// SummaryGenerated counts a produced summary.
func (r *Recorder) SummaryGenerated() {
	if r == nil {
		return
	}
	r.summaries.Inc()
}

// Handler serves the registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
