// Package metrics exposes cluster protocol activity as Prometheus
// counters, wrapping another cluster.EventSink so a node can
// have both structured logs and metrics from the same event stream.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dedis/hlevel/cluster"
)

// Sink wraps an inner cluster.EventSink, forwarding every call to it after
// updating its own counters.
type Sink struct {
	inner cluster.EventSink

	elections *prometheus.CounterVec
	unelects  *prometheus.CounterVec
	trims     *prometheus.CounterVec
	warnings  prometheus.Counter
}

// New registers this node's metrics against reg and returns a Sink that
// forwards to inner. Passing prometheus.NewRegistry() keeps metrics
// isolated per test; a production binary typically passes
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, inner cluster.EventSink) *Sink {
	s := &Sink{
		inner: inner,
		elections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hlevel",
			Name:      "elections_total",
			Help:      "Representative elections, labeled by level.",
		}, []string{"level"}),
		unelects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hlevel",
			Name:      "unelections_total",
			Help:      "Representative deselections, labeled by level.",
		}, []string{"level"}),
		trims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hlevel",
			Name:      "level_trims_total",
			Help:      "Level-stack truncations, labeled by the new max level.",
		}, []string{"level"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hlevel",
			Name:      "warnings_total",
			Help:      "Non-fatal protocol anomalies recovered from.",
		}),
	}
	reg.MustRegister(s.elections, s.unelects, s.trims, s.warnings)
	return s
}

func (s *Sink) Elect(level uint32, rep cluster.Identifier) {
	s.elections.WithLabelValues(levelLabel(level)).Inc()
	s.inner.Elect(level, rep)
}

func (s *Sink) Unelect(level uint32) {
	s.unelects.WithLabelValues(levelLabel(level)).Inc()
	s.inner.Unelect(level)
}

func (s *Sink) MaxLevel(level uint32) {
	s.trims.WithLabelValues(levelLabel(level)).Inc()
	s.inner.MaxLevel(level)
}

func (s *Sink) Warn(format string, args ...interface{}) {
	s.warnings.Inc()
	s.inner.Warn(format, args...)
}

func levelLabel(level uint32) string {
	return strconv.FormatUint(uint64(level), 10)
}

var _ cluster.EventSink = (*Sink)(nil)
