package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swiss"

// Recorder is what the services need to report domain events.
type Recorder interface {
	MatchRecorded(kind string)
	RoundGenerated(scope string)
	ByeAssigned(scope string)
}

type Metrics struct {
	registry     *prometheus.Registry
	matchesTotal *prometheus.CounterVec
	roundsTotal  *prometheus.CounterVec
	byesTotal    *prometheus.CounterVec
}

// New creates the counters on a private registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_recorded_total",
			Help:      "Matches appended to the match log, by kind (win, draw, bye).",
		}, []string{"kind"}),
		roundsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_generated_total",
			Help:      "Rounds paired, by scope (tournament or global).",
		}, []string{"scope"}),
		byesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "byes_assigned_total",
			Help:      "Byes handed out during pairing, by scope.",
		}, []string{"scope"}),
	}
	m.registry.MustRegister(
		m.matchesTotal,
		m.roundsTotal,
		m.byesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) MatchRecorded(kind string) {
	m.matchesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RoundGenerated(scope string) {
	m.roundsTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) ByeAssigned(scope string) {
	m.byesTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Scope is the label value for a tournament id, "global" for nil.
func Scope(tournamentID *int) string {
	if tournamentID == nil {
		return "global"
	}
	return "tournament"
}

type noop struct{}

// Noop discards everything. Used by the CLI, which has nothing to scrape it.
func Noop() Recorder { return noop{} }

func (noop) MatchRecorded(string)  {}
func (noop) RoundGenerated(string) {}
func (noop) ByeAssigned(string)    {}
