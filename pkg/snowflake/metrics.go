package snowflake

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	sourceClock    = "clock"
	sourceExplicit = "explicit"
)

// WithMetrics registers the generator's counters with reg, labeled by
// generator id so several generators can share one registry. Without this
// option nothing is recorded.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(g *Generator) {
		g.metrics = newMetrics(reg, g.generatorID)
	}
}

type metrics struct {
	ids            *prometheus.CounterVec
	seqExhaustions prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, generatorID int64) *metrics {
	labels := prometheus.Labels{"generator_id": strconv.FormatInt(generatorID, 10)}
	m := &metrics{
		ids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "snowflake_ids_minted_total",
			Help:        "Number of ids minted, by timestamp source.",
			ConstLabels: labels,
		}, []string{"source"}),
		seqExhaustions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "snowflake_sequence_exhaustions_total",
			Help:        "Number of times a millisecond's sequence space ran out and the generator waited for the clock to advance.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.ids, m.seqExhaustions)
	return m
}

func (m *metrics) minted(source string) {
	if m == nil {
		return
	}
	m.ids.WithLabelValues(source).Inc()
}

func (m *metrics) exhausted() {
	if m == nil {
		return
	}
	m.seqExhaustions.Inc()
}
