package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Turn outcomes used as the "outcome" label.
const (
	OutcomeOK              = "ok"
	OutcomeFinalized       = "finalized"
	OutcomeBlocked         = "blocked"
	OutcomeEmpty           = "empty"
	OutcomeGenerationError = "generation_error"
	OutcomeExtractionMiss  = "extraction_miss"
	OutcomeMalformed       = "malformed"
	OutcomeSchemaViolation = "schema_violation"
)

type Registry struct {
	reg               *prometheus.Registry
	Turns             *prometheus.CounterVec
	SubtotalRepairs   prometheus.Counter
	OrdersSaved       prometheus.Counter
	OrderSaveFailures prometheus.Counter
	GenerationSec     prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	turns := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "orderbot_turns_total"}, []string{"outcome"})
	repairs := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderbot_subtotal_repairs_total"})
	saved := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderbot_orders_saved_total"})
	saveFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderbot_order_save_failures_total"})
	genLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderbot_generation_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(turns, repairs, saved, saveFailures, genLatency)
	return &Registry{
		reg:               r,
		Turns:             turns,
		SubtotalRepairs:   repairs,
		OrdersSaved:       saved,
		OrderSaveFailures: saveFailures,
		GenerationSec:     genLatency,
	}
}

func (r *Registry) Turn(outcome string) { r.Turns.WithLabelValues(outcome).Inc() }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
