// Package metrics records call-level counters with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	handoffsTotal           *prometheus.CounterVec
	actionsTotal            *prometheus.CounterVec
	inventoryRejections     *prometheus.CounterVec
	inventoryPersists       *prometheus.CounterVec
	notificationsTotal      *prometheus.CounterVec
	generateDurationSeconds *prometheus.HistogramVec
}

// NewRecorder registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		handoffsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_agent_handoffs_total",
				Help: "Role handoffs by source and target role",
			},
			[]string{"from", "to"},
		),
		actionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_agent_actions_total",
				Help: "Role actions by role, action and result",
			},
			[]string{"role", "action", "result"},
		),
		inventoryRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_inventory_rejections_total",
				Help: "Orders rejected by the availability check",
			},
			[]string{"reason"},
		),
		inventoryPersists: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_inventory_persists_total",
				Help: "Inventory persistence attempts by status",
			},
			[]string{"status"},
		),
		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_notifications_total",
				Help: "Notification deliveries by sink and status",
			},
			[]string{"sink", "status"},
		),
		generateDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restaurant_agent_generate_duration_seconds",
				Help:    "Time spent in one model generation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"role"},
		),
	}
}

func (r *Recorder) IncHandoff(from, to string) {
	if r == nil {
		return
	}
	r.handoffsTotal.WithLabelValues(from, to).Inc()
}

func (r *Recorder) ObserveAction(role, action, result string) {
	if r == nil {
		return
	}
	r.actionsTotal.WithLabelValues(role, action, result).Inc()
}

func (r *Recorder) IncInventoryRejection(reason string) {
	if r == nil {
		return
	}
	r.inventoryRejections.WithLabelValues(reason).Inc()
}

func (r *Recorder) ObservePersist(ok bool) {
	if r == nil {
		return
	}
	r.inventoryPersists.WithLabelValues(status(ok)).Inc()
}

func (r *Recorder) ObserveNotification(sink string, delivered bool) {
	if r == nil {
		return
	}
	r.notificationsTotal.WithLabelValues(sink, status(delivered)).Inc()
}

func (r *Recorder) ObserveGenerate(role string, d time.Duration) {
	if r == nil {
		return
	}
	r.generateDurationSeconds.WithLabelValues(role).Observe(d.Seconds())
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
