package metrics

import (
	"strconv"
	"strings"

	"clinic_queue/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	operations        *prometheus.CounterVec
	waitingEntries    *prometheus.GaugeVec
	eventsDelivered   prometheus.Counter
	broadcastsDropped prometheus.Counter
	connections       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_queue_operations_total",
				Help: "Queue operations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		waitingEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "clinic_queue_waiting_entries",
				Help: "Waiting entries per queue after the last recompute",
			},
			[]string{"queue_id"},
		),
		eventsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_queue_ws_events_delivered_total",
			Help: "Queue events handed to websocket connections",
		}),
		broadcastsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_queue_ws_broadcasts_dropped_total",
			Help: "Queue events dropped because the hub was saturated",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clinic_queue_ws_connections",
			Help: "Open websocket connections",
		}),
	}
	reg.MustRegister(m.operations, m.waitingEntries, m.eventsDelivered, m.broadcastsDropped, m.connections)
	return m
}

// ObserveOperation counts one call of action; the outcome is "ok" or the lower-cased error code.
func (m *Metrics) ObserveOperation(action string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if code := apperr.CodeOf(err); code != "" {
			outcome = strings.ToLower(code)
		}
	}
	m.operations.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) SetWaiting(queueID uint, n int) {
	if m == nil {
		return
	}
	m.waitingEntries.WithLabelValues(strconv.FormatUint(uint64(queueID), 10)).Set(float64(n))
}

func (m *Metrics) EventDelivered() {
	if m != nil {
		m.eventsDelivered.Inc()
	}
}

func (m *Metrics) BroadcastDropped() {
	if m != nil {
		m.broadcastsDropped.Inc()
	}
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}
