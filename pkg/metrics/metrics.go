package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is a valid no-op.
type Metrics struct {
	// Backend API metrics
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec

	// Domain metrics
	Reschedules      *prometheus.CounterVec
	AppointmentSaves *prometheus.CounterVec
	Actions          *prometheus.CounterVec
	Bookings         *prometheus.CounterVec
	PDFExports       prometheus.Counter
	OpenDialogs      prometheus.Gauge

	// Messaging metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all application metrics on reg
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of calls to the clinic backend API",
		}, []string{"operation", "status"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the clinic backend API",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		Reschedules: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedules_total",
			Help:      "Reschedule dialogs by outcome",
		}, []string{"outcome"}),
		AppointmentSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_saves_total",
			Help:      "Calendar saves by outcome (created, updated, failed)",
		}, []string{"outcome"}),
		Actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_actions_total",
			Help:      "Popover actions executed by kind",
		}, []string{"kind", "status"}),
		Bookings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "public_bookings_total",
			Help:      "Public booking form submissions by outcome",
		}, []string{"outcome"}),
		PDFExports: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_pdf_exports_total",
			Help:      "Budget PDF documents generated",
		}),
		OpenDialogs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reschedule_dialogs_open",
			Help:      "Reschedule dialogs currently open",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events published to the broker",
		}, []string{"type", "status"}),
	}
}

func (m *Metrics) ObserveBackend(operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(operation, status).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) CountReschedule(outcome string) {
	if m == nil {
		return
	}
	m.Reschedules.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountSave(outcome string) {
	if m == nil {
		return
	}
	m.AppointmentSaves.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountAction(kind, status string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) CountBooking(outcome string) {
	if m == nil {
		return
	}
	m.Bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountPDF() {
	if m == nil {
		return
	}
	m.PDFExports.Inc()
}

func (m *Metrics) SetOpenDialogs(n int) {
	if m == nil {
		return
	}
	m.OpenDialogs.Set(float64(n))
}

func (m *Metrics) CountEvent(eventType, status string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}
