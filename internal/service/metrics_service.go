package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService owns the domain level Prometheus collectors.
type MetricsService struct {
	runsTotal         *prometheus.CounterVec
	patientsScheduled prometheus.Counter
	patientsSkipped   prometheus.Counter
	surgeonFallbacks  prometheus.Counter
	solverWallTime    *prometheus.HistogramVec
	roomUtilization   *prometheus.GaugeVec
}

// NewMetricsService registers the scheduling collectors on the given
// registry.
func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	m := &MetricsService{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduling_runs_total",
			Help: "Scheduling pipeline runs by final status.",
		}, []string{"status"}),
		patientsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_patients_scheduled_total",
			Help: "Patients successfully placed into a slot.",
		}),
		patientsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_patients_skipped_total",
			Help: "Patients with no feasible slot this run.",
		}),
		surgeonFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduling_surgeon_fallbacks_total",
			Help: "Times the random surgeon fallback was used.",
		}),
		solverWallTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduling_solver_wall_time_seconds",
			Help:    "Wall clock time of CP-SAT solves by phase.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"phase"}),
		roomUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scheduling_room_assigned_minutes",
			Help: "Total minutes assigned to each room by the last run.",
		}, []string{"room_id"}),
	}

	reg.MustRegister(
		m.runsTotal,
		m.patientsScheduled,
		m.patientsSkipped,
		m.surgeonFallbacks,
		m.solverWallTime,
		m.roomUtilization,
	)

	return m
}

func (m *MetricsService) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

func (m *MetricsService) ObservePatientScheduled() {
	if m == nil {
		return
	}
	m.patientsScheduled.Inc()
}

func (m *MetricsService) ObservePatientSkipped() {
	if m == nil {
		return
	}
	m.patientsSkipped.Inc()
}

func (m *MetricsService) ObserveSurgeonFallback() {
	if m == nil {
		return
	}
	m.surgeonFallbacks.Inc()
}

func (m *MetricsService) ObserveSolve(phase string, wallTime time.Duration) {
	if m == nil {
		return
	}
	m.solverWallTime.WithLabelValues(phase).Observe(wallTime.Seconds())
}

func (m *MetricsService) SetRoomMinutes(roomID string, minutes int) {
	if m == nil {
		return
	}
	m.roomUtilization.WithLabelValues(roomID).Set(float64(minutes))
}
