package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dossier module. Counters track the
// lifecycle operations the compliance team cares about; the histogram covers
// the report battery, the slowest read path.
type Metrics struct {
	TransitionsCommitted prometheus.Counter
	TransitionsRejected  prometheus.Counter
	VersionConflicts     prometheus.Counter
	DocumentsUploaded    prometheus.Counter
	DocumentsDeleted     prometheus.Counter
	ChecklistsFrozen     prometheus.Counter
	ProposalsRequested   prometheus.Counter
	ReportDuration       prometheus.Histogram
}

// New creates a new Metrics instance with all dossier module metrics registered.
func New() *Metrics {
	return &Metrics{
		TransitionsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_transitions_committed_total",
			Help: "Total number of committed phase transitions",
		}),
		TransitionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_transitions_rejected_total",
			Help: "Total number of rejected phase transitions",
		}),
		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_version_conflicts_total",
			Help: "Total number of mutations rejected on a stale version",
		}),
		DocumentsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_documents_uploaded_total",
			Help: "Total number of documents attached to dossiers",
		}),
		DocumentsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_documents_deleted_total",
			Help: "Total number of documents removed from dossiers",
		}),
		ChecklistsFrozen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_checklists_frozen_total",
			Help: "Total number of checklist freezes",
		}),
		ProposalsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_checklist_proposals_total",
			Help: "Total number of guide extraction proposal runs",
		}),
		ReportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grantflow_report_duration_seconds",
			Help:    "Duration of readiness report generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTransitionCommitted records a successful phase transition.
func (m *Metrics) IncrementTransitionCommitted() {
	m.TransitionsCommitted.Inc()
}

// IncrementTransitionRejected records a transition rejected by the phase graph.
func (m *Metrics) IncrementTransitionRejected() {
	m.TransitionsRejected.Inc()
}

// IncrementVersionConflict records a mutation rejected on a stale version.
func (m *Metrics) IncrementVersionConflict() {
	m.VersionConflicts.Inc()
}

// IncrementDocumentUploaded records a document attach.
func (m *Metrics) IncrementDocumentUploaded() {
	m.DocumentsUploaded.Inc()
}

// IncrementDocumentDeleted records a document removal.
func (m *Metrics) IncrementDocumentDeleted() {
	m.DocumentsDeleted.Inc()
}

// IncrementChecklistFrozen records a checklist freeze.
func (m *Metrics) IncrementChecklistFrozen() {
	m.ChecklistsFrozen.Inc()
}

// IncrementProposalRequested records a guide extraction run.
func (m *Metrics) IncrementProposalRequested() {
	m.ProposalsRequested.Inc()
}

// ObserveReport records the duration of a readiness report run.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReport(start time.Time) {
	m.ReportDuration.Observe(time.Since(start).Seconds())
}
