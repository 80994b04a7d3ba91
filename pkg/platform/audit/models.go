// Package audit captures the append-only trail of dossier activity. Events
// are emitted from domain logic, persisted by a store, and optionally
// forwarded to Kafka for downstream consumers.
package audit

import (
	"time"

	id "grantflow/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// everything that changes a dossier's lifecycle or its evidence trail.
	// Funding audits reach back years, so these require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	DossierID id.DossierID
	Subject   string
	Action    string
	Reason    string
	RequestID string
	// ActorID is who performed the action: a user id, or "system" for
	// automatic transitions and collaborator callbacks.
	ActorID string
}

type AuditEvent string

const (
	// Lifecycle events
	EventDossierCreated     AuditEvent = "dossier_created"
	EventPhaseTransitioned  AuditEvent = "phase_transitioned"
	EventTransitionRejected AuditEvent = "transition_rejected"

	// Checklist events
	EventChecklistEntryAdded   AuditEvent = "checklist_entry_added"
	EventChecklistEntryRemoved AuditEvent = "checklist_entry_removed"
	EventChecklistProposed     AuditEvent = "checklist_proposed"
	EventChecklistFrozen       AuditEvent = "checklist_frozen"

	// Document events
	EventGuideUploaded    AuditEvent = "guide_uploaded"
	EventDocumentUploaded AuditEvent = "document_uploaded"
	EventDocumentDeleted  AuditEvent = "document_deleted"
	EventOCRResultStored  AuditEvent = "ocr_result_stored"
	EventDraftGenerated   AuditEvent = "draft_generated"

	// Budget events
	EventProcurementItemAdded AuditEvent = "procurement_item_added"

	// Read-side events
	EventReportGenerated  AuditEvent = "report_generated"
	EventManifestExported AuditEvent = "manifest_exported"
)

// eventCategories maps each audit event to its category. State changes are
// compliance; read-side activity is operations.
var eventCategories = map[AuditEvent]EventCategory{
	EventDossierCreated:     CategoryCompliance,
	EventPhaseTransitioned:  CategoryCompliance,
	EventTransitionRejected: CategoryCompliance,

	EventChecklistEntryAdded:   CategoryCompliance,
	EventChecklistEntryRemoved: CategoryCompliance,
	EventChecklistProposed:     CategoryOperations,
	EventChecklistFrozen:       CategoryCompliance,

	EventGuideUploaded:    CategoryCompliance,
	EventDocumentUploaded: CategoryCompliance,
	EventDocumentDeleted:  CategoryCompliance,
	EventOCRResultStored:  CategoryOperations,
	EventDraftGenerated:   CategoryCompliance,

	EventProcurementItemAdded: CategoryCompliance,

	EventReportGenerated:  CategoryOperations,
	EventManifestExported: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
