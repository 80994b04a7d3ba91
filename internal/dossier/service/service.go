// Package service orchestrates dossier lifecycle operations. It owns the
// boundary between transports, the dossier store, and the external
// collaborator services; all domain rules live in the models package.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"grantflow/internal/catalog"
	"grantflow/internal/collaborator"
	"grantflow/internal/dossier/cache"
	"grantflow/internal/dossier/metrics"
	"grantflow/internal/dossier/models"
	"grantflow/internal/dossier/store"
	"grantflow/internal/platform/blob"
	"grantflow/internal/platform/config"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/platform/circuit"
	"grantflow/pkg/requestcontext"
)

// AuditPublisher decouples the service from the audit pipeline wiring.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the dossier lifecycle: phase transitions, the
// compliance checklist, document handling, and the readiness report.
type Service struct {
	dossiers store.Store
	blobs    blob.Store

	extractor collaborator.Extractor
	ocr       collaborator.OCRProcessor
	drafter   collaborator.Drafter

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	reports        *cache.ReportCache
	tracer         trace.Tracer

	extractionBreaker *circuit.Breaker
	draftingBreaker   *circuit.Breaker

	collaboratorTimeout time.Duration
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithReportCache enables readiness report caching.
func WithReportCache(reports *cache.ReportCache) Option {
	return func(s *Service) {
		s.reports = reports
	}
}

// WithExtractor wires the guide extraction collaborator. Without it,
// checklist proposals report the collaborator as unavailable.
func WithExtractor(extractor collaborator.Extractor) Option {
	return func(s *Service) {
		s.extractor = extractor
	}
}

// WithOCRProcessor wires the OCR collaborator.
func WithOCRProcessor(ocr collaborator.OCRProcessor) Option {
	return func(s *Service) {
		s.ocr = ocr
	}
}

// WithDrafter wires the draft generation collaborator.
func WithDrafter(drafter collaborator.Drafter) Option {
	return func(s *Service) {
		s.drafter = drafter
	}
}

// WithCollaboratorTimeout overrides the per-call deadline for external
// collaborator requests.
func WithCollaboratorTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.collaboratorTimeout = timeout
		}
	}
}

// New constructs a Service.
func New(dossiers store.Store, blobs blob.Store, opts ...Option) *Service {
	s := &Service{
		dossiers:            dossiers,
		blobs:               blobs,
		tracer:              otel.Tracer("grantflow/internal/dossier/service"),
		extractionBreaker:   circuit.New("extraction", circuit.WithFailureThreshold(3)),
		draftingBreaker:     circuit.New("drafting", circuit.WithFailureThreshold(3)),
		collaboratorTimeout: config.CollaboratorTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDossierRequest carries the fields needed to open a new dossier.
// CallID is optional; when set it must reference a catalog call and the
// dossier immediately advances from draft to call_selected.
type CreateDossierRequest struct {
	OrganizationID  id.OrganizationID
	Kind            models.DossierKind
	Title           string
	Description     string
	CallID          string
	BudgetEstimated decimal.Decimal
}

// CreateDossier opens a dossier in its graph's initial phase. Creating
// against a call copies the call/measure/program display fields onto the
// dossier and records the call selection as a second history entry.
func (s *Service) CreateDossier(ctx context.Context, req CreateDossierRequest) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.Create")
	defer span.End()

	now := requestcontext.Now(ctx)
	actor := actorFrom(ctx)

	d, err := models.NewDossier(id.NewDossierID(), req.OrganizationID, req.Kind, req.Title, req.Description, actor, now)
	if err != nil {
		return nil, err
	}
	d.BudgetEstimated = req.BudgetEstimated

	if req.CallID != "" {
		call, ok := catalog.CallByID(req.CallID)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown funding call %q", req.CallID)
		}
		d.CallID = call.ID
		d.CallName = call.Name
		d.CallCode = call.Code
		if measure, ok := catalog.MeasureByID(call.MeasureID); ok {
			d.MeasureName = measure.Name
			d.MeasureCode = measure.Code
			if program, ok := catalog.ProgramByID(measure.ProgramID); ok {
				d.ProgramName = program.Name
			}
		}
		if err := d.CanTransitionTo(models.PhaseCallSelected); err == nil {
			d.ApplyTransition(models.PhaseCallSelected, "call selected", actor, now)
		}
	}

	if err := s.dossiers.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventDossierCreated, d.ID, d.Title, "")
	return d, nil
}

// GetDossier loads one dossier.
func (s *Service) GetDossier(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	return s.dossiers.Get(ctx, dossierID)
}

// ListDossiers returns the dossiers of one organization. A zero organization
// id lists everything; that path is reserved for admin routes.
func (s *Service) ListDossiers(ctx context.Context, orgID id.OrganizationID) ([]*models.Dossier, error) {
	return s.dossiers.List(ctx, orgID)
}

// Transition moves a dossier to the target phase. The phase graph decides
// legality; the caller's expected version guards against concurrent edits.
func (s *Service) Transition(ctx context.Context, dossierID id.DossierID, expectedVersion int64, target models.Phase, reason string) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.Transition")
	defer span.End()

	now := requestcontext.Now(ctx)
	actor := actorFrom(ctx)

	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if err := d.CanTransitionTo(target); err != nil {
			return err
		}
		d.ApplyTransition(target, reason, actor, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		if dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
			if s.metrics != nil {
				s.metrics.IncrementTransitionRejected()
			}
			s.logAudit(ctx, audit.EventTransitionRejected, dossierID, string(target), err.Error())
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementTransitionCommitted()
	}
	s.logAudit(ctx, audit.EventPhaseTransitioned, dossierID, string(target), reason)
	return updated, nil
}

// History returns the dossier's transition journal, oldest first.
func (s *Service) History(ctx context.Context, dossierID id.DossierID) ([]models.HistoryEntry, error) {
	d, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	return d.History, nil
}

// actorFrom resolves who performs the current operation: the authenticated
// user, or the system actor for contexts without one (automatic moves,
// collaborator callbacks).
func actorFrom(ctx context.Context) string {
	if userID := requestcontext.UserID(ctx); !userID.IsZero() {
		return userID.String()
	}
	return models.SystemActor
}

// noteExecuteErr records store-level concurrency rejections.
func (s *Service) noteExecuteErr(err error) {
	if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeVersionConflict) {
		s.metrics.IncrementVersionConflict()
	}
}

// logAudit writes the structured audit log line and forwards the event to
// the audit pipeline when one is wired.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, dossierID id.DossierID, subject, reason string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"dossier_id", dossierID.String(),
			"subject", subject,
			"log_type", "audit")
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		DossierID: dossierID,
		Subject:   subject,
		Action:    string(event),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorFrom(ctx),
	})
}

// collaboratorCtx bounds one external collaborator call.
func (s *Service) collaboratorCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.collaboratorTimeout)
}

// mapCollaboratorErr classifies a collaborator failure. Timeouts get their
// own code so callers can distinguish "slow" from "broken".
func mapCollaboratorErr(err error, name string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeCollaboratorTimeout, name+" service timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeCollaboratorError, name+" service failed")
}

// recordCollaboratorOutcome feeds the circuit breaker and logs flips.
func (s *Service) recordCollaboratorOutcome(ctx context.Context, breaker *circuit.Breaker, err error) {
	if err != nil {
		if _, change := breaker.RecordFailure(); change.Opened && s.logger != nil {
			s.logger.WarnContext(ctx, "collaborator circuit opened", "breaker", breaker.Name())
		}
		return
	}
	if _, change := breaker.RecordSuccess(); change.Closed && s.logger != nil {
		s.logger.InfoContext(ctx, "collaborator circuit closed", "breaker", breaker.Name())
	}
}
