package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/platform/httputil"
)

// AuditTrail is the read side of the audit pipeline.
type AuditTrail interface {
	List(ctx context.Context, dossierID id.DossierID) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// AuditHandler exposes the audit trail. Per-dossier listing sits next to the
// dossier API; the cross-dossier listing is an operational route mounted
// behind the admin token.
type AuditHandler struct {
	trail AuditTrail
}

func NewAudit(trail AuditTrail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// Register mounts the per-dossier trail route.
func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit/dossiers/{dossierID}", h.handleDossierTrail)
}

// RegisterAdmin mounts the cross-dossier listing.
func (h *AuditHandler) RegisterAdmin(r chi.Router) {
	r.Get("/audit/recent", h.handleRecent)
}

type auditEventResponse struct {
	Category  audit.EventCategory `json:"category"`
	Timestamp time.Time           `json:"timestamp"`
	DossierID string              `json:"dossier_id,omitempty"`
	Subject   string              `json:"subject,omitempty"`
	Action    string              `json:"action"`
	Reason    string              `json:"reason,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	ActorID   string              `json:"actor_id,omitempty"`
}

func toAuditResponses(events []audit.Event) []auditEventResponse {
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		resp := auditEventResponse{
			Category:  e.Category,
			Timestamp: e.Timestamp,
			Subject:   e.Subject,
			Action:    e.Action,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			ActorID:   e.ActorID,
		}
		if !e.DossierID.IsZero() {
			resp.DossierID = e.DossierID.String()
		}
		out = append(out, resp)
	}
	return out
}

func (h *AuditHandler) handleDossierTrail(w http.ResponseWriter, r *http.Request) {
	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.trail.List(r.Context(), dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": toAuditResponses(events)})
}

func (h *AuditHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500"))
			return
		}
		limit = parsed
	}
	events, err := h.trail.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": toAuditResponses(events)})
}
