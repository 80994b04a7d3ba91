package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"grantflow/internal/catalog"
	"grantflow/internal/dossier/models"
	dErrors "grantflow/pkg/domain-errors"
	"grantflow/pkg/platform/httputil"
)

// CatalogHandler serves the static funding reference data and the phase
// graphs. Everything here is read-only build-time data.
type CatalogHandler struct{}

// NewCatalog creates a catalog handler.
func NewCatalog() *CatalogHandler {
	return &CatalogHandler{}
}

// Register mounts the catalog and state-graph routes.
func (h *CatalogHandler) Register(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/programs", h.handlePrograms)
		r.Get("/programs/{programID}/measures", h.handleMeasures)
		r.Get("/measures/{measureID}/calls", h.handleCalls)
		r.Get("/templates", h.handleTemplates)
	})
	r.Get("/states/{kind}", h.handleStates)
}

func (h *CatalogHandler) handlePrograms(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"programs": catalog.Programs()})
}

func (h *CatalogHandler) handleMeasures(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")
	if _, ok := catalog.ProgramByID(programID); !ok {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "unknown program %q", programID))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"measures": catalog.Measures(programID)})
}

func (h *CatalogHandler) handleCalls(w http.ResponseWriter, r *http.Request) {
	measureID := chi.URLParam(r, "measureID")
	if _, ok := catalog.MeasureByID(measureID); !ok {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "unknown measure %q", measureID))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"calls": catalog.Calls(measureID)})
}

func (h *CatalogHandler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"templates": catalog.Templates()})
}

type stateGraphResponse struct {
	Kind   models.DossierKind              `json:"kind"`
	Phases []models.Phase                  `json:"phases"`
	Labels map[models.Phase]string         `json:"labels"`
	Edges  map[models.Phase][]models.Phase `json:"edges"`
}

func (h *CatalogHandler) handleStates(w http.ResponseWriter, r *http.Request) {
	kind := models.DossierKind(chi.URLParam(r, "kind"))
	graph, err := models.GraphForKind(kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stateGraphResponse{
		Kind:   kind,
		Phases: graph.Phases(),
		Labels: graph.Labels(),
		Edges:  graph.Edges(),
	})
}
