package models

import (
	"fmt"

	dErrors "grantflow/pkg/domain-errors"
)

// Phase is a lifecycle state of a dossier. The set of valid phases depends on
// the dossier kind; membership is enforced by the kind's Graph.
type Phase string

// Application dossier phases (guide-driven flow), in display order.
const (
	PhaseDraft              Phase = "draft"
	PhaseCallSelected       Phase = "call_selected"
	PhaseGuideReady         Phase = "guide_ready"
	PhasePreeligibility     Phase = "preeligibility"
	PhaseDataCollection     Phase = "data_collection"
	PhaseDocumentCollection Phase = "document_collection"
	PhaseWriting            Phase = "writing"
	PhaseValidation         Phase = "validation"
	PhaseReadyForSubmission Phase = "ready_for_submission"
	PhaseSubmitted          Phase = "submitted"
	PhaseContracting        Phase = "contracting"
	PhaseImplementation     Phase = "implementation"
	PhaseMonitoring         Phase = "monitoring"
)

// Project dossier phases (simple flow without the guide-driven steps).
const (
	PhaseProjectDraft        Phase = "draft"
	PhasePreEligibil         Phase = "pre_eligibil"
	PhaseBlocat              Phase = "blocat"
	PhaseConform             Phase = "conform"
	PhaseDepus               Phase = "depus"
	PhaseAprobat             Phase = "aprobat"
	PhaseRespins             Phase = "respins"
	PhaseInImplementare      Phase = "in_implementare"
	PhaseSuspendat           Phase = "suspendat"
	PhaseFinalizat           Phase = "finalizat"
	PhaseAuditPost           Phase = "audit_post"
	PhaseArhivat             Phase = "arhivat"
)

// DossierKind selects which phase graph governs a dossier.
type DossierKind string

const (
	// KindApplication is the full guide-driven funding application flow.
	KindApplication DossierKind = "application"
	// KindProject is the simplified project flow without guide steps.
	KindProject DossierKind = "project"
)

// Graph is a directed phase graph: each phase maps to the fixed set of
// phases it may transition to. Terminal phases map to an empty set. Graphs
// are immutable after construction and validated for referential closure:
// every destination must itself be a declared phase.
type Graph struct {
	kind   DossierKind
	order  []Phase
	edges  map[Phase][]Phase
	labels map[Phase]string
}

// NewGraph validates and builds a phase graph. Fails if any edge references
// an undeclared phase, a phase lacks an edge entry, or a label is missing.
func NewGraph(kind DossierKind, order []Phase, edges map[Phase][]Phase, labels map[Phase]string) (*Graph, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("phase graph %q: empty phase list", kind)
	}
	declared := make(map[Phase]struct{}, len(order))
	for _, p := range order {
		if _, dup := declared[p]; dup {
			return nil, fmt.Errorf("phase graph %q: duplicate phase %q", kind, p)
		}
		declared[p] = struct{}{}
	}
	for _, p := range order {
		dests, ok := edges[p]
		if !ok {
			return nil, fmt.Errorf("phase graph %q: phase %q has no edge entry", kind, p)
		}
		for _, d := range dests {
			if _, ok := declared[d]; !ok {
				return nil, fmt.Errorf("phase graph %q: edge %q -> %q targets undeclared phase", kind, p, d)
			}
		}
		if _, ok := labels[p]; !ok {
			return nil, fmt.Errorf("phase graph %q: phase %q has no label", kind, p)
		}
	}
	if len(edges) != len(order) {
		return nil, fmt.Errorf("phase graph %q: edge entries for undeclared phases", kind)
	}
	return &Graph{kind: kind, order: order, edges: edges, labels: labels}, nil
}

func mustGraph(g *Graph, err error) *Graph {
	if err != nil {
		panic(err)
	}
	return g
}

var applicationGraph = mustGraph(NewGraph(
	KindApplication,
	[]Phase{
		PhaseDraft, PhaseCallSelected, PhaseGuideReady, PhasePreeligibility,
		PhaseDataCollection, PhaseDocumentCollection, PhaseWriting,
		PhaseValidation, PhaseReadyForSubmission, PhaseSubmitted,
		PhaseContracting, PhaseImplementation, PhaseMonitoring,
	},
	map[Phase][]Phase{
		PhaseDraft:              {PhaseCallSelected},
		PhaseCallSelected:       {PhaseGuideReady, PhaseDraft},
		PhaseGuideReady:         {PhasePreeligibility, PhaseCallSelected},
		PhasePreeligibility:     {PhaseDataCollection, PhaseGuideReady},
		PhaseDataCollection:     {PhaseDocumentCollection, PhasePreeligibility},
		PhaseDocumentCollection: {PhaseWriting, PhaseDataCollection},
		PhaseWriting:            {PhaseValidation, PhaseDocumentCollection},
		PhaseValidation:         {PhaseReadyForSubmission, PhaseWriting},
		PhaseReadyForSubmission: {PhaseSubmitted, PhaseValidation},
		PhaseSubmitted:          {PhaseContracting},
		PhaseContracting:        {PhaseImplementation},
		PhaseImplementation:     {PhaseMonitoring},
		PhaseMonitoring:         {},
	},
	map[Phase]string{
		PhaseDraft:              "Ciornă",
		PhaseCallSelected:       "Sesiune aleasă",
		PhaseGuideReady:         "Ghid disponibil",
		PhasePreeligibility:     "Pre-eligibilitate",
		PhaseDataCollection:     "Colectare date",
		PhaseDocumentCollection: "Colectare documente",
		PhaseWriting:            "Redactare",
		PhaseValidation:         "Validare",
		PhaseReadyForSubmission: "Pregătit depunere",
		PhaseSubmitted:          "Depus",
		PhaseContracting:        "Contractare",
		PhaseImplementation:     "Implementare",
		PhaseMonitoring:         "Monitorizare",
	},
))

var projectGraph = mustGraph(NewGraph(
	KindProject,
	[]Phase{
		PhaseProjectDraft, PhasePreEligibil, PhaseBlocat, PhaseConform,
		PhaseDepus, PhaseAprobat, PhaseRespins, PhaseInImplementare,
		PhaseSuspendat, PhaseFinalizat, PhaseAuditPost, PhaseArhivat,
	},
	map[Phase][]Phase{
		PhaseProjectDraft:   {PhasePreEligibil, PhaseBlocat},
		PhasePreEligibil:    {PhaseBlocat, PhaseConform},
		PhaseBlocat:         {PhaseProjectDraft, PhasePreEligibil},
		PhaseConform:        {PhaseDepus, PhaseBlocat},
		PhaseDepus:          {PhaseAprobat, PhaseRespins},
		PhaseAprobat:        {PhaseInImplementare},
		PhaseRespins:        {PhaseArhivat, PhaseProjectDraft},
		PhaseInImplementare: {PhaseSuspendat, PhaseFinalizat},
		PhaseSuspendat:      {PhaseInImplementare, PhaseArhivat},
		PhaseFinalizat:      {PhaseAuditPost, PhaseArhivat},
		PhaseAuditPost:      {PhaseArhivat},
		PhaseArhivat:        {},
	},
	map[Phase]string{
		PhaseProjectDraft:   "Ciornă",
		PhasePreEligibil:    "Pre-eligibil verificat",
		PhaseBlocat:         "Blocat",
		PhaseConform:        "Conform - Pregătit depunere",
		PhaseDepus:          "Depus",
		PhaseAprobat:        "Aprobat",
		PhaseRespins:        "Respins",
		PhaseInImplementare: "În implementare",
		PhaseSuspendat:      "Suspendat",
		PhaseFinalizat:      "Finalizat",
		PhaseAuditPost:      "Audit post-implementare",
		PhaseArhivat:        "Arhivat",
	},
))

// ApplicationGraph returns the graph for guide-driven application dossiers.
func ApplicationGraph() *Graph { return applicationGraph }

// ProjectGraph returns the graph for simple project dossiers.
func ProjectGraph() *Graph { return projectGraph }

// GraphForKind resolves the graph governing a dossier kind.
func GraphForKind(kind DossierKind) (*Graph, error) {
	switch kind {
	case KindApplication:
		return applicationGraph, nil
	case KindProject:
		return projectGraph, nil
	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown dossier kind %q", kind)
	}
}

// Kind returns the dossier kind this graph governs.
func (g *Graph) Kind() DossierKind { return g.kind }

// Phases returns the declared phases in display order.
func (g *Graph) Phases() []Phase {
	return append([]Phase(nil), g.order...)
}

// Initial returns the phase every dossier starts in.
func (g *Graph) Initial() Phase { return g.order[0] }

// Contains reports whether p is a declared phase of this graph.
func (g *Graph) Contains(p Phase) bool {
	_, ok := g.edges[p]
	return ok
}

// Destinations returns the permitted target phases from p. The returned
// slice is a copy; terminal phases yield an empty slice.
func (g *Graph) Destinations(p Phase) []Phase {
	return append([]Phase(nil), g.edges[p]...)
}

// CanTransition reports whether the edge from -> to exists. A phase is never
// in its own destination set, so re-requesting the current phase is rejected
// rather than silently no-oped.
func (g *Graph) CanTransition(from, to Phase) bool {
	for _, d := range g.edges[from] {
		if d == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether p has no outgoing edges.
func (g *Graph) IsTerminal(p Phase) bool {
	return g.Contains(p) && len(g.edges[p]) == 0
}

// Ordinal returns the position of p in display order, or -1 if undeclared.
// Used for progress display and for "late phase" checks.
func (g *Graph) Ordinal(p Phase) int {
	for i, candidate := range g.order {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Label returns the display label for p, falling back to the raw phase name.
func (g *Graph) Label(p Phase) string {
	if label, ok := g.labels[p]; ok {
		return label
	}
	return string(p)
}

// Labels returns the full phase -> label map (copied).
func (g *Graph) Labels() map[Phase]string {
	out := make(map[Phase]string, len(g.labels))
	for k, v := range g.labels {
		out[k] = v
	}
	return out
}

// Edges returns the full adjacency map (copied) for display purposes.
func (g *Graph) Edges() map[Phase][]Phase {
	out := make(map[Phase][]Phase, len(g.edges))
	for k, v := range g.edges {
		out[k] = append([]Phase(nil), v...)
	}
	return out
}
