// Package catalog holds the funding reference data: programs, their
// measures, open calls, and the draft templates offered to applicants.
// The data set is fixed at build time; a dossier references entries by ID and
// the consistency checker reads call budget bounds from here.
package catalog

import "github.com/shopspring/decimal"

// Program is a top-level funding program (e.g. PNRR).
type Program struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// Measure is a funding measure within a program.
type Measure struct {
	ID        string `json:"id"`
	ProgramID string `json:"program_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

// Call is a funding call (session) within a measure. ValueMin/ValueMax bound
// the eligible project budget.
type Call struct {
	ID            string          `json:"id"`
	MeasureID     string          `json:"measure_id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Status        string          `json:"status"`
	Budget        decimal.Decimal `json:"budget"`
	ValueMin      decimal.Decimal `json:"value_min"`
	ValueMax      decimal.Decimal `json:"value_max"`
	Beneficiaries []string        `json:"beneficiaries"`
	Region        string          `json:"region"`
}

// Template describes a document the drafting collaborator can generate.
type Template struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category string   `json:"category"`
	Sections []string `json:"sections"`
}

var programs = []Program{
	{ID: "pnrr", Name: "PNRR", Source: "fonduri.eu", Description: "Planul Național de Redresare și Reziliență"},
	{ID: "afir", Name: "AFIR", Source: "AFIR", Description: "Agenția pentru Finanțarea Investițiilor Rurale"},
	{ID: "poc", Name: "POC", Source: "fonduri.eu", Description: "Programul Operațional Competitivitate"},
	{ID: "por", Name: "POR", Source: "fonduri.eu", Description: "Programul Operațional Regional"},
	{ID: "horizon", Name: "Horizon Europe", Source: "EU", Description: "Programul-cadru pentru cercetare și inovare"},
}

var measures = []Measure{
	{ID: "pnrr-c9-i1", ProgramID: "pnrr", Name: "Sprijin sector privat, cercetare, dezvoltare", Code: "C9-I1"},
	{ID: "pnrr-c10-i1", ProgramID: "pnrr", Name: "Fondul local - Digitalizare", Code: "C10-I1"},
	{ID: "pnrr-c11-i3", ProgramID: "pnrr", Name: "Turism și cultură", Code: "C11-I3"},
	{ID: "afir-sm6-1", ProgramID: "afir", Name: "Instalarea tinerilor fermieri", Code: "sM6.1"},
	{ID: "afir-sm4-1", ProgramID: "afir", Name: "Investiții în exploatații agricole", Code: "sM4.1"},
	{ID: "afir-sm6-4", ProgramID: "afir", Name: "Investiții activități neagricole", Code: "sM6.4"},
	{ID: "poc-2-2", ProgramID: "poc", Name: "Creșterea competitivității IMM", Code: "2.2"},
	{ID: "por-2-1a", ProgramID: "por", Name: "Microîntreprinderi", Code: "2.1A"},
}

var calls = []Call{
	{
		ID: "pnrr-c9-i1-2025", MeasureID: "pnrr-c9-i1", Name: "Apel C9-I1 / 2025", Code: "C9-I1-2025",
		StartDate: "2025-01-15", EndDate: "2025-06-30", Status: "activ",
		Budget: decimal.NewFromInt(100_000_000), ValueMin: decimal.NewFromInt(50_000), ValueMax: decimal.NewFromInt(500_000),
		Beneficiaries: []string{"IMM", "Startup"}, Region: "Național",
	},
	{
		ID: "pnrr-c10-i1-2025", MeasureID: "pnrr-c10-i1", Name: "Apel Digitalizare / 2025", Code: "C10-I1-2025",
		StartDate: "2025-03-01", EndDate: "2025-09-30", Status: "activ",
		Budget: decimal.NewFromInt(200_000_000), ValueMin: decimal.NewFromInt(100_000), ValueMax: decimal.NewFromInt(2_000_000),
		Beneficiaries: []string{"IMM", "Mari Întreprinderi"}, Region: "Național",
	},
	{
		ID: "afir-sm6-4-2025", MeasureID: "afir-sm6-4", Name: "Sesiune sM6.4 / 2025", Code: "sM6.4-2025",
		StartDate: "2025-01-15", EndDate: "2025-08-15", Status: "activ",
		Budget: decimal.NewFromInt(100_000_000), ValueMin: decimal.NewFromInt(50_000), ValueMax: decimal.NewFromInt(200_000),
		Beneficiaries: []string{"IMM rural", "PFA"}, Region: "Rural",
	},
	{
		ID: "poc-2-2-2025", MeasureID: "poc-2-2", Name: "Apel POC 2.2 / 2025", Code: "2.2-2025",
		StartDate: "2025-05-01", EndDate: "2025-11-30", Status: "activ",
		Budget: decimal.NewFromInt(120_000_000), ValueMin: decimal.NewFromInt(200_000), ValueMax: decimal.NewFromInt(1_500_000),
		Beneficiaries: []string{"IMM"}, Region: "Național",
	},
}

var templates = []Template{
	{ID: "plan_afaceri", Label: "Plan de afaceri", Category: "principal", Sections: []string{"Rezumat executiv", "Descrierea afacerii", "Analiza pieței", "Strategia de marketing", "Planul operațional", "Resurse umane", "Proiecții financiare"}},
	{ID: "cerere_finantare", Label: "Cerere de finanțare", Category: "principal", Sections: []string{"Date solicitant", "Descriere proiect", "Obiective", "Activități", "Buget", "Calendar implementare", "Indicatori"}},
	{ID: "studiu_fezabilitate", Label: "Studiu de fezabilitate", Category: "principal", Sections: []string{"Date generale", "Descriere investiție", "Analiza cererii", "Capacitate producție", "Costuri estimative", "Analiza financiară"}},
	{ID: "declaratie_eligibilitate", Label: "Declarație de eligibilitate", Category: "declaratie", Sections: []string{"Identificare solicitant", "Condiții eligibilitate", "Angajamente", "Semnătură"}},
	{ID: "declaratie_angajament", Label: "Declarație de angajament", Category: "declaratie", Sections: []string{"Identificare", "Angajamente financiare", "Angajamente operaționale", "Semnătură"}},
	{ID: "memoriu_justificativ", Label: "Memoriu justificativ", Category: "principal", Sections: []string{"Date beneficiar", "Justificarea investiției", "Descriere tehnică", "Deviz estimativ"}},
	{ID: "deviz_general", Label: "Deviz general estimativ", Category: "financiar", Sections: []string{"Cheltuieli avize", "Cheltuieli proiectare", "Cheltuieli construcții", "Cheltuieli utilaje", "Alte cheltuieli", "Total"}},
}

// Programs returns all funding programs.
func Programs() []Program { return programs }

// Measures returns the measures for a program, or all measures when
// programID is empty.
func Measures(programID string) []Measure {
	if programID == "" {
		return measures
	}
	out := make([]Measure, 0, len(measures))
	for _, m := range measures {
		if m.ProgramID == programID {
			out = append(out, m)
		}
	}
	return out
}

// Calls returns the calls for a measure, or all calls when measureID is
// empty.
func Calls(measureID string) []Call {
	if measureID == "" {
		return calls
	}
	out := make([]Call, 0, len(calls))
	for _, c := range calls {
		if c.MeasureID == measureID {
			out = append(out, c)
		}
	}
	return out
}

// CallByID looks up a call. The second return value reports existence.
func CallByID(callID string) (Call, bool) {
	for _, c := range calls {
		if c.ID == callID {
			return c, true
		}
	}
	return Call{}, false
}

// MeasureByID looks up a measure.
func MeasureByID(measureID string) (Measure, bool) {
	for _, m := range measures {
		if m.ID == measureID {
			return m, true
		}
	}
	return Measure{}, false
}

// ProgramByID looks up a program.
func ProgramByID(programID string) (Program, bool) {
	for _, p := range programs {
		if p.ID == programID {
			return p, true
		}
	}
	return Program{}, false
}

// Templates returns all draft templates.
func Templates() []Template { return templates }

// TemplateByID looks up a draft template.
func TemplateByID(templateID string) (Template, bool) {
	for _, t := range templates {
		if t.ID == templateID {
			return t, true
		}
	}
	return Template{}, false
}
