// Package reporting aggregates the emergency flow into operational measures
// and a live dashboard.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/ehr/patientflow/internal/domain/emergency"
	"github.com/ehr/patientflow/internal/domain/manchester"
	"github.com/ehr/patientflow/internal/domain/sla"
	"github.com/ehr/patientflow/internal/platform/auth"
)

var (
	ErrUnknownMeasure   = errors.New("measure not found")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// PatientSource is the repository read the reports are computed from.
type PatientSource interface {
	ListByStatus(ctx context.Context, statuses ...emergency.Status) ([]*emergency.Patient, error)
}

type evalFunc func(eval *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{}

// MeasureDefinition describes a reporting measure.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	evaluate    evalFunc
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
	Parameters  map[string]string        `json:"parameters,omitempty"`
}

// Filters accepted by every measure. since is RFC 3339 or YYYY-MM-DD and
// matches tickets issued at or after it.
var measureParameters = []string{"since", "category"}

// PredefinedMeasures is the list of available reporting measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "status-count",
		Name:        "Patients by Status",
		Description: "Number of patients in each flow status",
		Parameters:  measureParameters,
		evaluate:    statusCount,
	},
	{
		ID:          "priority-distribution",
		Name:        "Manchester Priority Distribution",
		Description: "Triaged patients per priority color, most urgent first",
		Parameters:  measureParameters,
		evaluate:    priorityDistribution,
	},
	{
		ID:          "sla-breaches",
		Name:        "SLA Breaches",
		Description: "Patients over the triage and total time budgets",
		Parameters:  measureParameters,
		evaluate:    slaBreaches,
	},
	{
		ID:          "average-phase-times",
		Name:        "Average Phase Times",
		Description: "Mean minutes spent in each finished phase of the flow",
		Parameters:  measureParameters,
		evaluate:    averagePhaseTimes,
	},
	{
		ID:          "flow-frequency",
		Name:        "Clinical Flow Frequency",
		Description: "How often each clinical flow was chosen at triage",
		Parameters:  measureParameters,
		evaluate:    flowFrequency,
	},
	{
		ID:          "outcome-count",
		Name:        "Consultation Outcomes",
		Description: "Completed consultations by outcome",
		Parameters:  measureParameters,
		evaluate:    outcomeCount,
	},
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}

func statusCount(_ *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{} {
	counts := lo.CountValuesBy(patients, func(p *emergency.Patient) emergency.Status { return p.Status })
	return lo.Map(emergency.Statuses, func(s emergency.Status, _ int) map[string]interface{} {
		return map[string]interface{}{"status": s, "total": counts[s]}
	})
}

func priorityDistribution(_ *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{} {
	triaged := lo.Filter(patients, func(p *emergency.Patient, _ int) bool { return p.Triage != nil })
	counts := lo.CountValuesBy(triaged, func(p *emergency.Patient) manchester.Priority { return p.Triage.Priority })

	rows := make([]map[string]interface{}, 0, len(manchester.Priorities))
	for i := len(manchester.Priorities) - 1; i >= 0; i-- {
		pr := manchester.Priorities[i]
		rows = append(rows, map[string]interface{}{
			"priority": pr,
			"label":    pr.Label(),
			"color":    pr.Color(),
			"total":    counts[pr],
		})
	}
	return rows
}

func slaBreaches(eval *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{} {
	statuses := lo.Map(patients, func(p *emergency.Patient, _ int) sla.Status { return eval.IsOverSLA(p) })
	return []map[string]interface{}{
		{
			"kind":  sla.KindTriage,
			"limit": sla.TriageLimit,
			"total": lo.CountBy(statuses, func(s sla.Status) bool { return s.TriageSLA }),
		},
		{
			"kind":  sla.KindTotal,
			"limit": sla.TotalLimit,
			"total": lo.CountBy(statuses, func(s sla.Status) bool { return s.TotalSLA }),
		},
	}
}

// phaseSamples collects durations of phases whose closing event was
// recorded; phases cut short by a cancellation are left out.
func phaseSamples(eval *sla.Evaluator, patients []*emergency.Patient) map[string][]int {
	samples := make(map[string][]int)
	for _, p := range patients {
		for _, ph := range eval.Snapshot(p).Phases {
			if _, done := p.Timestamps.Get(ph.To); done {
				samples[ph.Name] = append(samples[ph.Name], ph.Minutes)
			}
		}
	}
	return samples
}

func average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := float64(lo.Sum(values)) / float64(len(values))
	return math.Round(mean*10) / 10
}

func averagePhaseTimes(eval *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{} {
	samples := phaseSamples(eval, patients)
	return lo.Map(sla.PhaseNames(), func(name string, _ int) map[string]interface{} {
		return map[string]interface{}{
			"phase":           name,
			"average_minutes": average(samples[name]),
			"samples":         len(samples[name]),
		}
	})
}

func flowFrequency(_ *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{} {
	withFlow := lo.Filter(patients, func(p *emergency.Patient, _ int) bool {
		return p.Triage != nil && p.Triage.FlowID != ""
	})
	counts := lo.CountValuesBy(withFlow, func(p *emergency.Patient) string { return p.Triage.FlowID })

	ids := lo.Keys(counts)
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return lo.Map(ids, func(id string, _ int) map[string]interface{} {
		name := id
		if flow, ok := manchester.FlowByID(id); ok {
			name = flow.Name
		}
		return map[string]interface{}{"flow_id": id, "name": name, "total": counts[id]}
	})
}

func outcomeCount(_ *sla.Evaluator, patients []*emergency.Patient) []map[string]interface{} {
	done := lo.Filter(patients, func(p *emergency.Patient, _ int) bool { return p.Consultation != nil })
	counts := lo.CountValuesBy(done, func(p *emergency.Patient) emergency.Outcome { return p.Consultation.Outcome })
	return lo.Map(emergency.Outcomes, func(o emergency.Outcome, _ int) map[string]interface{} {
		return map[string]interface{}{"outcome": o, "total": counts[o]}
	})
}

// Reporter evaluates measures against the patient repository.
type Reporter struct {
	patients PatientSource
	eval     *sla.Evaluator
}

func NewReporter(patients PatientSource, eval *sla.Evaluator) *Reporter {
	return &Reporter{patients: patients, eval: eval}
}

func (r *Reporter) load(ctx context.Context, params map[string]string) ([]*emergency.Patient, error) {
	patients, err := r.patients.ListByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	if raw := params["since"]; raw != "" {
		since, err := parseSince(raw)
		if err != nil {
			return nil, err
		}
		patients = lo.Filter(patients, func(p *emergency.Patient, _ int) bool {
			generated, ok := p.Timestamps.Get(emergency.EventGenerated)
			return ok && !generated.Before(since)
		})
	}
	if raw := params["category"]; raw != "" {
		category := emergency.Category(raw)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, raw)
		}
		patients = lo.Filter(patients, func(p *emergency.Patient, _ int) bool { return p.Category == category })
	}
	return patients, nil
}

func parseSince(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: since must be RFC 3339 or YYYY-MM-DD, got %q", ErrInvalidParameter, raw)
}

// Evaluate runs the measure over the patients matching params.
func (r *Reporter) Evaluate(ctx context.Context, id string, params map[string]string) (*MeasureReport, error) {
	measure := FindMeasure(id)
	if measure == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMeasure, id)
	}
	patients, err := r.load(ctx, params)
	if err != nil {
		return nil, err
	}
	return &MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     measure.evaluate(r.eval, patients),
		Parameters:  params,
	}, nil
}

// Dashboard is the live overview of the department.
type Dashboard struct {
	GeneratedAt    time.Time                   `json:"generated_at"`
	Total          int                         `json:"total"`
	ByStatus       map[emergency.Status]int    `json:"by_status"`
	Waiting        map[emergency.Stage]int     `json:"waiting"`
	ActivePriority map[manchester.Priority]int `json:"active_by_priority"`
	Breaches       BreachCount                 `json:"sla_breaches"`
	AverageMinutes map[string]float64          `json:"average_phase_minutes"`
}

// BreachCount counts patients still in the flow that are over budget.
type BreachCount struct {
	Triage int `json:"triage"`
	Total  int `json:"total"`
}

func (r *Reporter) Dashboard(ctx context.Context) (*Dashboard, error) {
	patients, err := r.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	active := lo.Filter(patients, func(p *emergency.Patient, _ int) bool { return !p.Status.IsTerminal() })

	d := &Dashboard{
		GeneratedAt:    time.Now(),
		Total:          len(patients),
		ByStatus:       lo.CountValuesBy(patients, func(p *emergency.Patient) emergency.Status { return p.Status }),
		Waiting:        make(map[emergency.Stage]int),
		ActivePriority: make(map[manchester.Priority]int),
		AverageMinutes: make(map[string]float64),
	}
	for _, stage := range []emergency.Stage{emergency.StageTriage, emergency.StageAdmin, emergency.StageDoctor} {
		waiting := stage.WaitingStatus()
		d.Waiting[stage] = lo.CountBy(active, func(p *emergency.Patient) bool { return p.Status == waiting })
	}
	for _, p := range active {
		if p.Triage != nil {
			d.ActivePriority[p.Triage.Priority]++
		}
		status := r.eval.IsOverSLA(p)
		if status.TriageSLA {
			d.Breaches.Triage++
		}
		if status.TotalSLA {
			d.Breaches.Total++
		}
	}
	for name, values := range phaseSamples(r.eval, patients) {
		d.AverageMinutes[name] = average(values)
	}
	return d, nil
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	reporter *Reporter
}

func NewHandler(reporter *Reporter) *Handler {
	return &Handler{reporter: reporter}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole(auth.RoleAdmin, auth.RolePhysician))
	reportGroup.GET("/dashboard", h.GetDashboard)
	reportGroup.GET("/measures", h.ListMeasures)
	reportGroup.GET("/measures/:id", h.EvaluateMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure computes a measure and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	params := map[string]string{}
	for _, p := range measure.Parameters {
		if v := c.QueryParam(p); v != "" {
			params[p] = v
		}
	}

	report, err := h.reporter.Evaluate(c.Request().Context(), measure.ID, params)
	if err != nil {
		if errors.Is(err, ErrInvalidParameter) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("evaluation failed: %v", err))
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetDashboard(c echo.Context) error {
	d, err := h.reporter.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
