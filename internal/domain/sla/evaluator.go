// Package sla measures how long patients spend in each phase of the
// emergency flow and flags breaches of the fixed time budgets.
package sla

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/patientflow/internal/domain/emergency"
	"github.com/ehr/patientflow/internal/domain/manchester"
)

// Time budgets in minutes, measured from ticket issuance.
const (
	TriageLimit = 10
	TotalLimit  = 110
)

// Status holds the two independent breach flags.
type Status struct {
	TriageSLA bool `json:"triageSLA"`
	TotalSLA  bool `json:"totalSLA"`
}

// Any reports whether either budget is exceeded.
func (s Status) Any() bool { return s.TriageSLA || s.TotalSLA }

// Evaluator computes elapsed times against an injectable clock. Results for
// patients still in the flow change over time and are never cached.
type Evaluator struct {
	now    func() time.Time
	logger zerolog.Logger
}

func NewEvaluator(logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		now:    time.Now,
		logger: logger.With().Str("component", "sla").Logger(),
	}
}

// WithClock returns a copy of e that reads the time from now.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	cp := *e
	cp.now = now
	return &cp
}

// TimeElapsed returns whole minutes between the from and to events of p.
// A missing from event yields 0. An empty or missing to event means now.
// Negative spans are logged and reported as 0.
func (e *Evaluator) TimeElapsed(p *emergency.Patient, from, to emergency.EventName) int {
	start, ok := p.Timestamps.Get(from)
	if !ok {
		return 0
	}
	end, ok := p.Timestamps.Get(to)
	if to == "" || !ok {
		end = e.now()
	}
	return e.minutes(p, from, to, start, end)
}

func (e *Evaluator) minutes(p *emergency.Patient, from, to emergency.EventName, start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		e.logger.Warn().
			Str("ticket", p.Ticket).
			Str("from", string(from)).
			Str("to", string(to)).
			Dur("delta", d).
			Msg("negative elapsed time, clock skew or misordered timestamps")
		return 0
	}
	return int(d / time.Minute)
}

// IsOverSLA checks both budgets against the current time for phases that
// are still open.
func (e *Evaluator) IsOverSLA(p *emergency.Patient) Status {
	return Status{
		TriageSLA: e.TimeElapsed(p, emergency.EventGenerated, emergency.EventTriageCompleted) > TriageLimit,
		TotalSLA:  e.TimeElapsed(p, emergency.EventGenerated, emergency.EventConsultationCompleted) > TotalLimit,
	}
}

// Phase is one measured span of the flow. Open is true while the phase has
// started and not yet finished.
type Phase struct {
	Name    string              `json:"name"`
	From    emergency.EventName `json:"from"`
	To      emergency.EventName `json:"to"`
	Minutes int                 `json:"minutes"`
	Open    bool                `json:"open"`
}

// Phases in flow order. The last entry spans the whole visit.
var phaseTable = []struct {
	name     string
	from, to emergency.EventName
}{
	{"wait_triage", emergency.EventGenerated, emergency.EventTriageStarted},
	{"triage", emergency.EventTriageStarted, emergency.EventTriageCompleted},
	{"wait_admin", emergency.EventTriageCompleted, emergency.EventAdminStarted},
	{"admin", emergency.EventAdminStarted, emergency.EventAdminCompleted},
	{"wait_doctor", emergency.EventAdminCompleted, emergency.EventConsultationStarted},
	{"consultation", emergency.EventConsultationStarted, emergency.EventConsultationCompleted},
	{"total", emergency.EventGenerated, emergency.EventConsultationCompleted},
}

// PhaseNames lists phase names in report order.
func PhaseNames() []string {
	names := make([]string, len(phaseTable))
	for i, ph := range phaseTable {
		names[i] = ph.name
	}
	return names
}

// Report is a point-in-time view of a patient's durations.
type Report struct {
	PatientID   string              `json:"patient_id"`
	Ticket      string              `json:"ticket"`
	Status      emergency.Status    `json:"status"`
	Priority    manchester.Priority `json:"priority,omitempty"`
	Phases      []Phase             `json:"phases"`
	SLA         Status              `json:"sla"`
	TargetWait  *int                `json:"target_wait_minutes,omitempty"`
	EvaluatedAt time.Time           `json:"evaluated_at"`
}

// Phase returns the named phase, if present in the report.
func (r Report) Phase(name string) (Phase, bool) {
	for _, ph := range r.Phases {
		if ph.Name == name {
			return ph, true
		}
	}
	return Phase{}, false
}

// Snapshot measures every phase the patient has entered. Phases not yet
// started are omitted. For cancelled patients open phases end at the
// cancellation instead of now.
func (e *Evaluator) Snapshot(p *emergency.Patient) Report {
	now := e.now()
	r := Report{
		PatientID:   p.ID.String(),
		Ticket:      p.Ticket,
		Status:      p.Status,
		Phases:      []Phase{},
		SLA:         e.IsOverSLA(p),
		EvaluatedAt: now,
	}
	if p.Triage != nil {
		r.Priority = p.Triage.Priority
		if p.Triage.Priority.Valid() {
			minutes := int(p.Triage.Priority.TargetWait() / time.Minute)
			r.TargetWait = &minutes
		}
	}

	cancelledAt, cancelled := p.Timestamps.Get(emergency.EventCancelled)
	for _, ph := range phaseTable {
		start, ok := p.Timestamps.Get(ph.from)
		if !ok {
			continue
		}
		end, done := p.Timestamps.Get(ph.to)
		open := !done
		if !done {
			end = now
			if cancelled {
				end = cancelledAt
				open = false
			}
		}
		r.Phases = append(r.Phases, Phase{
			Name:    ph.name,
			From:    ph.from,
			To:      ph.to,
			Minutes: e.minutes(p, ph.from, ph.to, start, end),
			Open:    open,
		})
	}
	return r
}
