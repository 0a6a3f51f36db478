package emergency

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patientflow/internal/domain/manchester"
)

// Category selects the totem queue a ticket is issued in.
type Category string

const (
	CategoryPriority Category = "prioritario"
	CategoryStandard Category = "normal"
)

func (c Category) Valid() bool {
	return c == CategoryPriority || c == CategoryStandard
}

// TicketPrefix is the letter printed before the ticket sequence number.
func (c Category) TicketPrefix() string {
	if c == CategoryPriority {
		return "P"
	}
	return "N"
}

// EventName keys the sparse timestamps map of a patient.
type EventName string

const (
	EventGenerated             EventName = "generated"
	EventTriageStarted         EventName = "triageStarted"
	EventTriageCompleted       EventName = "triageCompleted"
	EventAdminStarted          EventName = "adminStarted"
	EventAdminCompleted        EventName = "adminCompleted"
	EventConsultationStarted   EventName = "consultationStarted"
	EventConsultationCompleted EventName = "consultationCompleted"
	EventCancelled             EventName = "cancelled"
)

// Timestamps records when each flow event happened. Events not yet reached
// are absent.
type Timestamps map[EventName]time.Time

// Get returns the instant of e and whether it was recorded.
func (ts Timestamps) Get(e EventName) (time.Time, bool) {
	t, ok := ts[e]
	return t, ok
}

// Latest returns the most recent recorded instant.
func (ts Timestamps) Latest() time.Time {
	var latest time.Time
	for _, t := range ts {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}

// Patient is a visit to the emergency department, from ticket issuance to
// consultation or cancellation.
type Patient struct {
	ID           uuid.UUID         `json:"id"`
	Ticket       string            `json:"ticket"`
	Category     Category          `json:"category"`
	Phone        string            `json:"phone,omitempty"`
	Status       Status            `json:"status"`
	Timestamps   Timestamps        `json:"timestamps"`
	Personal     *PersonalData     `json:"personal_data,omitempty"`
	Triage       *TriageData       `json:"triage_data,omitempty"`
	Consultation *ConsultationData `json:"consultation_data,omitempty"`
	Cancellation *Cancellation     `json:"cancellation,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// PersonalData is filled at administrative intake.
type PersonalData struct {
	Name      string `json:"name"`
	Document  string `json:"document,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Insurance string `json:"insurance,omitempty"`
}

// TriageData is recorded by the nurse when triage completes.
type TriageData struct {
	Priority   manchester.Priority `json:"priority"`
	Complaints string              `json:"complaints"`
	Symptoms   string              `json:"symptoms,omitempty"`
	Vitals     manchester.Vitals   `json:"vitals"`
	PainScale  *int                `json:"pain_scale,omitempty"`
	FlowID     string              `json:"flow_id,omitempty"`
	Specialty  string              `json:"specialty,omitempty"`
	NurseNote  string              `json:"nurse_note,omitempty"`
}

// Outcome is how a completed consultation ended.
type Outcome string

const (
	OutcomeDischarge Outcome = "alta"
	OutcomeAdmission Outcome = "internacao"
	OutcomeTransfer  Outcome = "transferencia"
	OutcomeDeath     Outcome = "obito"
	OutcomeEvasion   Outcome = "evasao"
)

// Outcomes lists every consultation outcome.
var Outcomes = []Outcome{OutcomeDischarge, OutcomeAdmission, OutcomeTransfer, OutcomeDeath, OutcomeEvasion}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeDischarge, OutcomeAdmission, OutcomeTransfer, OutcomeDeath, OutcomeEvasion:
		return true
	}
	return false
}

// ConsultationData is recorded by the physician when the consultation ends.
type ConsultationData struct {
	Outcome      Outcome `json:"outcome"`
	Diagnosis    string  `json:"diagnosis,omitempty"`
	Prescription string  `json:"prescription,omitempty"`
	Note         string  `json:"note,omitempty"`
}

type Cancellation struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Clone returns a deep copy of p.
func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Timestamps = make(Timestamps, len(p.Timestamps))
	for k, v := range p.Timestamps {
		cp.Timestamps[k] = v
	}
	if p.Personal != nil {
		pd := *p.Personal
		if p.Personal.Age != nil {
			age := *p.Personal.Age
			pd.Age = &age
		}
		cp.Personal = &pd
	}
	if p.Triage != nil {
		td := *p.Triage
		if p.Triage.PainScale != nil {
			pain := *p.Triage.PainScale
			td.PainScale = &pain
		}
		td.Vitals = cloneVitals(p.Triage.Vitals)
		cp.Triage = &td
	}
	if p.Consultation != nil {
		cd := *p.Consultation
		cp.Consultation = &cd
	}
	if p.Cancellation != nil {
		cc := *p.Cancellation
		cp.Cancellation = &cc
	}
	return &cp
}

func cloneVitals(v manchester.Vitals) manchester.Vitals {
	return manchester.Vitals{
		BloodPressureSys: cloneInt(v.BloodPressureSys),
		BloodPressureDia: cloneInt(v.BloodPressureDia),
		HeartRate:        cloneInt(v.HeartRate),
		RespiratoryRate:  cloneInt(v.RespiratoryRate),
		Temperature:      cloneFloat(v.Temperature),
		OxygenSaturation: cloneInt(v.OxygenSaturation),
		Glucose:          cloneInt(v.Glucose),
		GlasgowComaScore: cloneInt(v.GlasgowComaScore),
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
