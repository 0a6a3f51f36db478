package sla

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/patientflow/internal/domain/emergency"
	"github.com/ehr/patientflow/internal/platform/websocket"
)

// EventBreach is published the first time a patient exceeds a budget.
const EventBreach = "sla.breach"

// Breach kinds.
const (
	KindTriage = "triage"
	KindTotal  = "total"
)

// Breach describes a newly detected budget overrun.
type Breach struct {
	PatientID uuid.UUID        `json:"patient_id"`
	Ticket    string           `json:"ticket"`
	Status    emergency.Status `json:"status"`
	Kind      string           `json:"kind"`
	Minutes   int              `json:"minutes"`
	Limit     int              `json:"limit"`
}

// PatientLister is the read side of the patient repository the monitor needs.
type PatientLister interface {
	ListByStatus(ctx context.Context, statuses ...emergency.Status) ([]*emergency.Patient, error)
}

// Monitor periodically re-evaluates every active patient and announces
// breaches once per patient and kind.
type Monitor struct {
	patients  PatientLister
	eval      *Evaluator
	publisher websocket.EventPublisher
	interval  time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	flagged map[uuid.UUID]Status
}

func NewMonitor(patients PatientLister, eval *Evaluator, publisher websocket.EventPublisher, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		patients:  patients,
		eval:      eval,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With().Str("component", "sla_monitor").Logger(),
		flagged:   make(map[uuid.UUID]Status),
	}
}

// Start runs the evaluation loop. It blocks until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info().Dur("interval", m.interval).Msg("sla monitor started")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.Check(ctx); err != nil {
			m.logger.Error().Err(err).Msg("sla check failed")
		}
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("sla monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

func activeStatuses() []emergency.Status {
	var out []emergency.Status
	for _, s := range emergency.Statuses {
		if !s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}

// Check evaluates active patients once and returns the breaches detected
// for the first time.
func (m *Monitor) Check(ctx context.Context) ([]Breach, error) {
	patients, err := m.patients.ListByStatus(ctx, activeStatuses()...)
	if err != nil {
		return nil, fmt.Errorf("list active patients: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var breaches []Breach
	seen := make(map[uuid.UUID]bool, len(patients))
	for _, p := range patients {
		seen[p.ID] = true
		status := m.eval.IsOverSLA(p)
		prev := m.flagged[p.ID]

		if status.TriageSLA && !prev.TriageSLA {
			breaches = append(breaches, m.breach(p, KindTriage, emergency.EventTriageCompleted, TriageLimit))
		}
		if status.TotalSLA && !prev.TotalSLA {
			breaches = append(breaches, m.breach(p, KindTotal, emergency.EventConsultationCompleted, TotalLimit))
		}
		m.flagged[p.ID] = Status{
			TriageSLA: prev.TriageSLA || status.TriageSLA,
			TotalSLA:  prev.TotalSLA || status.TotalSLA,
		}
	}
	for id := range m.flagged {
		if !seen[id] {
			delete(m.flagged, id)
		}
	}

	for _, b := range breaches {
		m.logger.Warn().Str("ticket", b.Ticket).Str("kind", b.Kind).Int("minutes", b.Minutes).Msg("sla breached")
		m.publish(ctx, b)
	}
	return breaches, nil
}

func (m *Monitor) breach(p *emergency.Patient, kind string, to emergency.EventName, limit int) Breach {
	return Breach{
		PatientID: p.ID,
		Ticket:    p.Ticket,
		Status:    p.Status,
		Kind:      kind,
		Minutes:   m.eval.TimeElapsed(p, emergency.EventGenerated, to),
		Limit:     limit,
	}
}

func (m *Monitor) publish(ctx context.Context, b Breach) {
	if m.publisher == nil {
		return
	}
	ev, err := websocket.NewEvent(EventBreach, websocket.TopicSLA, b.PatientID.String(), b)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to build breach event")
		return
	}
	if err := m.publisher.Publish(ctx, ev); err != nil {
		m.logger.Warn().Err(err).Msg("failed to publish breach event")
	}
}
