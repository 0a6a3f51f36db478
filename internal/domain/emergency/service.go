package emergency

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/patientflow/internal/domain/manchester"
	"github.com/ehr/patientflow/internal/platform/websocket"
)

// EventPatientStatus is published on every status change.
const EventPatientStatus = "patient.status"

// Service owns the patient flow: ticket issuance, stage transitions and
// queue calls. Transitions are serialized so two stations cannot call the
// same patient.
type Service struct {
	repo      PatientRepository
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	counters map[Category]int
}

func NewService(repo PatientRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger.With().Str("component", "emergency").Logger(),
		now:      time.Now,
		counters: make(map[Category]int),
	}
}

// SetPublisher attaches an optional live-feed publisher.
func (s *Service) SetPublisher(p websocket.EventPublisher) {
	s.publisher = p
}

// SetClock replaces the wall clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RestoreTicketCounters resumes ticket numbering from the stored patients,
// so a restart against a persistent repository does not reissue numbers.
func (s *Service) RestoreTicketCounters(ctx context.Context) error {
	patients, err := s.repo.ListByStatus(ctx)
	if err != nil {
		return fmt.Errorf("restore ticket counters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range patients {
		prefix := p.Category.TicketPrefix()
		n, err := strconv.Atoi(strings.TrimPrefix(p.Ticket, prefix))
		if err != nil || !strings.HasPrefix(p.Ticket, prefix) {
			continue
		}
		if n > s.counters[p.Category] {
			s.counters[p.Category] = n
		}
	}
	return nil
}

// IssueTicket registers a new arrival at the totem.
func (s *Service) IssueTicket(ctx context.Context, category Category, phone string) (*Patient, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category must be %q or %q", ErrValidation, CategoryPriority, CategoryStandard)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.counters[category] + 1
	now := s.now()
	p := &Patient{
		ID:         uuid.New(),
		Ticket:     fmt.Sprintf("%s%03d", category.TicketPrefix(), n),
		Category:   category,
		Phone:      strings.TrimSpace(phone),
		Status:     StatusWaitingTriage,
		Timestamps: Timestamps{EventGenerated: now},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	s.counters[category] = n

	s.logger.Info().Str("ticket", p.Ticket).Str("patient_id", p.ID.String()).Msg("ticket issued")
	s.publish(ctx, p)
	return p, nil
}

func (s *Service) StartTriage(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.advance(ctx, id, StatusInTriage, nil)
}

// CompleteTriage records the nurse's assessment and queues the patient for
// administrative intake.
func (s *Service) CompleteTriage(ctx context.Context, id uuid.UUID, data TriageData) (*Patient, error) {
	if err := validateTriage(&data); err != nil {
		return nil, err
	}
	return s.advance(ctx, id, StatusWaitingAdmin, func(p *Patient) {
		p.Triage = &data
	})
}

func validateTriage(d *TriageData) error {
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: priority is required", ErrValidation)
	}
	d.Complaints = strings.TrimSpace(d.Complaints)
	if d.Complaints == "" {
		return fmt.Errorf("%w: complaints is required", ErrValidation)
	}
	if d.PainScale != nil && (*d.PainScale < 0 || *d.PainScale > 10) {
		return fmt.Errorf("%w: pain_scale must be between 0 and 10", ErrValidation)
	}
	if d.FlowID != "" {
		flow, ok := manchester.FlowByID(d.FlowID)
		if !ok {
			return fmt.Errorf("%w: unknown flow %q", ErrValidation, d.FlowID)
		}
		if !flow.AllowsPriority(d.Priority) {
			return fmt.Errorf("%w: priority %s is outside the range of flow %s", ErrValidation, d.Priority, flow.ID)
		}
		if d.Specialty == "" {
			d.Specialty = flow.Specialty
		}
	}
	if d.Specialty != "" && !manchester.KnownSpecialty(d.Specialty) {
		return fmt.Errorf("%w: unknown specialty %q", ErrValidation, d.Specialty)
	}
	return nil
}

func (s *Service) StartAdmin(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.advance(ctx, id, StatusInAdmin, nil)
}

// CompleteAdmin stores the patient's personal data and queues them for the
// physician.
func (s *Service) CompleteAdmin(ctx context.Context, id uuid.UUID, data PersonalData) (*Patient, error) {
	data.Name = strings.TrimSpace(data.Name)
	if data.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if data.Age != nil && (*data.Age < 0 || *data.Age > 150) {
		return nil, fmt.Errorf("%w: age must be between 0 and 150", ErrValidation)
	}
	return s.advance(ctx, id, StatusWaitingDoctor, func(p *Patient) {
		p.Personal = &data
	})
}

func (s *Service) StartConsultation(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.advance(ctx, id, StatusInConsultation, nil)
}

func (s *Service) CompleteConsultation(ctx context.Context, id uuid.UUID, data ConsultationData) (*Patient, error) {
	if !data.Outcome.Valid() {
		return nil, fmt.Errorf("%w: invalid outcome %q", ErrValidation, data.Outcome)
	}
	return s.advance(ctx, id, StatusCompleted, func(p *Patient) {
		p.Consultation = &data
	})
}

// Cancel removes a patient from the flow from any non-terminal status.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Patient, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	clamped, err := p.Cancel(reason, s.now())
	if err != nil {
		return nil, err
	}
	return p, s.save(ctx, p, clamped)
}

// CallNext moves the first patient of the stage's queue into the stage.
// It returns ErrNotFound when the queue is empty.
func (s *Service) CallNext(ctx context.Context, stage Stage) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := s.queue(ctx, stage)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: %s queue is empty", ErrNotFound, stage)
	}
	p := queue[0]
	clamped, err := p.Advance(stage.ActiveStatus(), s.now())
	if err != nil {
		return nil, err
	}
	return p, s.save(ctx, p, clamped)
}

// Queue lists the patients waiting for stage in call order.
func (s *Service) Queue(ctx context.Context, stage Stage) ([]*Patient, error) {
	return s.queue(ctx, stage)
}

func (s *Service) queue(ctx context.Context, stage Stage) ([]*Patient, error) {
	patients, err := s.repo.ListByStatus(ctx, stage.WaitingStatus())
	if err != nil {
		return nil, fmt.Errorf("list %s queue: %w", stage, err)
	}
	SortQueue(stage, patients)
	return patients, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, statuses ...Status) ([]*Patient, error) {
	return s.repo.ListByStatus(ctx, statuses...)
}

func (s *Service) advance(ctx context.Context, id uuid.UUID, to Status, apply func(*Patient)) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	clamped, err := p.Advance(to, s.now())
	if err != nil {
		return nil, err
	}
	if apply != nil {
		apply(p)
	}
	return p, s.save(ctx, p, clamped)
}

func (s *Service) save(ctx context.Context, p *Patient, clamped bool) error {
	if clamped {
		s.logger.Warn().Str("ticket", p.Ticket).Str("status", string(p.Status)).
			Msg("clock behind latest recorded event, timestamp clamped")
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	s.logger.Info().Str("ticket", p.Ticket).Str("status", string(p.Status)).Msg("patient status changed")
	s.publish(ctx, p)
	return nil
}

type statusPayload struct {
	Ticket   string              `json:"ticket"`
	Status   Status              `json:"status"`
	Category Category            `json:"category"`
	Priority manchester.Priority `json:"priority,omitempty"`
}

func (s *Service) publish(ctx context.Context, p *Patient) {
	if s.publisher == nil {
		return
	}
	payload := statusPayload{Ticket: p.Ticket, Status: p.Status, Category: p.Category}
	if p.Triage != nil {
		payload.Priority = p.Triage.Priority
	}
	for _, topic := range []string{websocket.TopicQueue, websocket.QueueTopic(string(p.Status))} {
		ev, err := websocket.NewEvent(EventPatientStatus, topic, p.ID.String(), payload)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to build event")
			return
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn().Err(err).Str("topic", topic).Msg("failed to publish event")
		}
	}
}
