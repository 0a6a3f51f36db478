package emergency

import (
	"errors"
	"fmt"
	"time"
)

// Status is the position of a patient in the emergency flow.
type Status string

const (
	StatusWaitingTriage  Status = "waiting-triage"
	StatusInTriage       Status = "in-triage"
	StatusWaitingAdmin   Status = "waiting-admin"
	StatusInAdmin        Status = "in-admin"
	StatusWaitingDoctor  Status = "waiting-doctor"
	StatusInConsultation Status = "in-consultation"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// Statuses lists every status in flow order, cancelled last.
var Statuses = []Status{
	StatusWaitingTriage, StatusInTriage, StatusWaitingAdmin, StatusInAdmin,
	StatusWaitingDoctor, StatusInConsultation, StatusCompleted, StatusCancelled,
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("patient not found")
	ErrValidation        = errors.New("validation failed")
)

type transition struct {
	next  Status
	stamp EventName
}

// forward holds the only legal forward move out of each status and the
// timestamp stamped on entering the next one.
var forward = map[Status]transition{
	StatusWaitingTriage:  {StatusInTriage, EventTriageStarted},
	StatusInTriage:       {StatusWaitingAdmin, EventTriageCompleted},
	StatusWaitingAdmin:   {StatusInAdmin, EventAdminStarted},
	StatusInAdmin:        {StatusWaitingDoctor, EventAdminCompleted},
	StatusWaitingDoctor:  {StatusInConsultation, EventConsultationStarted},
	StatusInConsultation: {StatusCompleted, EventConsultationCompleted},
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next returns the status that follows s, or false when s is terminal.
func (s Status) Next() (Status, bool) {
	t, ok := forward[s]
	return t.next, ok
}

// EnteringEvent is the timestamp stamped when a patient enters s.
func (s Status) EnteringEvent() (EventName, bool) {
	if s == StatusCancelled {
		return EventCancelled, true
	}
	for _, t := range forward {
		if t.next == s {
			return t.stamp, true
		}
	}
	return "", false
}

// CanTransition reports whether a patient may move from one status to another.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	t, ok := forward[from]
	return ok && t.next == to
}

// Advance moves the patient to the next status and stamps the matching
// event. The stamp never precedes an earlier recorded event; the returned
// bool reports whether now had to be clamped.
func (p *Patient) Advance(to Status, now time.Time) (bool, error) {
	if to == StatusCancelled {
		return false, fmt.Errorf("%w: use Cancel to cancel a patient", ErrInvalidTransition)
	}
	if !CanTransition(p.Status, to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}
	event := forward[p.Status].stamp
	at, clamped := p.stampTime(now)
	p.Timestamps[event] = at
	p.Status = to
	p.UpdatedAt = at
	return clamped, nil
}

// Cancel moves a non-terminal patient to cancelled.
func (p *Patient) Cancel(reason string, now time.Time) (bool, error) {
	if !CanTransition(p.Status, StatusCancelled) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusCancelled)
	}
	at, clamped := p.stampTime(now)
	p.Timestamps[EventCancelled] = at
	p.Cancellation = &Cancellation{Reason: reason, At: at}
	p.Status = StatusCancelled
	p.UpdatedAt = at
	return clamped, nil
}

func (p *Patient) stampTime(now time.Time) (time.Time, bool) {
	if p.Timestamps == nil {
		p.Timestamps = make(Timestamps)
	}
	if latest := p.Timestamps.Latest(); now.Before(latest) {
		return latest, true
	}
	return now, false
}
