package emergency

import (
	"fmt"
	"sort"
	"time"
)

// Stage is a service point with a waiting queue in front of it.
type Stage string

const (
	StageTriage Stage = "triage"
	StageAdmin  Stage = "admin"
	StageDoctor Stage = "doctor"
)

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageTriage, StageAdmin, StageDoctor:
		return Stage(s), nil
	}
	return "", fmt.Errorf("%w: unknown stage %q", ErrValidation, s)
}

// WaitingStatus is the status of patients queued for the stage.
func (s Stage) WaitingStatus() Status {
	switch s {
	case StageTriage:
		return StatusWaitingTriage
	case StageAdmin:
		return StatusWaitingAdmin
	default:
		return StatusWaitingDoctor
	}
}

// ActiveStatus is the status of patients being attended at the stage.
func (s Stage) ActiveStatus() Status {
	next, _ := s.WaitingStatus().Next()
	return next
}

// SortQueue orders waiting patients in call order for the stage.
//   - triage: priority-queue tickets first, then ticket issue time
//   - admin: order of triage completion
//   - doctor: most urgent color first, then order of triage completion
func SortQueue(stage Stage, patients []*Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		return queueLess(stage, patients[i], patients[j])
	})
}

func queueLess(stage Stage, a, b *Patient) bool {
	switch stage {
	case StageTriage:
		if a.Category != b.Category {
			return a.Category == CategoryPriority
		}
		return eventBefore(a, b, EventGenerated)
	case StageDoctor:
		pa, pb := triageRank(a), triageRank(b)
		if pa != pb {
			return pa > pb
		}
		return eventBefore(a, b, EventTriageCompleted)
	default:
		return eventBefore(a, b, EventTriageCompleted)
	}
}

func triageRank(p *Patient) int {
	if p.Triage == nil {
		return 0
	}
	return p.Triage.Priority.Rank()
}

func eventBefore(a, b *Patient, e EventName) bool {
	ta, okA := a.Timestamps.Get(e)
	tb, okB := b.Timestamps.Get(e)
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA:
		return true
	default:
		return false
	}
}

// WaitSince is when the patient joined its current queue.
func (p *Patient) WaitSince() (time.Time, bool) {
	if p.Status == StatusWaitingTriage {
		return p.Timestamps.Get(EventGenerated)
	}
	e, ok := p.Status.EnteringEvent()
	if !ok {
		return time.Time{}, false
	}
	return p.Timestamps.Get(e)
}
