package emergency

import (
	"errors"
	"testing"
	"time"

	"github.com/ehr/patientflow/internal/domain/manchester"
)

func tickets(patients []*Patient) []string {
	out := make([]string, len(patients))
	for i, p := range patients {
		out[i] = p.Ticket
	}
	return out
}

func equalTickets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func triaged(ticket string, priority manchester.Priority, completed time.Time) *Patient {
	p := newWaitingPatient(ticket, CategoryStandard, t0)
	p.Status = StatusWaitingDoctor
	p.Timestamps[EventTriageCompleted] = completed
	p.Triage = &TriageData{Priority: priority, Complaints: "x"}
	return p
}

func TestParseStage(t *testing.T) {
	for _, s := range []string{"triage", "admin", "doctor"} {
		if _, err := ParseStage(s); err != nil {
			t.Errorf("ParseStage(%s): %v", s, err)
		}
	}
	if _, err := ParseStage("pharmacy"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestStage_Statuses(t *testing.T) {
	tests := []struct {
		stage           Stage
		waiting, active Status
	}{
		{StageTriage, StatusWaitingTriage, StatusInTriage},
		{StageAdmin, StatusWaitingAdmin, StatusInAdmin},
		{StageDoctor, StatusWaitingDoctor, StatusInConsultation},
	}
	for _, tt := range tests {
		if tt.stage.WaitingStatus() != tt.waiting || tt.stage.ActiveStatus() != tt.active {
			t.Errorf("%s: got %s/%s", tt.stage, tt.stage.WaitingStatus(), tt.stage.ActiveStatus())
		}
	}
}

func TestSortQueue_Triage(t *testing.T) {
	queue := []*Patient{
		newWaitingPatient("N001", CategoryStandard, t0),
		newWaitingPatient("N002", CategoryStandard, t0.Add(time.Minute)),
		newWaitingPatient("P001", CategoryPriority, t0.Add(2*time.Minute)),
		newWaitingPatient("P002", CategoryPriority, t0.Add(3*time.Minute)),
	}
	SortQueue(StageTriage, queue)

	want := []string{"P001", "P002", "N001", "N002"}
	if got := tickets(queue); !equalTickets(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSortQueue_Doctor(t *testing.T) {
	queue := []*Patient{
		triaged("N001", manchester.PriorityGreen, t0.Add(10*time.Minute)),
		triaged("N002", manchester.PriorityOrange, t0.Add(20*time.Minute)),
		triaged("N003", manchester.PriorityOrange, t0.Add(15*time.Minute)),
		triaged("N004", manchester.PriorityBlue, t0.Add(5*time.Minute)),
	}
	SortQueue(StageDoctor, queue)

	want := []string{"N003", "N002", "N001", "N004"}
	if got := tickets(queue); !equalTickets(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSortQueue_Admin(t *testing.T) {
	queue := []*Patient{
		triaged("N001", manchester.PriorityRed, t0.Add(10*time.Minute)),
		triaged("N002", manchester.PriorityBlue, t0.Add(5*time.Minute)),
	}
	SortQueue(StageAdmin, queue)

	want := []string{"N002", "N001"}
	if got := tickets(queue); !equalTickets(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPatient_WaitSince(t *testing.T) {
	p := newWaitingPatient("N001", CategoryStandard, t0)
	if got, ok := p.WaitSince(); !ok || !got.Equal(t0) {
		t.Errorf("expected %v, got %v", t0, got)
	}
	_, _ = p.Advance(StatusInTriage, t0.Add(time.Minute))
	_, _ = p.Advance(StatusWaitingAdmin, t0.Add(4*time.Minute))
	if got, ok := p.WaitSince(); !ok || !got.Equal(t0.Add(4*time.Minute)) {
		t.Errorf("expected triage completion, got %v", got)
	}
}
