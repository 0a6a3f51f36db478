package emergency

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository stores patient visits. Implementations return copies;
// callers mutate a patient and persist it with Update.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// ListByStatus returns patients in any of the given statuses, oldest
	// ticket first. No statuses means every patient.
	ListByStatus(ctx context.Context, statuses ...Status) ([]*Patient, error)
}
