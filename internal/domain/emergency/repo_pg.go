package emergency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type patientRepoPG struct{ pool *pgxpool.Pool }

// NewPatientRepoPG stores patients in the ed_patient table.
func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, ticket, category, phone, status, timestamps,
	personal_data, triage_data, consultation_data, cancellation, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var ts, personal, triage, consultation, cancellation []byte
	err := row.Scan(&p.ID, &p.Ticket, &p.Category, &p.Phone, &p.Status, &ts,
		&personal, &triage, &consultation, &cancellation, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Timestamps = make(Timestamps)
	if err := unmarshalColumn("timestamps", ts, &p.Timestamps); err != nil {
		return nil, err
	}
	if personal != nil {
		p.Personal = &PersonalData{}
		if err := unmarshalColumn("personal_data", personal, p.Personal); err != nil {
			return nil, err
		}
	}
	if triage != nil {
		p.Triage = &TriageData{}
		if err := unmarshalColumn("triage_data", triage, p.Triage); err != nil {
			return nil, err
		}
	}
	if consultation != nil {
		p.Consultation = &ConsultationData{}
		if err := unmarshalColumn("consultation_data", consultation, p.Consultation); err != nil {
			return nil, err
		}
	}
	if cancellation != nil {
		p.Cancellation = &Cancellation{}
		if err := unmarshalColumn("cancellation", cancellation, p.Cancellation); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func unmarshalColumn(col string, data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", col, err)
	}
	return nil
}

type patientColumns struct {
	timestamps, personal, triage, consultation, cancellation []byte
}

func encodePatient(p *Patient) (patientColumns, error) {
	var cols patientColumns
	var err error
	ts := p.Timestamps
	if ts == nil {
		ts = Timestamps{}
	}
	if cols.timestamps, err = json.Marshal(ts); err != nil {
		return cols, fmt.Errorf("encode timestamps: %w", err)
	}
	if p.Personal != nil {
		if cols.personal, err = json.Marshal(p.Personal); err != nil {
			return cols, fmt.Errorf("encode personal_data: %w", err)
		}
	}
	if p.Triage != nil {
		if cols.triage, err = json.Marshal(p.Triage); err != nil {
			return cols, fmt.Errorf("encode triage_data: %w", err)
		}
	}
	if p.Consultation != nil {
		if cols.consultation, err = json.Marshal(p.Consultation); err != nil {
			return cols, fmt.Errorf("encode consultation_data: %w", err)
		}
	}
	if p.Cancellation != nil {
		if cols.cancellation, err = json.Marshal(p.Cancellation); err != nil {
			return cols, fmt.Errorf("encode cancellation: %w", err)
		}
	}
	return cols, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cols, err := encodePatient(p)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO ed_patient (id, ticket, category, phone, status, timestamps,
			personal_data, triage_data, consultation_data, cancellation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		p.ID, p.Ticket, p.Category, p.Phone, p.Status, cols.timestamps,
		cols.personal, cols.triage, cols.consultation, cols.cancellation,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM ed_patient WHERE id = $1`, id))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	cols, err := encodePatient(p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE ed_patient SET phone=$2, status=$3, timestamps=$4, personal_data=$5,
			triage_data=$6, consultation_data=$7, cancellation=$8, updated_at=$9
		WHERE id = $1`,
		p.ID, p.Phone, p.Status, cols.timestamps, cols.personal,
		cols.triage, cols.consultation, cols.cancellation, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ed_patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM ed_patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *patientRepoPG) ListByStatus(ctx context.Context, statuses ...Status) ([]*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM ed_patient`
	var args []interface{}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, names)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *patientRepoPG) collect(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
