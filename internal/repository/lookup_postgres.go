package repository

import (
	"context"
	"fmt"

	"hms/internal/domain"
)

type LookupRepo struct {
	db DB
}

func NewLookupRepository(db DB) *LookupRepo {
	return &LookupRepo{
		db: db,
	}
}

func (r *LookupRepo) Patients(ctx context.Context) ([]domain.Option, error) {
	query := `
		SELECT id, patient_code || ' - ' || first_name || ' ' || last_name
		FROM patients
		ORDER BY last_name, first_name
	`
	return r.options(ctx, query)
}

// ActiveStaff lists only staff members still marked active.
func (r *LookupRepo) ActiveStaff(ctx context.Context) ([]domain.Option, error) {
	query := `
		SELECT id, first_name || ' ' || last_name
		FROM staff
		WHERE is_active
		ORDER BY first_name, last_name
	`
	return r.options(ctx, query)
}

func (r *LookupRepo) Rooms(ctx context.Context) ([]domain.Option, error) {
	query := `
		SELECT id, room_number || ' (' || room_type || ')'
		FROM rooms
		ORDER BY room_number
	`
	return r.options(ctx, query)
}

func (r *LookupRepo) options(ctx context.Context, query string) ([]domain.Option, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying options: %w", err)
	}
	defer rows.Close()

	options := make([]domain.Option, 0)
	for rows.Next() {
		var option domain.Option
		if err := rows.Scan(&option.ID, &option.Display); err != nil {
			return nil, fmt.Errorf("error scanning option: %w", err)
		}
		options = append(options, option)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}

	return options, nil
}
