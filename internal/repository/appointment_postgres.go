package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hms/internal/domain"
)

const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"

	staffOverlapConstraint = "appointments_staff_no_overlap"
	roomOverlapConstraint  = "appointments_room_no_overlap"
)

const appointmentColumns = `id, patient_id, staff_id, room_id, appointment_date, duration, type, status, reason, notes, created_date, created_by`

type AppointmentRepo struct {
	db DB
}

func NewAppointmentRepository(db DB) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, a domain.Appointment) (int64, error) {
	query := `
		INSERT INTO appointments (patient_id, staff_id, room_id, appointment_date, duration, type, status, reason, notes, created_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		a.PatientID,
		a.StaffID,
		a.RoomID,
		a.AppointmentDate.UTC(),
		a.Duration,
		string(a.Type),
		string(a.Status),
		a.Reason,
		a.Notes,
		a.CreatedDate.UTC(),
		a.CreatedBy,
	).Scan(&id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("error creating appointment: %w", err)
	}

	return id, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment domain.Appointment
	err := scanAppointment(r.db.QueryRow(ctx, query, id), &appointment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointment with ID %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting appointment: %w", err)
	}

	return &appointment, nil
}

// Update rewrites every editable column. created_date and created_by are
// set once at insert and never updated.
func (r *AppointmentRepo) Update(ctx context.Context, a domain.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, staff_id = $2, room_id = $3, appointment_date = $4, duration = $5,
		    type = $6, status = $7, reason = $8, notes = $9
		WHERE id = $10
	`

	tag, err := r.db.Exec(ctx, query,
		a.PatientID,
		a.StaffID,
		a.RoomID,
		a.AppointmentDate.UTC(),
		a.Duration,
		string(a.Type),
		string(a.Status),
		a.Reason,
		a.Notes,
		a.ID,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("error updating appointment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointment with ID %d: %w", a.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting appointment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointment with ID %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *AppointmentRepo) StaffAppointments(ctx context.Context, staffID int64, window domain.Interval) ([]domain.Appointment, error) {
	return r.overlapping(ctx, "staff_id", staffID, window)
}

func (r *AppointmentRepo) RoomAppointments(ctx context.Context, roomID int64, window domain.Interval) ([]domain.Appointment, error) {
	return r.overlapping(ctx, "room_id", roomID, window)
}

func (r *AppointmentRepo) overlapping(ctx context.Context, column string, id int64, window domain.Interval) ([]domain.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments
		WHERE %s = $1
		AND appointment_date < $3
		AND appointment_end > $2
		ORDER BY appointment_date
	`, appointmentColumns, column)

	rows, err := r.db.Query(ctx, query, id, window.Start.UTC(), window.End.UTC())
	if err != nil {
		return nil, fmt.Errorf("error querying overlapping appointments: %w", err)
	}

	return collectAppointments(rows)
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	conditions, args := filterConditions(filter)

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY appointment_date DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}

	return collectAppointments(rows)
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	conditions, args := filterConditions(filter)

	query := `SELECT COUNT(*) FROM appointments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting appointments: %w", err)
	}

	return count, nil
}

func filterConditions(filter domain.AppointmentFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", argCount))
		args = append(args, *filter.StaffID)
		argCount++
	}

	if filter.RoomID != nil {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", argCount))
		args = append(args, *filter.RoomID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, string(*filter.Status))
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("appointment_date >= $%d", argCount))
		args = append(args, filter.StartDate.UTC())
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("appointment_date < $%d", argCount))
		args = append(args, filter.EndDate.UTC())
	}

	return conditions, args
}

func scanAppointment(row pgx.Row, a *domain.Appointment) error {
	return row.Scan(
		&a.ID,
		&a.PatientID,
		&a.StaffID,
		&a.RoomID,
		&a.AppointmentDate,
		&a.Duration,
		&a.Type,
		&a.Status,
		&a.Reason,
		&a.Notes,
		&a.CreatedDate,
		&a.CreatedBy,
	)
}

func collectAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var appointment domain.Appointment
		if err := scanAppointment(rows, &appointment); err != nil {
			return nil, fmt.Errorf("error scanning appointment row: %w", err)
		}
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointment rows: %w", err)
	}

	return appointments, nil
}

// mapWriteError turns constraint violations into domain errors: exclusion
// violations become conflicts, dangling references become violations.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case pgExclusionViolation:
		switch pgErr.ConstraintName {
		case staffOverlapConstraint:
			return &domain.ConflictError{Reason: domain.ConflictStaffDoubleBooked}
		case roomOverlapConstraint:
			return &domain.ConflictError{Reason: domain.ConflictRoomDoubleBooked}
		}
	case pgForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "appointments_patient_id_fkey":
			return &domain.ValidationError{Violations: []string{"Selected Patient does not exist."}}
		case "appointments_staff_id_fkey":
			return &domain.ValidationError{Violations: []string{"Selected Staff does not exist."}}
		case "appointments_room_id_fkey":
			return &domain.ValidationError{Violations: []string{"Selected Room does not exist."}}
		}
	}

	return nil
}
