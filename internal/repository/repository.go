package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hms/internal/domain"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	Appointment AppointmentRepository
	Lookup      LookupRepository
}

func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Appointment: NewAppointmentRepository(db),
		Lookup:      NewLookupRepository(db),
	}
}

// AppointmentRepository persists appointments. Create and Update must reject
// a write that would double-book a staff member or room even if the caller's
// conflict check passed; the Postgres implementation relies on exclusion
// constraints and reports violations as *domain.ConflictError.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment domain.Appointment) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, appointment domain.Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)

	StaffAppointments(ctx context.Context, staffID int64, window domain.Interval) ([]domain.Appointment, error)
	RoomAppointments(ctx context.Context, roomID int64, window domain.Interval) ([]domain.Appointment, error)
}

type LookupRepository interface {
	Patients(ctx context.Context) ([]domain.Option, error)
	ActiveStaff(ctx context.Context) ([]domain.Option, error)
	Rooms(ctx context.Context) ([]domain.Option, error)
}
