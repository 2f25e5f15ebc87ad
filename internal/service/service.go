package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hms/config"
	"hms/internal/domain"
	"hms/internal/metrics"
	"hms/internal/repository"
)

// Notifier receives appointment change events after a successful write.
// Publish must not block.
type Notifier interface {
	Publish(event domain.AppointmentEvent)
}

type Deps struct {
	Repos    *repository.Repositories
	Logger   *zap.Logger
	Config   *config.Config
	Notifier Notifier
	Metrics  *metrics.SchedulingMetrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Services struct {
	Appointment AppointmentService
	Lookup      LookupService
	Auth        AuthService
}

func NewServices(deps Deps) *Services {
	return &Services{
		Appointment: NewAppointmentService(deps.Repos.Appointment, deps.Config.Scheduling, deps.Notifier, deps.Metrics, deps.Clock, deps.Logger),
		Lookup:      NewLookupService(deps.Repos.Lookup, deps.Logger),
		Auth:        NewAuthService(deps.Config.JWT, deps.Logger),
	}
}

type AppointmentService interface {
	Validate(ctx context.Context, candidate *domain.Appointment, isUpdate bool) error
	DryRun(ctx context.Context, createdBy int64, dto domain.ValidateAppointmentDTO) error
	Create(ctx context.Context, createdBy int64, dto domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	Options() domain.AppointmentOptions
}

type LookupService interface {
	Patients(ctx context.Context) ([]domain.Option, error)
	Staff(ctx context.Context) ([]domain.Option, error)
	Rooms(ctx context.Context) ([]domain.Option, error)
}

type AuthService interface {
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}
