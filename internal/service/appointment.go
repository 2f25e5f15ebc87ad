package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hms/config"
	"hms/internal/domain"
	"hms/internal/metrics"
	"hms/internal/repository"
	"hms/internal/scheduling"
	"hms/pkg/validator"
)

type AppointmentServiceImpl struct {
	repo     repository.AppointmentRepository
	detector *scheduling.Detector
	cfg      config.SchedulingConfig
	notifier Notifier
	metrics  *metrics.SchedulingMetrics
	now      func() time.Time
	logger   *zap.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	cfg config.SchedulingConfig,
	notifier Notifier,
	m *metrics.SchedulingMetrics,
	clock func() time.Time,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	if clock == nil {
		clock = time.Now
	}

	return &AppointmentServiceImpl{
		repo:     repo,
		detector: scheduling.NewDetector(repo),
		cfg:      cfg,
		notifier: notifier,
		metrics:  m,
		now:      clock,
		logger:   logger,
	}
}

// Validate runs the field validator and then the conflict detector against
// candidate without persisting anything. It returns nil, a
// *domain.ValidationError, a *domain.ConflictError or an error wrapping
// domain.ErrConflictCheckUnavailable.
func (s *AppointmentServiceImpl) Validate(ctx context.Context, candidate *domain.Appointment, isUpdate bool) error {
	if err := scheduling.Validate(candidate, s.now()); err != nil {
		s.metrics.ObserveOutcome(metrics.OutcomeInvalid)
		return err
	}

	checkCtx := ctx
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	started := time.Now()
	err := s.detector.Check(checkCtx, candidate, isUpdate)
	s.metrics.ObserveConflictCheck(time.Since(started))

	if err != nil {
		s.observeRejection(err)
		if errors.Is(err, domain.ErrConflictCheckUnavailable) {
			s.logger.Error("conflict check failed",
				zap.Int64("appointment_id", candidate.ID),
				zap.Int64("staff_id", candidate.StaffID),
				zap.Int64("room_id", candidate.RoomID),
				zap.Error(err),
			)
		}
		return err
	}

	s.metrics.ObserveOutcome(metrics.OutcomeAccepted)
	return nil
}

func (s *AppointmentServiceImpl) DryRun(ctx context.Context, createdBy int64, dto domain.ValidateAppointmentDTO) error {
	if dto.AppointmentID <= 0 {
		candidate := s.newCandidate(createdBy, dto.CreateAppointmentDTO)
		return s.Validate(ctx, &candidate, false)
	}

	existing, err := s.repo.GetByID(ctx, dto.AppointmentID)
	if err != nil {
		return err
	}

	candidate := s.editedCandidate(existing, domain.UpdateAppointmentDTO{
		PatientID:       dto.PatientID,
		StaffID:         dto.StaffID,
		RoomID:          dto.RoomID,
		AppointmentDate: dto.AppointmentDate,
		Duration:        dto.Duration,
		Type:            dto.Type,
		Status:          dto.Status,
		Reason:          dto.Reason,
		Notes:           dto.Notes,
	})
	return s.Validate(ctx, &candidate, true)
}

func (s *AppointmentServiceImpl) Create(ctx context.Context, createdBy int64, dto domain.CreateAppointmentDTO) (int64, error) {
	candidate := s.newCandidate(createdBy, dto)

	if err := s.Validate(ctx, &candidate, false); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return 0, s.persistError("create", candidate, err)
	}
	candidate.ID = id

	s.logger.Info("appointment created",
		zap.Int64("appointment_id", id),
		zap.Int64("staff_id", candidate.StaffID),
		zap.Int64("room_id", candidate.RoomID),
		zap.Int64("created_by", candidate.CreatedBy),
	)
	s.publish(domain.AppointmentCreated, candidate)

	return id, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("error getting appointment", zap.Int64("appointment_id", id), zap.Error(err))
		}
		return nil, err
	}

	return appointment, nil
}

// Update replaces every editable field of an existing appointment. The ID,
// CreatedDate and CreatedBy of the stored row are kept.
func (s *AppointmentServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("error loading appointment for update", zap.Int64("appointment_id", id), zap.Error(err))
		}
		return err
	}

	candidate := s.editedCandidate(existing, dto)

	if err := s.Validate(ctx, &candidate, true); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, candidate); err != nil {
		return s.persistError("update", candidate, err)
	}

	s.logger.Info("appointment updated",
		zap.Int64("appointment_id", id),
		zap.Int64("staff_id", candidate.StaffID),
		zap.Int64("room_id", candidate.RoomID),
	)
	s.publish(domain.AppointmentUpdated, candidate)

	return nil
}

// Delete removes an appointment regardless of its status.
func (s *AppointmentServiceImpl) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("error loading appointment for delete", zap.Int64("appointment_id", id), zap.Error(err))
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("error deleting appointment", zap.Int64("appointment_id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("appointment deleted", zap.Int64("appointment_id", id))
	s.publish(domain.AppointmentDeleted, *existing)

	return nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("error listing appointments", zap.Error(err))
		return nil, 0, fmt.Errorf("error listing appointments: %w", err)
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("error counting appointments", zap.Error(err))
		return nil, 0, fmt.Errorf("error counting appointments: %w", err)
	}

	return appointments, total, nil
}

func (s *AppointmentServiceImpl) Options() domain.AppointmentOptions {
	return domain.AppointmentOptions{
		Types:       append([]domain.AppointmentType(nil), domain.AllowedTypes...),
		Statuses:    append([]domain.AppointmentStatus(nil), domain.AllowedStatuses...),
		MinDuration: domain.MinDuration,
		MaxDuration: domain.MaxDuration,
		MaxReason:   domain.MaxReasonLen,
		MaxNotes:    domain.MaxNotesLen,
	}
}

// newCandidate builds a fresh appointment from a create request. A creator
// named in the request wins over the authenticated user.
func (s *AppointmentServiceImpl) newCandidate(createdBy int64, dto domain.CreateAppointmentDTO) domain.Appointment {
	if dto.CreatedBy != 0 {
		createdBy = dto.CreatedBy
	}

	return domain.Appointment{
		PatientID:       dto.PatientID,
		StaffID:         dto.StaffID,
		RoomID:          dto.RoomID,
		AppointmentDate: dto.AppointmentDate,
		Duration:        int(dto.Duration),
		Type:            domain.AppointmentType(dto.Type),
		Status:          domain.AppointmentStatus(dto.Status),
		Reason:          s.text(dto.Reason, domain.MaxReasonLen),
		Notes:           s.text(dto.Notes, domain.MaxNotesLen),
		CreatedDate:     s.now().UTC(),
		CreatedBy:       createdBy,
	}
}

func (s *AppointmentServiceImpl) editedCandidate(existing *domain.Appointment, dto domain.UpdateAppointmentDTO) domain.Appointment {
	return domain.Appointment{
		ID:              existing.ID,
		PatientID:       dto.PatientID,
		StaffID:         dto.StaffID,
		RoomID:          dto.RoomID,
		AppointmentDate: dto.AppointmentDate,
		Duration:        int(dto.Duration),
		Type:            domain.AppointmentType(dto.Type),
		Status:          domain.AppointmentStatus(dto.Status),
		Reason:          s.text(dto.Reason, domain.MaxReasonLen),
		Notes:           s.text(dto.Notes, domain.MaxNotesLen),
		CreatedDate:     existing.CreatedDate,
		CreatedBy:       existing.CreatedBy,
	}
}

func (s *AppointmentServiceImpl) text(value string, max int) string {
	value = validator.NormalizeText(value)
	if s.cfg.TruncateLongText {
		value = validator.Truncate(value, max)
	}
	return value
}

// persistError classifies a failed write. The storage layer rejects a
// conflicting row that slipped past the detector, so a conflict here is
// reported exactly like one found by the check.
func (s *AppointmentServiceImpl) persistError(op string, a domain.Appointment, err error) error {
	var conflict *domain.ConflictError
	var invalid *domain.ValidationError

	switch {
	case errors.As(err, &conflict):
		s.observeRejection(err)
		s.logger.Warn("storage rejected overlapping appointment",
			zap.String("op", op),
			zap.Int64("appointment_id", a.ID),
			zap.Int64("staff_id", a.StaffID),
			zap.Int64("room_id", a.RoomID),
			zap.String("reason", string(conflict.Reason)),
		)
		return err
	case errors.As(err, &invalid), errors.Is(err, domain.ErrNotFound):
		return err
	}

	s.logger.Error("error persisting appointment",
		zap.String("op", op),
		zap.Int64("appointment_id", a.ID),
		zap.Int64("staff_id", a.StaffID),
		zap.Int64("room_id", a.RoomID),
		zap.Error(err),
	)
	return fmt.Errorf("error saving appointment: %w", err)
}

func (s *AppointmentServiceImpl) observeRejection(err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict) && conflict.Reason == domain.ConflictStaffDoubleBooked:
		s.metrics.ObserveOutcome(metrics.OutcomeStaffConflict)
	case errors.As(err, &conflict):
		s.metrics.ObserveOutcome(metrics.OutcomeRoomConflict)
	default:
		s.metrics.ObserveOutcome(metrics.OutcomeCheckFailed)
	}
}

func (s *AppointmentServiceImpl) publish(eventType domain.AppointmentEventType, a domain.Appointment) {
	if s.notifier == nil {
		return
	}

	window := a.Interval()
	s.notifier.Publish(domain.AppointmentEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		AppointmentID: a.ID,
		StaffID:       a.StaffID,
		RoomID:        a.RoomID,
		Start:         &window.Start,
		End:           &window.End,
		Timestamp:     s.now().UTC(),
	})
}
