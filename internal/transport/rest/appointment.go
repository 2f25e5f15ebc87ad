package rest

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hms/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxOffset       = math.MaxInt32
	dateLayout      = "2006-01-02"
)

// @Summary Create appointment
// @Description Validates the fields, checks staff and room availability and books the appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Appointment"
// @Success 201 {object} successResponseBody "ID of the created appointment"
// @Failure 400 {object} errorResponseBody "Malformed request"
// @Failure 401 {object} errorResponseBody "Not authorized"
// @Failure 409 {object} errorResponseBody "Staff or room double-booked"
// @Failure 422 {object} errorResponseBody "Field violations"
// @Failure 503 {object} errorResponseBody "Availability could not be checked"
// @Security ApiKeyAuth
// @Router /appointments [post]
func (h *Handler) createAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid appointment payload", zap.Error(err))
		badRequestResponse(c, "invalid request body")
		return
	}

	id, err := h.services.Appointment.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.appointmentErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Get appointment
// @Tags Appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} domain.Appointment
// @Failure 400 {object} errorResponseBody "Invalid ID"
// @Failure 401 {object} errorResponseBody "Not authorized"
// @Failure 404 {object} errorResponseBody "Not found"
// @Security ApiKeyAuth
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		h.appointmentErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Update appointment
// @Description Replaces every editable field; creation date and creator are kept
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path int true "Appointment ID"
// @Param input body domain.UpdateAppointmentDTO true "Appointment"
// @Success 200 {object} messageResponseType
// @Failure 400 {object} errorResponseBody "Malformed request"
// @Failure 401 {object} errorResponseBody "Not authorized"
// @Failure 404 {object} errorResponseBody "Not found"
// @Failure 409 {object} errorResponseBody "Staff or room double-booked"
// @Failure 422 {object} errorResponseBody "Field violations"
// @Failure 503 {object} errorResponseBody "Availability could not be checked"
// @Security ApiKeyAuth
// @Router /appointments/{id} [put]
func (h *Handler) updateAppointment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req domain.UpdateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid appointment payload", zap.Error(err))
		badRequestResponse(c, "invalid request body")
		return
	}

	if err := h.services.Appointment.Update(c.Request.Context(), id, req); err != nil {
		h.appointmentErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "appointment updated")
}

// @Summary Delete appointment
// @Description Deletes an appointment in any status
// @Tags Appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} messageResponseType
// @Failure 400 {object} errorResponseBody "Invalid ID"
// @Failure 401 {object} errorResponseBody "Not authorized"
// @Failure 404 {object} errorResponseBody "Not found"
// @Security ApiKeyAuth
// @Router /appointments/{id} [delete]
func (h *Handler) deleteAppointment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.services.Appointment.Delete(c.Request.Context(), id); err != nil {
		h.appointmentErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "appointment deleted")
}

// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param staff_id query int false "Staff ID"
// @Param room_id query int false "Room ID"
// @Param patient_id query int false "Patient ID"
// @Param status query string false "Status"
// @Param from query string false "Start of range, RFC3339 or YYYY-MM-DD"
// @Param to query string false "End of range (exclusive), RFC3339 or YYYY-MM-DD (whole day)"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} paginatedResponse
// @Failure 400 {object} errorResponseBody "Invalid filter"
// @Failure 401 {object} errorResponseBody "Not authorized"
// @Security ApiKeyAuth
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	filter, page, pageSize, err := parseAppointmentFilter(c)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	paginatedSuccessResponse(c, appointments, total, page, pageSize)
}

// @Summary Validate appointment
// @Description Dry run of field validation and conflict detection; nothing is saved
// @Tags Appointments
// @Accept json
// @Produce json
// @Param input body domain.ValidateAppointmentDTO true "Candidate; appointment_id validates as an edit"
// @Success 200 {object} successResponseBody
// @Failure 400 {object} errorResponseBody "Malformed request"
// @Failure 404 {object} errorResponseBody "Edited appointment not found"
// @Failure 409 {object} errorResponseBody "Staff or room double-booked"
// @Failure 422 {object} errorResponseBody "Field violations"
// @Failure 503 {object} errorResponseBody "Availability could not be checked"
// @Security ApiKeyAuth
// @Router /appointments/validate [post]
func (h *Handler) validateAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.ValidateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "invalid request body")
		return
	}

	if err := h.services.Appointment.DryRun(c.Request.Context(), userID, req); err != nil {
		h.appointmentErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"valid": true})
}

// @Summary Appointment options
// @Description Allowed types, statuses and bounds
// @Tags Appointments
// @Produce json
// @Success 200 {object} domain.AppointmentOptions
// @Security ApiKeyAuth
// @Router /appointments/options [get]
func (h *Handler) getAppointmentOptions(c *gin.Context) {
	successResponse(c, http.StatusOK, h.services.Appointment.Options())
}

// appointmentErrorResponse maps workflow errors to status codes: violations
// 422, conflicts 409, an unavailable check 503, unknown ids 404.
func (h *Handler) appointmentErrorResponse(c *gin.Context, err error) {
	var invalid *domain.ValidationError
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &invalid):
		validationErrorResponse(c, invalid.Violations)
	case errors.As(err, &conflict):
		conflictResponse(c, string(conflict.Reason), conflict.Reason.Message())
	case errors.Is(err, domain.ErrConflictCheckUnavailable):
		errorResponse(c, http.StatusServiceUnavailable, "availability could not be checked, please try again")
	case errors.Is(err, domain.ErrNotFound):
		notFoundResponse(c, "appointment not found")
	default:
		h.logger.Error("appointment request failed",
			zap.String("request_id", c.GetString(requestIDCtx)),
			zap.Error(err))
		internalServerErrorResponse(c)
	}
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "invalid ID format")
		return 0, false
	}
	return id, true
}

func parseAppointmentFilter(c *gin.Context) (domain.AppointmentFilter, int, int, error) {
	var filter domain.AppointmentFilter

	for param, target := range map[string]**int64{
		"staff_id":   &filter.StaffID,
		"room_id":    &filter.RoomID,
		"patient_id": &filter.PatientID,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, 0, 0, errors.New("invalid " + param)
		}
		*target = &id
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.AppointmentStatus(raw)
		if !status.IsValid() {
			return filter, 0, 0, errors.New("invalid status")
		}
		filter.Status = &status
	}

	if raw := c.Query("from"); raw != "" {
		from, _, err := parseTimeParam(raw)
		if err != nil {
			return filter, 0, 0, errors.New("invalid from")
		}
		filter.StartDate = &from
	}

	if raw := c.Query("to"); raw != "" {
		to, dateOnly, err := parseTimeParam(raw)
		if err != nil {
			return filter, 0, 0, errors.New("invalid to")
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
		filter.EndDate = &to
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page-1 > maxOffset/pageSize {
		return filter, 0, 0, errors.New("invalid page")
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	return filter, page, pageSize, nil
}

// parseTimeParam accepts RFC3339 or a bare date, reporting which it got.
func parseTimeParam(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
