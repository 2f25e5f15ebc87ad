package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Patient options
// @Description Patients for appointment pickers
// @Tags Lookups
// @Produce json
// @Success 200 {array} domain.Option
// @Failure 401 {object} errorResponseBody
// @Failure 500 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /lookups/patients [get]
func (h *Handler) getPatientOptions(c *gin.Context) {
	options, err := h.services.Lookup.Patients(c.Request.Context())
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, options)
}

// @Summary Staff options
// @Description Active staff members for appointment pickers
// @Tags Lookups
// @Produce json
// @Success 200 {array} domain.Option
// @Failure 401 {object} errorResponseBody
// @Failure 500 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /lookups/staff [get]
func (h *Handler) getStaffOptions(c *gin.Context) {
	options, err := h.services.Lookup.Staff(c.Request.Context())
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, options)
}

// @Summary Room options
// @Tags Lookups
// @Produce json
// @Success 200 {array} domain.Option
// @Failure 401 {object} errorResponseBody
// @Failure 500 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /lookups/rooms [get]
func (h *Handler) getRoomOptions(c *gin.Context) {
	options, err := h.services.Lookup.Rooms(c.Request.Context())
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, options)
}
