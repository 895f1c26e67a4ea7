package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/domain"
)

type ReportController struct {
	Logger  *slog.Logger
	Service domain.ReportService
}

func NewReportController(logger *slog.Logger, svc domain.ReportService) *ReportController {
	return &ReportController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *ReportController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// actorID extracts the authenticated user ID or writes a 401.
func (c *ReportController) actorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}

// Summary godoc
// @Summary System-wide summary report
// @Description Counts of events and registrations plus derived averages. Admin only.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.SummaryReport
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/summary [get]
func (c *ReportController) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.actorID(w, r)
	if !ok {
		return
	}
	report, err := c.Service.Summary(r.Context(), userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// Detailed godoc
// @Summary Per-event attendance report
// @Description One row per event with attendance rate and capacity utilization. Optional category/date filters. Admin only.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param category query string false "Event category"
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Success 200 {object} domain.DetailedReport
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/detailed [get]
func (c *ReportController) Detailed(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.actorID(w, r)
	if !ok {
		return
	}
	filter, ok := helpers.ParseEventFilter(w, r)
	if !ok {
		return
	}
	report, err := c.Service.Detailed(r.Context(), userID, filter)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// Historical godoc
// @Summary Monthly trend report
// @Description Events, registrations, and cancellations bucketed by calendar month over the trailing six months. Admin only.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.HistoricalReport
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/historical [get]
func (c *ReportController) Historical(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.actorID(w, r)
	if !ok {
		return
	}
	report, err := c.Service.Historical(r.Context(), userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

func (c *ReportController) exportCSV(
	w http.ResponseWriter,
	r *http.Request,
	filename string,
	export func(r *http.Request, actorID int64, filter domain.EventFilter) (string, error),
) {
	userID, ok := c.actorID(w, r)
	if !ok {
		return
	}
	filter, ok := helpers.ParseEventFilter(w, r)
	if !ok {
		return
	}
	body, err := export(r, userID, filter)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteCSV(w, filename, body)
}

// ExportEvents godoc
// @Summary Export events as CSV
// @Description One row per event with its active registration count. Admin only.
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param category query string false "Event category"
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV body"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/export/events [get]
func (c *ReportController) ExportEvents(w http.ResponseWriter, r *http.Request) {
	c.exportCSV(w, r, "events.csv", func(r *http.Request, actorID int64, filter domain.EventFilter) (string, error) {
		return c.Service.ExportEventsCSV(r.Context(), actorID, filter)
	})
}

// ExportRegistrations godoc
// @Summary Export registrations as CSV
// @Description One row per registration with participant details and lifecycle status. Admin only.
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param category query string false "Event category"
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV body"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/export/registrations [get]
func (c *ReportController) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	c.exportCSV(w, r, "registrations.csv", func(r *http.Request, actorID int64, filter domain.EventFilter) (string, error) {
		return c.Service.ExportRegistrationsCSV(r.Context(), actorID, filter)
	})
}

// ExportWorkshops godoc
// @Summary Export workshop events as CSV
// @Description Events export restricted to the WORKSHOP category. Admin only.
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV body"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/export/workshops [get]
func (c *ReportController) ExportWorkshops(w http.ResponseWriter, r *http.Request) {
	c.exportCSV(w, r, "workshops.csv", func(r *http.Request, actorID int64, filter domain.EventFilter) (string, error) {
		return c.Service.ExportWorkshopsCSV(r.Context(), actorID, filter)
	})
}

// ExportAttendance godoc
// @Summary Export per-event attendance as CSV
// @Description One row per event with attendance counts and rate. Admin only.
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param category query string false "Event category"
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV body"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reports/export/attendance [get]
func (c *ReportController) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	c.exportCSV(w, r, "attendance.csv", func(r *http.Request, actorID int64, filter domain.EventFilter) (string, error) {
		return c.Service.ExportAttendanceCSV(r.Context(), actorID, filter)
	})
}
