package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// AppointmentHandler handles HTTP requests for the appointment workflow.
type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// Book handles POST /api/appointments.
//
// A patient always books for themselves; patientId in the body is ignored.
// An administrator must name the patient.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookAppointmentRequest  true  "Booking details"
// @Success      201   {object}  domain.Appointment
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/appointments [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	var req bookAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.service.BookFor(c.Request().Context(), ac, ports.BookAppointmentInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.AppointmentDate,
		Time:      req.AppointmentTime,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// List handles GET /api/appointments.
//
// @Summary      List appointments
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        start      query     string  false  "First date (YYYY-MM-DD)"
// @Param        end        query     string  false  "Last date (YYYY-MM-DD)"
// @Param        status     query     string  false  "Status filter"
// @Param        doctorId   query     int     false  "Doctor filter"
// @Param        patientId  query     int     false  "Patient filter"
// @Success      200        {array}   domain.Appointment
// @Failure      400        {object}  ErrorResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /api/appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}

	var filter domain.AppointmentFilter
	if raw := c.QueryParam("status"); raw != "" {
		st, ok := domain.ParseStatus(raw)
		if !ok {
			return domain.Validationf("Invalid status: %s", raw)
		}
		filter.Status = st
	}
	if filter.DoctorID, err = queryID(c, "doctorId"); err != nil {
		return err
	}
	if filter.PatientID, err = queryID(c, "patientId"); err != nil {
		return err
	}
	filter.StartDate, filter.EndDate = c.QueryParam("start"), c.QueryParam("end")

	ctx := c.Request().Context()
	var out []*domain.Appointment
	rangeOnly := filter.Status == "" && filter.DoctorID == 0 && filter.PatientID == 0
	if rangeOnly && (filter.StartDate != "" || filter.EndDate != "") {
		out, err = h.service.GetByDateRange(ctx, ac, filter.StartDate, filter.EndDate)
	} else {
		out, err = h.service.List(ctx, ac, filter)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Mine handles GET /api/appointments/my-appointments.
//
// @Summary      Appointments of the caller
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Appointment
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/appointments/my-appointments [get]
func (h *AppointmentHandler) Mine(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	out, err := h.service.GetMine(c.Request().Context(), ac)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/appointments/:id.
//
// @Summary      Get an appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  domain.Appointment
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/appointments/{id} [get]
func (h *AppointmentHandler) Get(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.service.GetByID(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// ByPatient handles GET /api/appointments/patient/:id.
//
// @Summary      Appointments of a patient
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Patient ID"
// @Success      200  {array}   domain.Appointment
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/appointments/patient/{id} [get]
func (h *AppointmentHandler) ByPatient(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.GetByPatientID(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// ByDoctor handles GET /api/appointments/doctor/:id.
//
// @Summary      Appointments of a doctor
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Doctor ID"
// @Success      200  {array}   domain.Appointment
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/appointments/doctor/{id} [get]
func (h *AppointmentHandler) ByDoctor(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.GetByDoctorID(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// History handles GET /api/appointments/:id/history.
//
// @Summary      Audit trail of an appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {array}   domain.AppointmentEvent
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/appointments/{id}/history [get]
func (h *AppointmentHandler) History(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.History(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus handles PATCH /api/appointments/:id/status.
//
// @Summary      Move an appointment to a new status
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Appointment ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Appointment
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.service.UpdateStatus(c.Request().Context(), ac, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Confirm handles PATCH /api/appointments/:id/confirm.
//
// @Summary      Confirm an appointment
// @Tags         appointments
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {string}  string
// @Failure      400  {string}  string
// @Failure      403  {string}  string
// @Failure      404  {string}  string
// @Router       /api/appointments/{id}/confirm [patch]
func (h *AppointmentHandler) Confirm(c echo.Context) error {
	return h.transition(c, "confirm", func(ac domain.AuthContext, id int64) (string, error) {
		return h.service.Confirm(c.Request().Context(), ac, id)
	})
}

// Complete handles PATCH /api/appointments/:id/complete.
//
// @Summary      Complete an appointment
// @Tags         appointments
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {string}  string
// @Failure      400  {string}  string
// @Failure      403  {string}  string
// @Failure      404  {string}  string
// @Router       /api/appointments/{id}/complete [patch]
func (h *AppointmentHandler) Complete(c echo.Context) error {
	return h.transition(c, "complete", func(ac domain.AuthContext, id int64) (string, error) {
		return h.service.Complete(c.Request().Context(), ac, id)
	})
}

// Cancel handles PATCH /api/appointments/:id/cancel.
//
// @Summary      Cancel an appointment
// @Tags         appointments
// @Produce      plain
// @Security     BearerAuth
// @Param        id      path      int     true   "Appointment ID"
// @Param        reason  query     string  false  "Cancellation reason"
// @Success      200     {string}  string
// @Failure      400     {string}  string
// @Failure      403     {string}  string
// @Failure      404     {string}  string
// @Router       /api/appointments/{id}/cancel [patch]
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	return h.transition(c, "cancel", func(ac domain.AuthContext, id int64) (string, error) {
		return h.service.Cancel(c.Request().Context(), ac, id, c.QueryParam("reason"))
	})
}

func (h *AppointmentHandler) transition(c echo.Context, verb string, apply func(domain.AuthContext, int64) (string, error)) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return textOutcome(c, verb, "", err)
	}
	msg, err := apply(ac, id)
	return textOutcome(c, verb, msg, err)
}

// Delete handles DELETE /api/appointments/:id.
//
// @Summary      Delete an appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), ac, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Appointment deleted successfully"})
}

// DoctorAppointments handles GET /api/doctors/:id/appointments.
//
// @Summary      Appointments of the calling doctor
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Doctor ID"
// @Success      200  {array}   domain.Appointment
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/doctors/{id}/appointments [get]
func (h *AppointmentHandler) DoctorAppointments(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.ListForDoctor(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Approve handles PATCH /api/doctors/:id/appointments/:appointmentId/approve.
//
// @Summary      Approve an appointment as its doctor
// @Tags         doctors
// @Produce      plain
// @Security     BearerAuth
// @Param        id             path      int  true  "Doctor ID"
// @Param        appointmentId  path      int  true  "Appointment ID"
// @Success      200            {string}  string
// @Failure      400            {string}  string
// @Failure      403            {string}  string
// @Router       /api/doctors/{id}/appointments/{appointmentId}/approve [patch]
func (h *AppointmentHandler) Approve(c echo.Context) error {
	return h.doctorDecision(c, "approve", func(ac domain.AuthContext, doctorID, id int64) (string, error) {
		return h.service.Approve(c.Request().Context(), ac, doctorID, id)
	})
}

// Reject handles PATCH /api/doctors/:id/appointments/:appointmentId/reject.
//
// @Summary      Reject an appointment as its doctor
// @Tags         doctors
// @Produce      plain
// @Security     BearerAuth
// @Param        id             path      int     true   "Doctor ID"
// @Param        appointmentId  path      int     true   "Appointment ID"
// @Param        reason         query     string  false  "Rejection reason"
// @Success      200            {string}  string
// @Failure      400            {string}  string
// @Failure      403            {string}  string
// @Router       /api/doctors/{id}/appointments/{appointmentId}/reject [patch]
func (h *AppointmentHandler) Reject(c echo.Context) error {
	return h.doctorDecision(c, "reject", func(ac domain.AuthContext, doctorID, id int64) (string, error) {
		return h.service.Reject(c.Request().Context(), ac, doctorID, id, c.QueryParam("reason"))
	})
}

func (h *AppointmentHandler) doctorDecision(c echo.Context, verb string, apply func(domain.AuthContext, int64, int64) (string, error)) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	doctorID, err := pathID(c, "id")
	if err != nil {
		return textOutcome(c, verb, "", err)
	}
	id, err := pathID(c, "appointmentId")
	if err != nil {
		return textOutcome(c, verb, "", err)
	}
	msg, err := apply(ac, doctorID, id)
	return textOutcome(c, verb, msg, err)
}
