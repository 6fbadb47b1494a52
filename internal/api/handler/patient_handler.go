package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// PatientHandler handles the patient directory routes.
type PatientHandler struct {
	service ports.PatientService
}

func NewPatientHandler(service ports.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// Create handles POST /api/patients and POST /api/patients/admin.
//
// @Summary      Create a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPatientRequest  true  "Patient details"
// @Success      201   {object}  domain.Patient
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/patients [post]
func (h *PatientHandler) Create(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	var req createPatientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), ac, ports.CreatePatientInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /api/patients.
//
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Patient
// @Failure      403  {object}  ErrorResponse
// @Router       /api/patients [get]
func (h *PatientHandler) List(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	out, err := h.service.List(c.Request().Context(), ac)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/patients/:id and GET /api/patients/secure/:id.
//
// @Summary      Get a patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Patient ID"
// @Success      200  {object}  domain.Patient
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/patients/{id} [get]
func (h *PatientHandler) Get(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Me handles GET /api/patients/me.
//
// @Summary      Record of the calling patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Patient
// @Failure      404  {object}  ErrorResponse
// @Router       /api/patients/me [get]
func (h *PatientHandler) Me(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	p, err := h.service.Me(c.Request().Context(), ac)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /api/patients/:id.
//
// @Summary      Update a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Patient ID"
// @Param        body  body      updatePatientRequest  true  "Changes; empty fields are kept"
// @Success      200   {object}  domain.Patient
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/patients/{id} [put]
func (h *PatientHandler) Update(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updatePatientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), ac, id, ports.UpdatePatientInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/patients/:id.
//
// @Summary      Delete a patient
// @Tags         patients
// @Security     BearerAuth
// @Param        id   path  int  true  "Patient ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/patients/{id} [delete]
func (h *PatientHandler) Delete(c echo.Context) error {
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
	return c.NoContent(http.StatusNoContent)
}
