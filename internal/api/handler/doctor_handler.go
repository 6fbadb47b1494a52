package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// DoctorHandler handles the doctor directory and availability routes.
type DoctorHandler struct {
	service ports.DoctorService
}

func NewDoctorHandler(service ports.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

func (r doctorRequest) toInput() ports.DoctorInput {
	return ports.DoctorInput{
		Name:            r.Name,
		Email:           r.Email,
		Password:        r.Password,
		PhoneNumber:     r.PhoneNumber,
		Specialization:  r.Specialization,
		Qualification:   r.Qualification,
		ExperienceYears: r.ExperienceYears,
		ClinicName:      r.ClinicName,
		ClinicAddress:   r.ClinicAddress,
		ConsultationFee: r.ConsultationFee,
		Bio:             r.Bio,
		ProfileStatus:   r.ProfileStatus,
	}
}

// Create handles POST /api/doctors and POST /api/doctors/profile.
//
// @Summary      Create a doctor profile
// @Tags         doctors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      doctorRequest  true  "Doctor profile"
// @Success      201   {object}  domain.Doctor
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/doctors [post]
func (h *DoctorHandler) Create(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	var req doctorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	d, err := h.service.Create(c.Request().Context(), ac, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// Update handles PUT /api/doctors/:id and PUT /api/doctors/profile/:id.
//
// @Summary      Update a doctor profile
// @Tags         doctors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Doctor ID"
// @Param        body  body      doctorRequest  true  "Profile changes"
// @Success      200   {object}  domain.Doctor
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/doctors/{id} [put]
func (h *DoctorHandler) Update(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req doctorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	d, err := h.service.Update(c.Request().Context(), ac, id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// LinkUser handles PUT /api/doctors/:id/link-user/:userId.
//
// @Summary      Link a doctor profile to a user account
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "Doctor ID"
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  domain.Doctor
// @Failure      404     {object}  ErrorResponse
// @Router       /api/doctors/{id}/link-user/{userId} [put]
func (h *DoctorHandler) LinkUser(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	doctorID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	d, err := h.service.LinkUser(c.Request().Context(), ac, doctorID, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Profiles handles GET /api/doctors/profiles.
//
// @Summary      List doctor profiles with filters
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        specialization  query     string  false  "Specialization contains"
// @Param        status          query     string  false  "ACTIVE, PENDING or INACTIVE"
// @Param        clinicName      query     string  false  "Clinic name contains"
// @Success      200             {array}   domain.Doctor
// @Failure      400             {object}  ErrorResponse
// @Router       /api/doctors/profiles [get]
func (h *DoctorHandler) Profiles(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	filter := domain.DoctorFilter{
		Specialization: c.QueryParam("specialization"),
		ClinicName:     c.QueryParam("clinicName"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		st, ok := domain.ParseProfileStatus(raw)
		if !ok {
			return domain.Validationf("Invalid profile status: %s", raw)
		}
		filter.Status = st
	}
	out, err := h.service.ListProfiles(c.Request().Context(), ac, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// List handles GET /api/doctors.
//
// @Summary      List doctors
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Doctor
// @Failure      403  {object}  ErrorResponse
// @Router       /api/doctors [get]
func (h *DoctorHandler) List(c echo.Context) error {
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

// Get handles GET /api/doctors/:id and GET /api/doctors/:id/profile.
//
// @Summary      Get a doctor
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Doctor ID"
// @Success      200  {object}  domain.Doctor
// @Failure      404  {object}  ErrorResponse
// @Router       /api/doctors/{id} [get]
func (h *DoctorHandler) Get(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// BySpecialization handles GET /api/doctors/specialization/:specialization.
//
// @Summary      Search doctors by specialization
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        specialization  path      string  true  "Specialization contains"
// @Success      200             {array}   domain.Doctor
// @Router       /api/doctors/specialization/{specialization} [get]
func (h *DoctorHandler) BySpecialization(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	out, err := h.service.SearchBySpecialization(c.Request().Context(), ac, c.Param("specialization"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Specializations handles GET /api/doctors/specializations.
//
// @Summary      Distinct specializations
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /api/doctors/specializations [get]
func (h *DoctorHandler) Specializations(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	out, err := h.service.Specializations(c.Request().Context(), ac)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// ByClinic handles GET /api/doctors/clinic/:clinicName.
//
// @Summary      Doctors of a clinic
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        clinicName  path      string  true  "Clinic name contains"
// @Success      200         {array}   domain.Doctor
// @Router       /api/doctors/clinic/{clinicName} [get]
func (h *DoctorHandler) ByClinic(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	out, err := h.service.ListByClinic(c.Request().Context(), ac, c.Param("clinicName"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// MyProfile handles GET /api/doctors/my-profile and GET /api/doctors/me.
//
// @Summary      Profile of the calling doctor
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Doctor
// @Failure      404  {object}  ErrorResponse
// @Router       /api/doctors/my-profile [get]
func (h *DoctorHandler) MyProfile(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	d, err := h.service.MyProfile(c.Request().Context(), ac)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// UpdateMyProfile handles PUT /api/doctors/my-profile.
//
// @Summary      Update the calling doctor's contact and clinic details
// @Tags         doctors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ownProfileRequest  true  "Profile changes"
// @Success      200   {object}  domain.Doctor
// @Failure      404   {object}  ErrorResponse
// @Router       /api/doctors/my-profile [put]
func (h *DoctorHandler) UpdateMyProfile(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	var req ownProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	d, err := h.service.UpdateMyProfile(c.Request().Context(), ac, ports.OwnProfileInput{
		PhoneNumber:   req.PhoneNumber,
		ClinicName:    req.ClinicName,
		ClinicAddress: req.ClinicAddress,
		Bio:           req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /api/doctors/:id and DELETE /api/doctors/docdelete/:id.
//
// @Summary      Delete a doctor
// @Tags         doctors
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      int  true  "Doctor ID"
// @Success      200  {string}  string
// @Failure      403  {string}  string
// @Failure      404  {string}  string
// @Failure      409  {string}  string
// @Router       /api/doctors/{id} [delete]
func (h *DoctorHandler) Delete(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	msg, err := h.service.Delete(c.Request().Context(), ac, id)
	if err != nil {
		if !isDomainError(err) {
			return err
		}
		return c.String(StatusCode(err), "Failed to delete doctor: "+domain.Message(err))
	}
	return c.String(http.StatusOK, msg)
}

// SetAvailability handles POST /api/doctors/:id/availability.
//
// @Summary      Replace a doctor's weekly availability
// @Tags         doctors
// @Accept       json
// @Produce      plain
// @Security     BearerAuth
// @Param        id    path      int                  true  "Doctor ID"
// @Param        body  body      availabilityRequest  true  "Weekly windows"
// @Success      200   {string}  string
// @Failure      400   {string}  string
// @Failure      403   {string}  string
// @Failure      404   {string}  string
// @Router       /api/doctors/{id}/availability [post]
func (h *DoctorHandler) SetAvailability(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	windows := make([]ports.AvailabilityInput, 0, len(req.Slots))
	for _, w := range req.Slots {
		available := true
		if w.Available != nil {
			available = *w.Available
		}
		windows = append(windows, ports.AvailabilityInput{
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
			Available: available,
		})
	}

	if _, err := h.service.SetAvailability(c.Request().Context(), ac, id, windows); err != nil {
		if !isDomainError(err) {
			return err
		}
		return c.String(StatusCode(err), "Failed to update availability: "+domain.Message(err))
	}
	return c.String(http.StatusOK, "Availability updated successfully")
}

// Availability handles GET /api/doctors/:id/availability.
//
// @Summary      Weekly availability of a doctor
// @Tags         doctors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Doctor ID"
// @Success      200  {array}   domain.DoctorAvailability
// @Failure      404  {object}  ErrorResponse
// @Router       /api/doctors/{id}/availability [get]
func (h *DoctorHandler) Availability(c echo.Context) error {
	ac, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.Availability(c.Request().Context(), ac, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
