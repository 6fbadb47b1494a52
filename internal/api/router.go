// Package api wires the HTTP surface of the scheduling service.
//
//	@title						Healthcare Scheduling API
//	@version					1.0
//	@description				Role-based appointment scheduling for patients, doctors and administrators.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/carepoint/scheduling-api/docs"
	"github.com/carepoint/scheduling-api/internal/api/handler"
	"github.com/carepoint/scheduling-api/internal/api/middleware"
	"github.com/carepoint/scheduling-api/internal/core/authz"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Auth         ports.AuthService
	Patients     ports.PatientService
	Doctors      ports.DoctorService
	Appointments ports.AppointmentService
	HealthChecks []handler.DependencyCheck
	Logger       zerolog.Logger

	RequestTimeout time.Duration
	AuthRateLimit  middleware.RateLimitConfig
	// Metrics registers the Prometheus middleware and /metrics. The collectors
	// live in the default registry, so only one router per process may set it.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Logger(d.Logger))
	e.Use(middleware.Recovery(d.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	if d.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeout(d.RequestTimeout))
	}
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware("healthcare"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.HealthChecks...)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	authenticate := middleware.Authenticate(d.Auth)
	limited := middleware.RateLimit(d.AuthRateLimit)

	e.POST("/auth/register", authHandler.Register, limited)
	e.POST("/auth/login", authHandler.Login, limited)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, authenticate)

	api := e.Group("/api", authenticate)
	registerAppointmentRoutes(api.Group("/appointments"), handler.NewAppointmentHandler(d.Appointments))
	registerDoctorRoutes(api.Group("/doctors"), handler.NewDoctorHandler(d.Doctors), handler.NewAppointmentHandler(d.Appointments))
	registerPatientRoutes(api.Group("/patients"), handler.NewPatientHandler(d.Patients))

	return e
}

var gate = middleware.Require

func registerAppointmentRoutes(g *echo.Group, h *handler.AppointmentHandler) {
	g.GET("", h.List, gate(authz.ListAppointments))
	g.POST("", h.Book, gate(authz.BookAppointment))
	g.GET("/my-appointments", h.Mine, gate(authz.ListMyAppointments))
	g.GET("/patient/:id", h.ByPatient, gate(authz.ListPatientAppointments))
	g.GET("/doctor/:id", h.ByDoctor, gate(authz.ListDoctorAppointments))
	g.GET("/:id", h.Get, gate(authz.ViewAppointment))
	g.GET("/:id/history", h.History, gate(authz.ViewAppointmentHistory))
	g.PATCH("/:id/status", h.UpdateStatus, gate(authz.UpdateAppointment))
	g.PATCH("/:id/confirm", h.Confirm, gate(authz.ConfirmAppointment))
	g.PATCH("/:id/complete", h.Complete, gate(authz.CompleteAppointment))
	g.PATCH("/:id/cancel", h.Cancel, gate(authz.CancelAppointment))
	g.DELETE("/:id", h.Delete, gate(authz.DeleteAppointment))
}

func registerDoctorRoutes(g *echo.Group, h *handler.DoctorHandler, appts *handler.AppointmentHandler) {
	// administration
	g.POST("", h.Create, gate(authz.ManageDoctors))
	g.POST("/profile", h.Create, gate(authz.ManageDoctors))
	g.GET("/profiles", h.Profiles, gate(authz.ManageDoctors))
	g.PUT("/:id", h.Update, gate(authz.ManageDoctors))
	g.PUT("/profile/:id", h.Update, gate(authz.ManageDoctors))
	g.PUT("/:id/link-user/:userId", h.LinkUser, gate(authz.ManageDoctors))
	g.DELETE("/docdelete/:id", h.Delete, gate(authz.ManageDoctors))
	g.DELETE("/:id", h.Delete, gate(authz.ManageDoctors))

	// own profile
	g.GET("/my-profile", h.MyProfile, gate(authz.ManageOwnDoctor))
	g.PUT("/my-profile", h.UpdateMyProfile, gate(authz.ManageOwnDoctor))
	g.GET("/me", h.MyProfile, gate(authz.ManageOwnDoctor))

	// browsing
	g.GET("", h.List, gate(authz.BrowseDoctors))
	g.GET("/specializations", h.Specializations, gate(authz.BrowseDoctors))
	g.GET("/specialization/:specialization", h.BySpecialization, gate(authz.BrowseDoctors))
	g.GET("/clinic/:clinicName", h.ByClinic, gate(authz.BrowseDoctors))
	g.GET("/:id", h.Get, gate(authz.ViewDoctor))
	g.GET("/:id/profile", h.Get, gate(authz.ViewDoctor))

	// availability
	g.POST("/:id/availability", h.SetAvailability, gate(authz.SetAvailability))
	g.GET("/:id/availability", h.Availability, gate(authz.ViewAvailability))

	// doctor-scoped appointment decisions
	g.GET("/:id/appointments", appts.DoctorAppointments, gate(authz.ListMyAppointments))
	g.PATCH("/:id/appointments/:appointmentId/approve", appts.Approve, gate(authz.ApproveAppointment))
	g.PATCH("/:id/appointments/:appointmentId/reject", appts.Reject, gate(authz.RejectAppointment))
}

func registerPatientRoutes(g *echo.Group, h *handler.PatientHandler) {
	g.POST("", h.Create, gate(authz.CreatePatient))
	g.POST("/admin", h.Create, gate(authz.CreatePatient))
	g.GET("", h.List, gate(authz.ListPatients))
	g.GET("/me", h.Me, gate(authz.ViewOwnPatient))
	g.GET("/secure/:id", h.Get, gate(authz.ListPatients))
	g.GET("/:id", h.Get, gate(authz.ViewPatient))
	g.PUT("/:id", h.Update, gate(authz.UpdatePatient))
	g.DELETE("/:id", h.Delete, gate(authz.DeletePatient))
}
