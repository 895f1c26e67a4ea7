package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventregistry/internal/delivery/http/controllers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/domain"
)

// Controllers bundles the route handlers wired by NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
	Report       *controllers.ReportController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Current user
	mux.HandleFunc("GET /me", auth(c.User.GetMe))
	mux.HandleFunc("GET /me/events", auth(c.Event.ListMine))

	// User administration
	mux.HandleFunc("PUT /users/{userID}/role", auth(c.User.UpdateRole))
	mux.HandleFunc("DELETE /users/{userID}", auth(c.User.Delete))

	// Events
	mux.HandleFunc("GET /events", c.Event.List)
	mux.HandleFunc("GET /events/{eventID}", c.Event.Get)
	mux.HandleFunc("POST /events", auth(c.Event.Create))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Event.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.Delete))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Registration.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(c.Registration.Cancel))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(c.Registration.ListByEvent))
	mux.HandleFunc("POST /registrations/{registrationID}/attendance", auth(c.Registration.MarkAttended))

	// Reports
	mux.HandleFunc("GET /reports/summary", auth(c.Report.Summary))
	mux.HandleFunc("GET /reports/detailed", auth(c.Report.Detailed))
	mux.HandleFunc("GET /reports/historical", auth(c.Report.Historical))
	mux.HandleFunc("GET /reports/export/events", auth(c.Report.ExportEvents))
	mux.HandleFunc("GET /reports/export/registrations", auth(c.Report.ExportRegistrations))
	mux.HandleFunc("GET /reports/export/workshops", auth(c.Report.ExportWorkshops))
	mux.HandleFunc("GET /reports/export/attendance", auth(c.Report.ExportAttendance))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
