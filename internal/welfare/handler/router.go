package handler

import (
	"github.com/go-chi/chi/v5"

	authhandler "github.com/mesias/mswdo-backend/internal/auth/handler"
	"github.com/mesias/mswdo-backend/internal/auth/jwt"
	"github.com/mesias/mswdo-backend/internal/auth/middleware"
)

// officeOnly guards the dashboard reports.
var officeOnly = middleware.RequireRole("mswdo", "admin")

// API groups every handler mounted under /api.
type API struct {
	JWT           *jwt.Manager
	Auth          *authhandler.AuthHandler
	Users         *UserHandler
	Beneficiaries *BeneficiaryHandler
	Applications  *ApplicationHandler
	Programs      *ProgramHandler
	Notifications *NotificationHandler
	Deceased      *DeceasedHandler
	Upload        *UploadHandler
}

// Mount registers the API routes on r. Everything except signup and
// login requires a bearer token; role and scope rules are enforced by the
// services.
func (api *API) Mount(r chi.Router) {
	r.Post("/auth/signup", api.Auth.Signup)
	r.Post("/auth/login", api.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(api.JWT))

		r.Get("/auth/me", api.Auth.Me)
		r.Route("/users", api.Users.Routes)
		r.Route("/beneficiaries", api.Beneficiaries.Routes)
		r.Route("/applications", api.Applications.Routes)
		r.Route("/programs", api.Programs.Routes)
		r.Route("/notifications", api.Notifications.Routes)
		r.Route("/deceased-reports", api.Deceased.Routes)
		if api.Upload != nil {
			r.Post("/upload", api.Upload.Upload)
		}
	})
}
