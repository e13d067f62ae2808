// Package api exposes the registration wizard over HTTP for the frontend
// form and the admin listing.
package api

import (
	"log/slog"
	"net/http"

	"github.com/soumya-corp/sammelan-registration/registration"
)

type Environment string

const (
	LOCAL Environment = "LOCAL"
	PROD  Environment = "PROD"
)

type DB interface {
	registration.Repository
}

type API struct {
	wizard        *registration.Wizard
	db            DB
	logger        *slog.Logger
	env           Environment
	allowedOrigin string
}

func NewAPI(wizard *registration.Wizard, db DB, logger *slog.Logger, env Environment, allowedOrigin string) *API {
	return &API{
		wizard:        wizard,
		db:            db,
		logger:        logger,
		env:           env,
		allowedOrigin: allowedOrigin,
	}
}

// Handler returns the full HTTP handler: the routed endpoints wrapped in the
// middleware stack, outermost last.
func (a *API) Handler() http.Handler {
	r := http.NewServeMux()

	r.HandleFunc("POST /v1/lookup", a.postLookup)
	r.HandleFunc("PUT /v1/registrations/{phoneNumber}/personal-info", a.putPersonalInfo)
	r.HandleFunc("PUT /v1/registrations/{phoneNumber}/travel-info", a.putTravelInfo)
	r.HandleFunc("PUT /v1/registrations/{phoneNumber}/guests", a.putGuests)
	r.HandleFunc("POST /v1/registrations/{phoneNumber}/checkout", a.postCheckout)
	r.HandleFunc("POST /v1/registrations/{phoneNumber}/payment", a.postPayment)
	r.HandleFunc("POST /v1/registrations/{phoneNumber}/payment/failure", a.postPaymentFailure)
	r.HandleFunc("GET /v1/registrations", a.getRegistrations)

	return useMiddlewares(r,
		a.loggingMiddleware(),
		a.requestIdMiddleware(),
		a.corsMiddleware(),
	)
}
