package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// adminHandler serves the admin dashboard. Every route except checkAccess
// sits behind authMiddleware.requireAdmin.
type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newAdminHandler(market *services.Marketplace) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// @Summary Check admin access
// @Tags Admin
// @Produce json
// @Success 200 {object} AdminAccessResponse
// @Router /admin/access [get]
func (h adminHandler) checkAccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ok, err := h.market.IsAdmin(r.Context(), actor.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, AdminAccessResponse{IsAdmin: ok})
	}
}

// @Summary Grant admin access
// @Tags Admin
// @Accept json
// @Produce json
// @Param grant body GrantAdminRequest true "User to promote"
// @Success 201 {object} AdminAccessResponse
// @Failure 403 {object} ErrorResponse "Admins only"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /admin/access [post]
func (h adminHandler) grantAccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req GrantAdminRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.UserID == uuid.Nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("user_id"))
			return
		}

		if err := h.market.GrantAdmin(r.Context(), actor, req.UserID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, AdminAccessResponse{IsAdmin: true})
	}
}

// @Summary List all profiles
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Profile
// @Router /admin/profiles [get]
func (h adminHandler) listProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profiles, err := h.market.AdminListProfiles(r.Context(), actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, profiles)
	}
}

// @Summary List jobs in any status
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Job
// @Router /admin/jobs [get]
func (h adminHandler) listJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		filter, err := jobFilterFromQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		jobs, err := h.market.AdminListJobs(r.Context(), actor, filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, jobs)
	}
}
