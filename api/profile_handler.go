package api

import (
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type profileHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newProfileHandler(market *services.Marketplace) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()

	return profileHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// getOwnProfile returns the caller's profile
// @Summary Get own profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Profile not created yet"
// @Router /profile [get]
func (h profileHandler) getOwnProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.market.GetProfile(r.Context(), actor.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, profile)
	}
}

// upsertProfile creates or updates the caller's profile
// @Summary Create or update own profile
// @Description The role can be set once, on creation. When omitted it falls back to the role in the access token.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param profile body services.ProfileInput true "Profile"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Role change attempted"
// @Router /profile [put]
func (h profileHandler) upsertProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := ctxGetSession(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.ProfileInput
		if err := decodeJSON(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.market.UpsertProfile(r.Context(), s.Actor, s.Email, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, profile)
	}
}

// getProfile returns any user's profile
// @Summary Get profile
// @Tags Profiles
// @Produce json
// @Param profileID path string true "Profile ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /profiles/{profileID} [get]
func (h profileHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := uuidParam(r, "profileID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.market.GetProfile(r.Context(), profileID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, profile)
	}
}
