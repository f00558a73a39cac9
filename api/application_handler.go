package api

import (
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type applicationHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newApplicationHandler(market *services.Marketplace) applicationHandler {
	logger := log.With().Str("handlerName", "applicationHandler").Logger()

	return applicationHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// listJobApplications lists the applications on a job
// @Summary List job applications
// @Tags Applications
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {array} models.Application
// @Failure 403 {object} ErrorResponse "Not the job owner"
// @Router /jobs/{jobID}/applications [get]
func (h applicationHandler) listJobApplications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		applications, err := h.market.ListJobApplications(r.Context(), actor, jobID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, applications)
	}
}

// apply submits an application
// @Summary Apply to job
// @Tags Applications
// @Accept json
// @Produce json
// @Param jobID path string true "Job ID"
// @Param application body services.ApplicationInput true "Application"
// @Success 201 {object} models.Application
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Already applied or job not open"
// @Router /jobs/{jobID}/applications [post]
func (h applicationHandler) apply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.ApplicationInput
		if err := decodeJSON(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		application, err := h.market.Apply(r.Context(), actor, jobID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, application)
	}
}

// listMyApplications lists the caller's applications
// @Summary List own applications
// @Tags Applications
// @Produce json
// @Success 200 {array} models.Application
// @Router /applications/mine [get]
func (h applicationHandler) listMyApplications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		applications, err := h.market.ListMyApplications(r.Context(), actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, applications)
	}
}

// reviewApplication accepts or rejects an application
// @Summary Review application
// @Description Accepting creates the contract, seeds the chat and moves the job to in_progress in one transaction. Reviewing an already decided application is a no-op.
// @Tags Applications
// @Accept json
// @Produce json
// @Param applicationID path string true "Application ID"
// @Param status body StatusUpdateRequest true "Decision"
// @Success 200 {object} services.ReviewResult
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 403 {object} ErrorResponse "Not the job owner"
// @Router /applications/{applicationID}/status [put]
func (h applicationHandler) reviewApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		applicationID, err := uuidParam(r, "applicationID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req StatusUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.market.ReviewApplication(r.Context(), actor, applicationID, req.Status)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}
