package api

import (
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type submissionHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newSubmissionHandler(market *services.Marketplace) submissionHandler {
	logger := log.With().Str("handlerName", "submissionHandler").Logger()

	return submissionHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {array} models.ProjectSubmission
// @Router /contracts/{contractID}/submissions [get]
func (h submissionHandler) listSubmissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		contractID, err := uuidParam(r, "contractID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submissions, err := h.market.ListSubmissions(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, submissions)
	}
}

// @Summary Submit deliverable
// @Tags Submissions
// @Accept json
// @Produce json
// @Param contractID path string true "Contract ID"
// @Param submission body services.SubmissionInput true "Deliverable"
// @Success 201 {object} models.ProjectSubmission
// @Failure 403 {object} ErrorResponse "Not the contract's freelancer"
// @Failure 409 {object} ErrorResponse "Contract not active"
// @Router /contracts/{contractID}/submissions [post]
func (h submissionHandler) submitDeliverable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		contractID, err := uuidParam(r, "contractID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.SubmissionInput
		if err := decodeJSON(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submission, err := h.market.SubmitDeliverable(r.Context(), actor, contractID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, submission)
	}
}

// @Summary Review submission
// @Description Accepting completes the contract and its job.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param submissionID path string true "Submission ID"
// @Param status body StatusUpdateRequest true "Decision and optional feedback"
// @Success 200 {object} models.ProjectSubmission
// @Failure 409 {object} ErrorResponse "Submission already reviewed"
// @Router /submissions/{submissionID}/status [put]
func (h submissionHandler) reviewSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		submissionID, err := uuidParam(r, "submissionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req StatusUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submission, err := h.market.ReviewSubmission(r.Context(), actor, submissionID, req.Status, req.Feedback)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, submission)
	}
}
