package api

import (
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type inquiryHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newInquiryHandler(market *services.Marketplace) inquiryHandler {
	logger := log.With().Str("handlerName", "inquiryHandler").Logger()

	return inquiryHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// listInquiries lists inquiries sent (clients) or received (freelancers)
// @Summary List inquiries
// @Tags Inquiries
// @Produce json
// @Success 200 {array} models.InquiryView
// @Router /inquiries [get]
func (h inquiryHandler) listInquiries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		inquiries, err := h.market.ListInquiries(r.Context(), actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, inquiries)
	}
}

// createInquiry approaches a freelancer directly
// @Summary Create inquiry
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param inquiry body CreateInquiryRequest true "Inquiry"
// @Success 201 {object} models.ProjectInquiry
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Only clients send inquiries"
// @Router /inquiries [post]
func (h inquiryHandler) createInquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req CreateInquiryRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		inquiry, err := h.market.CreateInquiry(r.Context(), actor, req.FreelancerID, req.ProjectDescription)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, inquiry)
	}
}

// respondToInquiry accepts or rejects an inquiry
// @Summary Respond to inquiry
// @Description Accepting creates the contract and seeds its chat in one transaction.
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param inquiryID path string true "Inquiry ID"
// @Param status body StatusUpdateRequest true "Decision"
// @Success 200 {object} services.InquiryResult
// @Failure 403 {object} ErrorResponse "Not the addressed freelancer"
// @Router /inquiries/{inquiryID}/status [put]
func (h inquiryHandler) respondToInquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		inquiryID, err := uuidParam(r, "inquiryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req StatusUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.market.RespondToInquiry(r.Context(), actor, inquiryID, req.Status)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}
