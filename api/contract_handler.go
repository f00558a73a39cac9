package api

import (
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contractHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
	events    realtime.Subscriber
}

func newContractHandler(market *services.Marketplace, events realtime.Subscriber) contractHandler {
	logger := log.With().Str("handlerName", "contractHandler").Logger()

	return contractHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
		events:    events,
	}
}

// listContracts lists the caller's contracts
// @Summary List own contracts
// @Tags Contracts
// @Produce json
// @Success 200 {array} models.Contract
// @Router /contracts [get]
func (h contractHandler) listContracts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		contracts, err := h.market.ListContracts(r.Context(), actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, contracts)
	}
}

// getOverview returns a contract with its job, thread, submissions and unread count
// @Summary Contract overview
// @Tags Contracts
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {object} services.ContractOverview
// @Failure 403 {object} ErrorResponse "Not a party"
// @Failure 404 {object} ErrorResponse "Contract not found"
// @Router /contracts/{contractID} [get]
func (h contractHandler) getOverview() http.HandlerFunc {
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

		overview, err := h.market.ContractOverview(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, overview)
	}
}

// completeContract marks an active contract completed
// @Summary Complete contract
// @Tags Contracts
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 403 {object} ErrorResponse "Only the client completes"
// @Failure 409 {object} ErrorResponse "Contract not active"
// @Router /contracts/{contractID}/complete [post]
func (h contractHandler) completeContract() http.HandlerFunc {
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

		contract, err := h.market.CompleteContract(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, contract)
	}
}

// terminateContract ends an active contract early
// @Summary Terminate contract
// @Tags Contracts
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 403 {object} ErrorResponse "Not a party"
// @Failure 409 {object} ErrorResponse "Contract not active"
// @Router /contracts/{contractID}/terminate [post]
func (h contractHandler) terminateContract() http.HandlerFunc {
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

		contract, err := h.market.TerminateContract(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, contract)
	}
}

// streamEvents streams the contract's changes as server-sent events
// @Summary Contract change stream
// @Description Streams chat_messages, contracts and project_submissions changes for the contract. Narrow with ?topics=chat_messages,contracts. The token may be passed as ?access_token= for EventSource clients.
// @Tags Contracts
// @Produce text/event-stream
// @Param contractID path string true "Contract ID"
// @Success 200 {string} string "event stream"
// @Failure 403 {object} ErrorResponse "Not a party"
// @Router /contracts/{contractID}/events [get]
func (h contractHandler) streamEvents() http.HandlerFunc {
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
		topics, err := streamTopics(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// Party check before any stream headers go out.
		if _, err := h.market.GetContract(r.Context(), actor, contractID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		stream := eventStream{
			subscriber: h.events,
			logger:     h.logger,
			heartbeat:  defaultHeartbeat,
		}
		if err := stream.serve(w, r, topics, realtime.FieldEquals("contract_id", contractID.String())); err != nil {
			h.responder.WriteError(w, err)
		}
	}
}
