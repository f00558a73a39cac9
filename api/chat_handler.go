package api

import (
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newChatHandler(market *services.Marketplace) chatHandler {
	logger := log.With().Str("handlerName", "chatHandler").Logger()

	return chatHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// listMessages returns the contract's thread, oldest first
// @Summary List messages
// @Tags Chat
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {array} models.ChatMessage
// @Failure 403 {object} ErrorResponse "Not a party"
// @Router /contracts/{contractID}/messages [get]
func (h chatHandler) listMessages() http.HandlerFunc {
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

		messages, err := h.market.Messages(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, messages)
	}
}

// sendMessage posts to the contract's thread
// @Summary Send message
// @Tags Chat
// @Accept json
// @Produce json
// @Param contractID path string true "Contract ID"
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} models.ChatMessage
// @Failure 400 {object} ErrorResponse "Empty message"
// @Failure 403 {object} ErrorResponse "Not a party"
// @Failure 409 {object} ErrorResponse "Contract not active"
// @Router /contracts/{contractID}/messages [post]
func (h chatHandler) sendMessage() http.HandlerFunc {
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

		var req SendMessageRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		message, err := h.market.SendMessage(r.Context(), actor, contractID, req.Message, req.ImageURL)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, message)
	}
}

// markRead marks the other party's messages read
// @Summary Mark thread read
// @Tags Chat
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {object} CountResponse "Messages flipped to read"
// @Router /contracts/{contractID}/messages/read [post]
func (h chatHandler) markRead() http.HandlerFunc {
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

		flipped, err := h.market.MarkRead(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, CountResponse{Count: flipped})
	}
}

// unreadCount counts the other party's unread messages
// @Summary Unread count
// @Tags Chat
// @Produce json
// @Param contractID path string true "Contract ID"
// @Success 200 {object} CountResponse
// @Router /contracts/{contractID}/messages/unread [get]
func (h chatHandler) unreadCount() http.HandlerFunc {
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

		count, err := h.market.UnreadCount(r.Context(), actor, contractID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, CountResponse{Count: count})
	}
}
