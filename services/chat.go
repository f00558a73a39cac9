package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
)

const (
	maxMessageLength     = 5000
	greetingExcerptLimit = 280
	genericGreeting      = "Hi! I'm looking forward to working with you. Let's use this chat to get started."
)

func jobGreeting(job *models.Job) string {
	if job == nil || strings.TrimSpace(job.Title) == "" {
		return genericGreeting
	}
	msg := fmt.Sprintf("Hi! I've accepted your application for %q.", job.Title)
	if desc := excerpt(job.Description); desc != "" {
		msg += " Project details: " + desc
	}
	return msg + " Let's use this chat to get started."
}

func inquiryGreeting(inquiry *models.ProjectInquiry) string {
	desc := excerpt(inquiry.ProjectDescription)
	if desc == "" {
		return genericGreeting
	}
	return fmt.Sprintf("Hi! Thanks for accepting my project inquiry: %s Let's use this chat to get started.", desc)
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= greetingExcerptLimit {
		return s
	}
	return strings.TrimSpace(string(runes[:greetingExcerptLimit])) + "..."
}

// seedThread posts the welcome message of a new contract on behalf of the client.
func (m *Marketplace) seedThread(ctx context.Context, tx database.Store, contract *models.Contract, text string, out *outbox) error {
	message := &models.ChatMessage{
		ID:         uuid.New(),
		ContractID: contract.ID,
		SenderID:   contract.ClientID,
		Message:    text,
	}
	if err := tx.Messages().Add(ctx, message); err != nil {
		return errs.NewDatabaseError("create", "chat message", err)
	}
	return out.event(realtime.TopicChatMessages, realtime.ActionInsert, message.ID, message, map[string]string{
		"contract_id": contract.ID.String(),
	})
}

// SendMessage posts to a contract's thread. Only parties may post, and only
// while the contract is active.
func (m *Marketplace) SendMessage(ctx context.Context, actor Actor, contractID uuid.UUID, text string, imageURL *string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if imageURL != nil && strings.TrimSpace(*imageURL) == "" {
		imageURL = nil
	}
	if text == "" && imageURL == nil {
		return nil, errs.NewMissingRequiredFieldError("message")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errs.NewInvalidFieldError("message", fmt.Sprintf("must be at most %d characters", maxMessageLength))
	}

	contract, err := partyContract(ctx, m.store, actor, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractActive {
		return nil, errs.NewConflictError(fmt.Sprintf("contract is %s", contract.Status))
	}

	message := &models.ChatMessage{
		ID:         uuid.New(),
		ContractID: contract.ID,
		SenderID:   actor.UserID,
		Message:    text,
		ImageURL:   imageURL,
	}
	if err := m.store.Messages().Add(ctx, message); err != nil {
		return nil, errs.NewDatabaseError("create", "chat message", err)
	}

	var out outbox
	if err := out.event(realtime.TopicChatMessages, realtime.ActionInsert, message.ID, message, map[string]string{
		"contract_id": contract.ID.String(),
	}); err != nil {
		return nil, err
	}
	m.flush(ctx, &out)
	return message, nil
}

// Messages returns the thread oldest first.
func (m *Marketplace) Messages(ctx context.Context, actor Actor, contractID uuid.UUID) ([]*models.ChatMessage, error) {
	if _, err := partyContract(ctx, m.store, actor, contractID); err != nil {
		return nil, err
	}
	messages, err := m.store.Messages().FindByContract(ctx, contractID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "chat messages", err)
	}
	return messages, nil
}

// MarkRead flags the counterpart's messages as read. The actor's own
// messages are never touched.
func (m *Marketplace) MarkRead(ctx context.Context, actor Actor, contractID uuid.UUID) (int64, error) {
	if _, err := partyContract(ctx, m.store, actor, contractID); err != nil {
		return 0, err
	}
	flipped, err := m.store.Messages().MarkRead(ctx, contractID, actor.UserID)
	if err != nil {
		return 0, errs.NewDatabaseError("update", "chat messages", err)
	}
	if flipped > 0 {
		var out outbox
		if err := out.event(realtime.TopicChatMessages, realtime.ActionUpdate, contractID, map[string]any{
			"reader_id": actor.UserID,
			"read":      flipped,
		}, map[string]string{"contract_id": contractID.String()}); err != nil {
			return 0, err
		}
		m.flush(ctx, &out)
	}
	return flipped, nil
}

func (m *Marketplace) UnreadCount(ctx context.Context, actor Actor, contractID uuid.UUID) (int64, error) {
	if _, err := partyContract(ctx, m.store, actor, contractID); err != nil {
		return 0, err
	}
	count, err := m.store.Messages().CountUnread(ctx, contractID, actor.UserID)
	if err != nil {
		return 0, errs.NewDatabaseError("count", "chat messages", err)
	}
	return count, nil
}
