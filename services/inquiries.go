package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
)

// InquiryResult is returned by RespondToInquiry. Contract is set whenever
// the inquiry is accepted, including when it had been accepted before.
type InquiryResult struct {
	Inquiry         *models.ProjectInquiry `json:"inquiry"`
	Contract        *models.Contract       `json:"contract,omitempty"`
	Changed         bool                   `json:"changed"`
	ContractExisted bool                   `json:"contract_existed"`
	Message         string                 `json:"message"`
}

// CreateInquiry lets a client approach a freelancer directly.
func (m *Marketplace) CreateInquiry(ctx context.Context, actor Actor, freelancerID uuid.UUID, description string) (*models.ProjectInquiry, error) {
	if err := requireRole(actor, models.RoleClient); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errs.NewMissingRequiredFieldError("project_description")
	}
	if freelancerID == actor.UserID {
		return nil, errs.NewInvalidFieldError("freelancer_id", "cannot send an inquiry to yourself")
	}

	freelancer, err := m.store.Profiles().FindByID(ctx, freelancerID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "freelancer", err)
	}
	if freelancer.Role != models.RoleFreelancer {
		return nil, errs.NewInvalidFieldError("freelancer_id", "profile is not a freelancer")
	}

	inquiry := &models.ProjectInquiry{
		ID:                 uuid.New(),
		ClientID:           actor.UserID,
		FreelancerID:       freelancerID,
		ProjectDescription: description,
		Status:             models.ReviewPending,
	}
	if err := m.store.Inquiries().Add(ctx, inquiry); err != nil {
		return nil, errs.NewDatabaseError("create", "project inquiry", err)
	}

	var out outbox
	if err := out.event(realtime.TopicInquiries, realtime.ActionInsert, inquiry.ID, inquiry, map[string]string{
		"client_id":     actor.UserID.String(),
		"freelancer_id": freelancerID.String(),
	}); err != nil {
		return nil, err
	}
	out.mail(freelancer.Email, "New project inquiry", "<p>A client sent you a new project inquiry:</p><p>"+excerpt(description)+"</p>")
	m.flush(ctx, &out)
	return inquiry, nil
}

// ListInquiries returns the inquiries the actor sent (clients) or received
// (freelancers), with both parties' names.
func (m *Marketplace) ListInquiries(ctx context.Context, actor Actor) ([]*models.InquiryView, error) {
	var (
		views []*models.InquiryView
		err   error
	)
	switch actor.Role {
	case models.RoleClient:
		views, err = m.store.Inquiries().ListByClient(ctx, actor.UserID)
	case models.RoleFreelancer:
		views, err = m.store.Inquiries().ListByFreelancer(ctx, actor.UserID)
	default:
		return nil, errs.NewInsufficientRoleError("client or freelancer")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("list", "project inquiries", err)
	}
	return views, nil
}

// RespondToInquiry lets the addressed freelancer accept or reject a pending
// inquiry. Accepting creates a contract at the platform rate and seeds its
// thread with a message from the client, in one transaction.
func (m *Marketplace) RespondToInquiry(ctx context.Context, actor Actor, inquiryID uuid.UUID, status models.ReviewStatus) (InquiryResult, error) {
	if !status.Decision() {
		return InquiryResult{}, errs.NewInvalidFieldError("status", "must be accepted or rejected")
	}

	var (
		result InquiryResult
		out    outbox
	)
	err := m.store.Transaction(ctx, func(tx database.Store) error {
		inquiry, err := tx.Inquiries().FindByIDForUpdate(ctx, inquiryID)
		if err != nil {
			return errs.NewDatabaseError("find", "project inquiry", err)
		}
		if inquiry.FreelancerID != actor.UserID {
			return errs.NewNotOwnerError("project inquiry")
		}
		result = InquiryResult{Inquiry: inquiry}

		if inquiry.Status != models.ReviewPending {
			result.Message = fmt.Sprintf("inquiry already %s, no change needed", inquiry.Status)
			if inquiry.Status == models.ReviewAccepted {
				existing, err := tx.Contracts().FindByInquiry(ctx, inquiry.ID)
				if err != nil {
					return errs.NewDatabaseError("find", "contract", err)
				}
				result.Contract = existing
				result.ContractExisted = existing != nil
			}
			return nil
		}

		if err := tx.Inquiries().UpdateStatus(ctx, inquiry.ID, status); err != nil {
			return errs.NewDatabaseError("update", "project inquiry", err)
		}
		inquiry.Status = status
		inquiry.UpdatedAt = m.now()
		result.Changed = true
		if err := out.event(realtime.TopicInquiries, realtime.ActionUpdate, inquiry.ID, inquiry, map[string]string{
			"client_id":     inquiry.ClientID.String(),
			"freelancer_id": inquiry.FreelancerID.String(),
		}); err != nil {
			return err
		}
		if status == models.ReviewRejected {
			result.Message = "inquiry rejected"
			return nil
		}

		inquiryRef := inquiry.ID
		findExisting := func() (*models.Contract, error) {
			return tx.Contracts().FindByInquiry(ctx, inquiry.ID)
		}
		contract, created, err := insertContract(ctx, tx, &models.Contract{
			ID:           uuid.New(),
			InquiryID:    &inquiryRef,
			FreelancerID: inquiry.FreelancerID,
			ClientID:     inquiry.ClientID,
			Rate:         m.inquiryRate,
			Status:       models.ContractActive,
			StartDate:    m.now(),
		}, findExisting)
		if err != nil {
			return err
		}
		result.Contract = contract
		result.ContractExisted = !created
		if !created {
			result.Message = "inquiry accepted, contract already exists"
			return nil
		}

		result.Message = "inquiry accepted, contract created"
		if err := out.event(realtime.TopicContracts, realtime.ActionInsert, contract.ID, contract, contractKeys(contract)); err != nil {
			return err
		}
		if err := m.seedThread(ctx, tx, contract, inquiryGreeting(inquiry), &out); err != nil {
			return err
		}
		if client, err := tx.Profiles().FindByID(ctx, inquiry.ClientID); err == nil {
			out.mail(client.Email, "Your project inquiry was accepted",
				"<p>The freelancer accepted your project inquiry. Your contract is now active.</p>")
		}
		return nil
	})
	if err != nil {
		return InquiryResult{}, err
	}

	m.flush(ctx, &out)
	m.logger.Info().
		Str("inquiryID", inquiryID.String()).
		Str("status", string(result.Inquiry.Status)).
		Bool("changed", result.Changed).
		Msg("inquiry answered")
	return result, nil
}
