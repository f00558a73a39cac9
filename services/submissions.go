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

type SubmissionInput struct {
	Description    string  `json:"description"`
	DeliverableURL *string `json:"deliverable_url,omitempty"`
}

// SubmitDeliverable hands in work on an active contract.
func (m *Marketplace) SubmitDeliverable(ctx context.Context, actor Actor, contractID uuid.UUID, in SubmissionInput) (*models.ProjectSubmission, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, errs.NewMissingRequiredFieldError("description")
	}
	contract, err := partyContract(ctx, m.store, actor, contractID)
	if err != nil {
		return nil, err
	}
	if contract.FreelancerID != actor.UserID {
		return nil, errs.NewForbiddenError("only the freelancer can submit deliverables")
	}
	if contract.Status != models.ContractActive {
		return nil, errs.NewConflictError(fmt.Sprintf("contract is %s", contract.Status))
	}

	submission := &models.ProjectSubmission{
		ID:             uuid.New(),
		ContractID:     contract.ID,
		FreelancerID:   actor.UserID,
		Description:    strings.TrimSpace(in.Description),
		DeliverableURL: in.DeliverableURL,
		Status:         models.ReviewPending,
	}
	if err := m.store.Submissions().Add(ctx, submission); err != nil {
		return nil, errs.NewDatabaseError("create", "project submission", err)
	}

	var out outbox
	if err := out.event(realtime.TopicSubmissions, realtime.ActionInsert, submission.ID, submission, map[string]string{
		"contract_id": contract.ID.String(),
	}); err != nil {
		return nil, err
	}
	if client, err := m.store.Profiles().FindByID(ctx, contract.ClientID); err == nil {
		out.mail(client.Email, "New deliverable submitted", "<p>Your freelancer submitted work for review:</p><p>"+excerpt(submission.Description)+"</p>")
	}
	m.flush(ctx, &out)
	return submission, nil
}

func (m *Marketplace) ListSubmissions(ctx context.Context, actor Actor, contractID uuid.UUID) ([]*models.ProjectSubmission, error) {
	if _, err := partyContract(ctx, m.store, actor, contractID); err != nil {
		return nil, err
	}
	submissions, err := m.store.Submissions().FindByContract(ctx, contractID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "project submissions", err)
	}
	return submissions, nil
}

// ReviewSubmission lets the client accept or reject a pending deliverable.
// Accepting completes the contract and its job in the same transaction.
func (m *Marketplace) ReviewSubmission(ctx context.Context, actor Actor, submissionID uuid.UUID, status models.ReviewStatus, feedback *string) (*models.ProjectSubmission, error) {
	if !status.Decision() {
		return nil, errs.NewInvalidFieldError("status", "must be accepted or rejected")
	}

	var (
		submission *models.ProjectSubmission
		out        outbox
	)
	err := m.store.Transaction(ctx, func(tx database.Store) error {
		var err error
		submission, err = tx.Submissions().FindByIDForUpdate(ctx, submissionID)
		if err != nil {
			return errs.NewDatabaseError("find", "project submission", err)
		}
		contract, err := lockPartyContract(ctx, tx, actor, submission.ContractID)
		if err != nil {
			return err
		}
		if contract.ClientID != actor.UserID {
			return errs.NewForbiddenError("only the client can review deliverables")
		}
		if submission.Status != models.ReviewPending {
			return errs.NewInvalidTransitionError("submission", string(submission.Status), string(status))
		}

		submission.Status = status
		submission.Feedback = feedback
		if err := tx.Submissions().Update(ctx, submission); err != nil {
			return errs.NewDatabaseError("update", "project submission", err)
		}
		if err := out.event(realtime.TopicSubmissions, realtime.ActionUpdate, submission.ID, submission, map[string]string{
			"contract_id": contract.ID.String(),
		}); err != nil {
			return err
		}

		if freelancer, err := tx.Profiles().FindByID(ctx, submission.FreelancerID); err == nil {
			out.mail(freelancer.Email, "Your deliverable was "+string(status),
				fmt.Sprintf("<p>The client %s your submission.</p>", status))
		}

		if status != models.ReviewAccepted {
			return nil
		}
		return m.closeContract(ctx, tx, contract, models.ContractCompleted, &out)
	})
	if err != nil {
		return nil, err
	}
	m.flush(ctx, &out)
	return submission, nil
}
