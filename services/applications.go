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

type ApplicationInput struct {
	CoverLetter  string  `json:"cover_letter"`
	Pitch        string  `json:"pitch"`
	ProposedRate float64 `json:"proposed_rate"`
}

// ReviewResult reports what ReviewApplication did. Changed is false when the
// application had already been decided; ContractExisted is true when the
// contract for the accepted application was found rather than created.
type ReviewResult struct {
	ApplicationID   uuid.UUID           `json:"application_id"`
	Status          models.ReviewStatus `json:"status"`
	Changed         bool                `json:"changed"`
	ContractID      *uuid.UUID          `json:"contract_id,omitempty"`
	ContractExisted bool                `json:"contract_existed"`
	Message         string              `json:"message"`
}

// Apply records a freelancer's bid on an open job.
func (m *Marketplace) Apply(ctx context.Context, actor Actor, jobID uuid.UUID, in ApplicationInput) (*models.Application, error) {
	if err := requireRole(actor, models.RoleFreelancer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CoverLetter) == "" {
		return nil, errs.NewMissingRequiredFieldError("cover_letter")
	}
	if in.ProposedRate <= 0 {
		return nil, errs.NewInvalidFieldError("proposed_rate", "must be greater than zero")
	}

	job, err := m.store.Jobs().FindByID(ctx, jobID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "job", err)
	}
	if job.ClientID == actor.UserID {
		return nil, errs.NewForbiddenError("cannot apply to your own job")
	}
	if job.Status != models.JobStatusOpen {
		return nil, errs.NewConflictError(fmt.Sprintf("job is %s and no longer accepts applications", job.Status))
	}

	application := &models.Application{
		ID:           uuid.New(),
		JobID:        job.ID,
		FreelancerID: actor.UserID,
		CoverLetter:  strings.TrimSpace(in.CoverLetter),
		Pitch:        strings.TrimSpace(in.Pitch),
		ProposedRate: in.ProposedRate,
		Status:       models.ReviewPending,
	}
	if err := m.store.Applications().Add(ctx, application); err != nil {
		if errs.IsAlreadyExists(err) {
			return nil, errs.NewAlreadyExists("application")
		}
		return nil, errs.NewDatabaseError("create", "application", err)
	}

	var out outbox
	if err := out.event(realtime.TopicApplications, realtime.ActionInsert, application.ID, application, map[string]string{
		"job_id":        job.ID.String(),
		"freelancer_id": actor.UserID.String(),
	}); err != nil {
		return nil, err
	}
	if client, err := m.store.Profiles().FindByID(ctx, job.ClientID); err == nil {
		out.mail(client.Email, "New application for "+job.Title,
			fmt.Sprintf("<p>You received a new application for <strong>%s</strong> at a proposed rate of %.2f.</p>", job.Title, application.ProposedRate))
	}
	m.flush(ctx, &out)

	m.logger.Info().Str("applicationID", application.ID.String()).Str("jobID", job.ID.String()).Msg("application submitted")
	return application, nil
}

// ListJobApplications returns a job's applications to its owner.
func (m *Marketplace) ListJobApplications(ctx context.Context, actor Actor, jobID uuid.UUID) ([]*models.Application, error) {
	job, err := m.store.Jobs().FindByID(ctx, jobID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "job", err)
	}
	if job.ClientID != actor.UserID {
		return nil, errs.NewNotOwnerError("job")
	}
	applications, err := m.store.Applications().FindByJob(ctx, jobID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "applications", err)
	}
	return applications, nil
}

func (m *Marketplace) ListMyApplications(ctx context.Context, actor Actor) ([]*models.Application, error) {
	if err := requireRole(actor, models.RoleFreelancer); err != nil {
		return nil, err
	}
	applications, err := m.store.Applications().FindByFreelancer(ctx, actor.UserID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "applications", err)
	}
	return applications, nil
}

// ReviewApplication accepts or rejects a pending application. Accepting
// marks the application, creates (or reuses) the contract, seeds its chat
// thread and moves the job to in_progress, all in one transaction.
// Reviewing an application that was already decided changes nothing.
func (m *Marketplace) ReviewApplication(ctx context.Context, actor Actor, applicationID uuid.UUID, status models.ReviewStatus) (ReviewResult, error) {
	if !status.Decision() {
		return ReviewResult{}, errs.NewInvalidFieldError("status", "must be accepted or rejected")
	}

	var (
		result ReviewResult
		out    outbox
	)
	err := m.store.Transaction(ctx, func(tx database.Store) error {
		// Job before application, the same order CancelJob takes them in.
		pending, err := tx.Applications().FindByID(ctx, applicationID)
		if err != nil {
			return errs.NewDatabaseError("find", "application", err)
		}
		job, err := tx.Jobs().FindByIDForUpdate(ctx, pending.JobID)
		if err != nil {
			return errs.NewDatabaseError("find", "job", err)
		}
		application, err := tx.Applications().FindByIDForUpdate(ctx, applicationID)
		if err != nil {
			return errs.NewDatabaseError("find", "application", err)
		}
		if job.ClientID != actor.UserID {
			return errs.NewNotOwnerError("job")
		}

		result = ReviewResult{ApplicationID: application.ID, Status: application.Status}

		if application.Status != models.ReviewPending {
			result.Message = fmt.Sprintf("application already %s, no change needed", application.Status)
			if application.Status == models.ReviewAccepted {
				existing, err := tx.Contracts().FindExisting(ctx, job.ID, application.FreelancerID)
				if err != nil {
					return errs.NewDatabaseError("find", "contract", err)
				}
				if existing != nil {
					result.ContractID = &existing.ID
					result.ContractExisted = true
				}
			}
			return nil
		}

		if status == models.ReviewRejected {
			if err := tx.Applications().UpdateStatus(ctx, application.ID, models.ReviewRejected); err != nil {
				return errs.NewDatabaseError("update", "application", err)
			}
			application.Status = models.ReviewRejected
			result.Status = models.ReviewRejected
			result.Changed = true
			result.Message = "application rejected"
			return out.event(realtime.TopicApplications, realtime.ActionUpdate, application.ID, application, map[string]string{
				"job_id":        job.ID.String(),
				"freelancer_id": application.FreelancerID.String(),
			})
		}

		return m.acceptApplication(ctx, tx, job, application, &result, &out)
	})
	if err != nil {
		return ReviewResult{}, err
	}

	m.flush(ctx, &out)
	m.logger.Info().
		Str("applicationID", applicationID.String()).
		Str("status", string(result.Status)).
		Bool("changed", result.Changed).
		Bool("contractExisted", result.ContractExisted).
		Msg("application reviewed")
	return result, nil
}

func (m *Marketplace) acceptApplication(ctx context.Context, tx database.Store, job *models.Job, application *models.Application, result *ReviewResult, out *outbox) error {
	if !job.Status.CanTransitionTo(models.JobStatusInProgress) {
		return errs.NewInvalidTransitionError("job", string(job.Status), string(models.JobStatusInProgress))
	}

	if err := tx.Applications().UpdateStatus(ctx, application.ID, models.ReviewAccepted); err != nil {
		return errs.NewDatabaseError("update", "application", err)
	}
	application.Status = models.ReviewAccepted
	result.Status = models.ReviewAccepted
	result.Changed = true
	if err := out.event(realtime.TopicApplications, realtime.ActionUpdate, application.ID, application, map[string]string{
		"job_id":        job.ID.String(),
		"freelancer_id": application.FreelancerID.String(),
	}); err != nil {
		return err
	}

	findExisting := func() (*models.Contract, error) {
		return tx.Contracts().FindExisting(ctx, job.ID, application.FreelancerID)
	}
	contract, err := findExisting()
	if err != nil {
		return errs.NewDatabaseError("find", "contract", err)
	}
	created := false
	if contract == nil {
		jobID := job.ID
		contract, created, err = insertContract(ctx, tx, &models.Contract{
			ID:           uuid.New(),
			JobID:        &jobID,
			FreelancerID: application.FreelancerID,
			ClientID:     job.ClientID,
			Rate:         application.ProposedRate,
			Status:       models.ContractActive,
			StartDate:    m.now(),
		}, findExisting)
		if err != nil {
			return err
		}
	}

	result.ContractID = &contract.ID
	result.ContractExisted = !created
	if created {
		result.Message = "application accepted, contract created"
		if err := out.event(realtime.TopicContracts, realtime.ActionInsert, contract.ID, contract, contractKeys(contract)); err != nil {
			return err
		}
		if err := m.seedThread(ctx, tx, contract, jobGreeting(job), out); err != nil {
			return err
		}
	} else {
		result.Message = "application accepted, contract already exists"
	}

	if err := moveJob(ctx, tx, job, models.JobStatusInProgress, out); err != nil {
		return err
	}

	if freelancer, err := tx.Profiles().FindByID(ctx, application.FreelancerID); err == nil {
		out.mail(freelancer.Email, "Your application was accepted",
			fmt.Sprintf("<p>Your application for <strong>%s</strong> was accepted. Your contract is now active.</p>", job.Title))
	}
	return nil
}
