package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
	"golang.org/x/sync/errgroup"
)

// ContractOverview is everything the contract view needs in one response.
type ContractOverview struct {
	Contract    *models.Contract            `json:"contract"`
	Job         *models.Job                 `json:"job,omitempty"`
	Messages    []*models.ChatMessage       `json:"messages"`
	Submissions []*models.ProjectSubmission `json:"submissions"`
	UnreadCount int64                       `json:"unread_count"`
}

func (m *Marketplace) GetContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	return partyContract(ctx, m.store, actor, contractID)
}

func (m *Marketplace) ListContracts(ctx context.Context, actor Actor) ([]*models.Contract, error) {
	contracts, err := m.store.Contracts().FindByParty(ctx, actor.UserID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "contracts", err)
	}
	return contracts, nil
}

// ContractOverview loads the contract's job, thread, submissions and the
// actor's unread count concurrently.
func (m *Marketplace) ContractOverview(ctx context.Context, actor Actor, contractID uuid.UUID) (*ContractOverview, error) {
	contract, err := partyContract(ctx, m.store, actor, contractID)
	if err != nil {
		return nil, err
	}

	overview := &ContractOverview{Contract: contract}
	g, gctx := errgroup.WithContext(ctx)
	if contract.JobID != nil {
		g.Go(func() error {
			job, err := m.store.Jobs().FindByID(gctx, *contract.JobID)
			if err != nil {
				return errs.NewDatabaseError("find", "job", err)
			}
			overview.Job = job
			return nil
		})
	}
	g.Go(func() error {
		messages, err := m.store.Messages().FindByContract(gctx, contract.ID)
		if err != nil {
			return errs.NewDatabaseError("list", "chat messages", err)
		}
		overview.Messages = messages
		return nil
	})
	g.Go(func() error {
		submissions, err := m.store.Submissions().FindByContract(gctx, contract.ID)
		if err != nil {
			return errs.NewDatabaseError("list", "project submissions", err)
		}
		overview.Submissions = submissions
		return nil
	})
	g.Go(func() error {
		count, err := m.store.Messages().CountUnread(gctx, contract.ID, actor.UserID)
		if err != nil {
			return errs.NewDatabaseError("count", "chat messages", err)
		}
		overview.UnreadCount = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

// CompleteContract lets the client close an active contract. The contract's
// job, if any, is completed in the same transaction.
func (m *Marketplace) CompleteContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	return m.finishContract(ctx, actor, contractID, models.ContractCompleted)
}

// TerminateContract lets either party end an active contract. The job is
// left as it is.
func (m *Marketplace) TerminateContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	return m.finishContract(ctx, actor, contractID, models.ContractTerminated)
}

func (m *Marketplace) finishContract(ctx context.Context, actor Actor, contractID uuid.UUID, next models.ContractStatus) (*models.Contract, error) {
	var (
		contract *models.Contract
		out      outbox
	)
	err := m.store.Transaction(ctx, func(tx database.Store) error {
		var err error
		contract, err = lockPartyContract(ctx, tx, actor, contractID)
		if err != nil {
			return err
		}
		if next == models.ContractCompleted && contract.ClientID != actor.UserID {
			return errs.NewForbiddenError("only the client can complete a contract")
		}
		return m.closeContract(ctx, tx, contract, next, &out)
	})
	if err != nil {
		return nil, err
	}
	m.flush(ctx, &out)
	m.logger.Info().Str("contractID", contractID.String()).Str("status", string(next)).Msg("contract closed")
	return contract, nil
}

// closeContract moves an active contract to next and, on completion,
// completes its job.
func (m *Marketplace) closeContract(ctx context.Context, tx database.Store, contract *models.Contract, next models.ContractStatus, out *outbox) error {
	if !contract.Status.CanTransitionTo(next) {
		return errs.NewInvalidTransitionError("contract", string(contract.Status), string(next))
	}
	end := m.now()
	contract.Status = next
	contract.EndDate = &end
	if err := tx.Contracts().Update(ctx, contract); err != nil {
		return errs.NewDatabaseError("update", "contract", err)
	}
	if err := out.event(realtime.TopicContracts, realtime.ActionUpdate, contract.ID, contract, contractKeys(contract)); err != nil {
		return err
	}

	if next != models.ContractCompleted || contract.JobID == nil {
		return nil
	}
	job, err := tx.Jobs().FindByIDForUpdate(ctx, *contract.JobID)
	if err != nil {
		return errs.NewDatabaseError("find", "job", err)
	}
	if job.Status == models.JobStatusCompleted {
		return nil
	}
	return moveJob(ctx, tx, job, models.JobStatusCompleted, out)
}
