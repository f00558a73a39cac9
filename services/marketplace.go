package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultInquiryRate is the contract rate used for accepted inquiries when
// none is configured.
const DefaultInquiryRate = 25.0

// Actor is the authenticated user performing an operation. Role is resolved
// once when the session is established.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// Option customizes NewMarketplace.
type Option func(*Marketplace)

func WithPublisher(p realtime.Publisher) Option {
	return func(m *Marketplace) {
		if p != nil {
			m.publisher = p
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(m *Marketplace) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithInquiryRate sets the rate of contracts created from inquiries.
func WithInquiryRate(rate float64) Option {
	return func(m *Marketplace) {
		if rate > 0 {
			m.inquiryRate = rate
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Marketplace) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Marketplace) {
		m.logger = logger
	}
}

// Marketplace runs the job -> application -> contract -> chat workflow.
// Every multi-step transition runs in one store transaction; realtime events
// and e-mails are only emitted after the transaction commits.
type Marketplace struct {
	store       database.Store
	publisher   realtime.Publisher
	notifier    Notifier
	inquiryRate float64
	now         func() time.Time
	logger      zerolog.Logger
}

func NewMarketplace(store database.Store, opts ...Option) *Marketplace {
	m := &Marketplace{
		store:       store,
		publisher:   discardPublisher{},
		notifier:    NopNotifier{},
		inquiryRate: DefaultInquiryRate,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      log.With().Str("component", "marketplace").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, realtime.Event) error { return nil }

type email struct {
	to      string
	subject string
	body    string
}

// outbox collects side effects produced inside a transaction.
type outbox struct {
	events []realtime.Event
	emails []email
}

func (o *outbox) event(topic string, action realtime.Action, id uuid.UUID, record any, keys map[string]string) error {
	event, err := realtime.NewEvent(topic, action, id, record, keys)
	if err != nil {
		return err
	}
	o.events = append(o.events, event)
	return nil
}

func (o *outbox) mail(to, subject, body string) {
	if to == "" {
		return
	}
	o.emails = append(o.emails, email{to: to, subject: subject, body: body})
}

// flush publishes and sends everything collected in o. Failures are logged
// and never reported to the caller: the transaction has already committed.
func (m *Marketplace) flush(ctx context.Context, o *outbox) {
	ctx = context.WithoutCancel(ctx)
	for _, event := range o.events {
		if err := m.publisher.Publish(ctx, event); err != nil {
			m.logger.Warn().Err(err).Str("topic", event.Topic).Str("recordID", event.RecordID).Msg("failed to publish event")
		}
	}
	for _, e := range o.emails {
		if err := m.notifier.SendEmail(ctx, e.subject, e.body, []string{e.to}); err != nil {
			m.logger.Warn().Err(err).Str("subject", e.subject).Msg("failed to send notification e-mail")
		}
	}
}

func requireRole(actor Actor, role models.Role) error {
	if actor.Role != role {
		return errs.NewInsufficientRoleError(string(role))
	}
	return nil
}

// partyContract loads a contract and checks that actor is one of its parties.
func partyContract(ctx context.Context, store database.Store, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := store.Contracts().FindByID(ctx, contractID)
	return checkParty(contract, err, actor, contractID)
}

// lockPartyContract is partyContract with the row locked until tx ends.
func lockPartyContract(ctx context.Context, tx database.Store, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := tx.Contracts().FindByIDForUpdate(ctx, contractID)
	return checkParty(contract, err, actor, contractID)
}

func checkParty(contract *models.Contract, err error, actor Actor, contractID uuid.UUID) (*models.Contract, error) {
	if err != nil {
		return nil, errs.NewDatabaseError("find", "contract", err)
	}
	if !contract.HasParty(actor.UserID) {
		return nil, errs.NewNotPartyError(contractID.String())
	}
	return contract, nil
}

// insertContract runs the conditional insert and falls back to the row that
// won a concurrent insert.
func insertContract(ctx context.Context, tx database.Store, contract *models.Contract, existing func() (*models.Contract, error)) (*models.Contract, bool, error) {
	if contract.ClientID == contract.FreelancerID {
		return nil, false, errs.NewBadRequestError("client and freelancer must be different users")
	}
	created, err := tx.Contracts().CreateIfAbsent(ctx, contract)
	if err != nil {
		return nil, false, errs.NewDatabaseError("create", "contract", err)
	}
	if created {
		return contract, true, nil
	}
	winner, err := existing()
	if err != nil {
		return nil, false, errs.NewDatabaseError("find", "contract", err)
	}
	if winner == nil {
		return nil, false, errs.NewTransactionFailedError("create contract", nil)
	}
	return winner, false, nil
}

// moveJob applies a guarded job status transition. Staying in_progress is a
// no-op and writes nothing.
func moveJob(ctx context.Context, tx database.Store, job *models.Job, next models.JobStatus, o *outbox) error {
	if !job.Status.CanTransitionTo(next) {
		return errs.NewInvalidTransitionError("job", string(job.Status), string(next))
	}
	if job.Status == next {
		return nil
	}
	if err := tx.Jobs().UpdateStatus(ctx, job.ID, next); err != nil {
		return errs.NewDatabaseError("update", "job", err)
	}
	job.Status = next
	return o.event(realtime.TopicJobs, realtime.ActionUpdate, job.ID, job, map[string]string{"client_id": job.ClientID.String()})
}

func contractKeys(c *models.Contract) map[string]string {
	return map[string]string{
		"contract_id":   c.ID.String(),
		"client_id":     c.ClientID.String(),
		"freelancer_id": c.FreelancerID.String(),
	}
}
