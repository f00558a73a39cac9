package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) SendEmail(_ context.Context, subject, _ string, recipients []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, r := range recipients {
		n.sent = append(n.sent, r+": "+subject)
	}
	return nil
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *database.Memory
	market    *Marketplace
	publisher *recordingPublisher
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := database.NewMemory()
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
	}
	f.market = NewMarketplace(store,
		WithPublisher(f.publisher),
		WithNotifier(f.notifier),
		WithClock(func() time.Time { return testNow }),
	)
	return f
}

func (f *fixture) user(role models.Role, name string) Actor {
	f.t.Helper()
	profile := &models.Profile{
		ID:       uuid.New(),
		Email:    name + "@example.com",
		FullName: name,
		Role:     role,
	}
	if err := f.store.Profiles().Save(f.ctx, profile); err != nil {
		f.t.Fatalf("save profile: %v", err)
	}
	return Actor{UserID: profile.ID, Role: role}
}

func (f *fixture) job(client Actor, title string) *models.Job {
	f.t.Helper()
	job, err := f.market.CreateJob(f.ctx, client, JobInput{
		Title:       title,
		Description: "Build a REST API",
		Category:    "development",
		BudgetMin:   20,
		BudgetMax:   40,
		BudgetType:  models.BudgetHourly,
	})
	if err != nil {
		f.t.Fatalf("create job: %v", err)
	}
	return job
}

func (f *fixture) apply(freelancer Actor, job *models.Job, rate float64) *models.Application {
	f.t.Helper()
	application, err := f.market.Apply(f.ctx, freelancer, job.ID, ApplicationInput{CoverLetter: "I can do this", ProposedRate: rate})
	if err != nil {
		f.t.Fatalf("apply: %v", err)
	}
	return application
}

func (f *fixture) jobStatus(id uuid.UUID) models.JobStatus {
	f.t.Helper()
	job, err := f.store.Jobs().FindByID(f.ctx, id)
	if err != nil {
		f.t.Fatalf("find job: %v", err)
	}
	return job.Status
}

func (f *fixture) applicationStatus(id uuid.UUID) models.ReviewStatus {
	f.t.Helper()
	application, err := f.store.Applications().FindByID(f.ctx, id)
	if err != nil {
		f.t.Fatalf("find application: %v", err)
	}
	return application.Status
}

func (f *fixture) contractsOf(user Actor) []*models.Contract {
	f.t.Helper()
	contracts, err := f.store.Contracts().FindByParty(f.ctx, user.UserID)
	if err != nil {
		f.t.Fatalf("list contracts: %v", err)
	}
	return contracts
}

// failingMessages makes every message insert fail inside transactions.
type failingMessages struct {
	*database.Memory
}

var errInjected = errors.New("injected failure")

func (s failingMessages) Messages() database.MessageStore {
	return brokenMessageStore{s.Memory.Messages()}
}

func (s failingMessages) Transaction(ctx context.Context, fn func(tx database.Store) error) error {
	return s.Memory.Transaction(ctx, func(tx database.Store) error {
		return fn(failingMessages{tx.(*database.Memory)})
	})
}

type brokenMessageStore struct {
	database.MessageStore
}

func (brokenMessageStore) Add(context.Context, *models.ChatMessage) error {
	return errInjected
}

func jobFilter(status models.JobStatus) database.JobFilter {
	return database.JobFilter{Status: status}
}

// lockRecorder logs every row lock taken inside transactions, in order.
type lockRecorder struct {
	*database.Memory
	mu    *sync.Mutex
	locks *[]string
}

func newLockRecorder(m *database.Memory) lockRecorder {
	return lockRecorder{Memory: m, mu: &sync.Mutex{}, locks: &[]string{}}
}

func (s lockRecorder) record(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.locks = append(*s.locks, kind)
}

func (s lockRecorder) taken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), *s.locks...)
}

func (s lockRecorder) Transaction(ctx context.Context, fn func(tx database.Store) error) error {
	return s.Memory.Transaction(ctx, func(tx database.Store) error {
		return fn(lockRecorder{Memory: tx.(*database.Memory), mu: s.mu, locks: s.locks})
	})
}

func (s lockRecorder) Jobs() database.JobStore {
	return lockedJobs{s.Memory.Jobs(), s}
}

func (s lockRecorder) Applications() database.ApplicationStore {
	return lockedApplications{s.Memory.Applications(), s}
}

func (s lockRecorder) Contracts() database.ContractStore {
	return lockedContracts{s.Memory.Contracts(), s}
}

type lockedJobs struct {
	database.JobStore
	rec lockRecorder
}

func (s lockedJobs) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	s.rec.record("job")
	return s.JobStore.FindByIDForUpdate(ctx, id)
}

type lockedApplications struct {
	database.ApplicationStore
	rec lockRecorder
}

func (s lockedApplications) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	s.rec.record("application")
	return s.ApplicationStore.FindByIDForUpdate(ctx, id)
}

type lockedContracts struct {
	database.ContractStore
	rec lockRecorder
}

func (s lockedContracts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	s.rec.record("contract")
	return s.ContractStore.FindByIDForUpdate(ctx, id)
}

func sameOrder(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
