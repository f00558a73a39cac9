package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
)

func seedJob(t *testing.T, m *Memory, job *models.Job) *models.Job {
	t.Helper()
	if job.ClientID == uuid.Nil {
		job.ClientID = uuid.New()
	}
	if job.BudgetType == "" {
		job.BudgetType = models.BudgetFixed
	}
	if err := m.Jobs().Add(context.Background(), job); err != nil {
		t.Fatalf("add job: %v", err)
	}
	return job
}

func TestMemoryApplicationUniquePerJobAndFreelancer(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := seedJob(t, m, &models.Job{Title: "API"})
	freelancer := uuid.New()

	first := &models.Application{JobID: job.ID, FreelancerID: freelancer, ProposedRate: 40}
	if err := m.Applications().Add(ctx, first); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if first.Status != models.ReviewPending {
		t.Fatalf("status = %q, want pending", first.Status)
	}

	err := m.Applications().Add(ctx, &models.Application{JobID: job.ID, FreelancerID: freelancer})
	if !errs.IsAlreadyExists(err) {
		t.Fatalf("duplicate add err = %v, want already exists", err)
	}

	err = m.Applications().Add(ctx, &models.Application{JobID: uuid.New(), FreelancerID: freelancer})
	if errs.StatusOf(err) != 400 {
		t.Fatalf("unknown job err = %v, want 400", err)
	}
}

func TestMemoryContractCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	jobID, inquiryID := uuid.New(), uuid.New()
	client, freelancer := uuid.New(), uuid.New()

	created, err := m.Contracts().CreateIfAbsent(ctx, &models.Contract{JobID: &jobID, ClientID: client, FreelancerID: freelancer})
	if err != nil || !created {
		t.Fatalf("first create = %v, %v", created, err)
	}
	created, err = m.Contracts().CreateIfAbsent(ctx, &models.Contract{JobID: &jobID, ClientID: client, FreelancerID: freelancer})
	if err != nil || created {
		t.Fatalf("duplicate job contract = %v, %v", created, err)
	}

	created, err = m.Contracts().CreateIfAbsent(ctx, &models.Contract{InquiryID: &inquiryID, ClientID: client, FreelancerID: freelancer})
	if err != nil || !created {
		t.Fatalf("inquiry contract = %v, %v", created, err)
	}
	created, err = m.Contracts().CreateIfAbsent(ctx, &models.Contract{InquiryID: &inquiryID, ClientID: client, FreelancerID: freelancer})
	if err != nil || created {
		t.Fatalf("second inquiry contract = %v, %v", created, err)
	}

	existing, err := m.Contracts().FindExisting(ctx, jobID, freelancer)
	if err != nil || existing == nil || existing.Status != models.ContractActive {
		t.Fatalf("FindExisting = %+v, %v", existing, err)
	}
	missing, err := m.Contracts().FindExisting(ctx, uuid.New(), freelancer)
	if err != nil || missing != nil {
		t.Fatalf("FindExisting on unknown job = %+v, %v", missing, err)
	}

	contracts, _ := m.Contracts().FindByParty(ctx, client)
	if len(contracts) != 2 {
		t.Fatalf("client has %d contracts, want 2", len(contracts))
	}
}

func TestMemoryMarkReadOnlyFlipsCounterpartMessages(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	client, freelancer := uuid.New(), uuid.New()
	contract := &models.Contract{ClientID: client, FreelancerID: freelancer}
	if _, err := m.Contracts().CreateIfAbsent(ctx, contract); err != nil {
		t.Fatal(err)
	}

	for _, sender := range []uuid.UUID{client, freelancer, freelancer} {
		if err := m.Messages().Add(ctx, &models.ChatMessage{ContractID: contract.ID, SenderID: sender, Message: "hi"}); err != nil {
			t.Fatal(err)
		}
	}

	unread, _ := m.Messages().CountUnread(ctx, contract.ID, client)
	if unread != 2 {
		t.Fatalf("client unread = %d, want 2", unread)
	}
	flipped, _ := m.Messages().MarkRead(ctx, contract.ID, client)
	if flipped != 2 {
		t.Fatalf("flipped = %d, want 2", flipped)
	}

	thread, _ := m.Messages().FindByContract(ctx, contract.ID)
	for _, msg := range thread {
		if msg.SenderID == client && msg.Read {
			t.Fatalf("reader's own message was marked read")
		}
	}
	unread, _ = m.Messages().CountUnread(ctx, contract.ID, freelancer)
	if unread != 1 {
		t.Fatalf("freelancer unread = %d, want 1", unread)
	}
}

func TestMemoryMessagesOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(MemoryWithClock(func() time.Time { return base }))
	contract := &models.Contract{ClientID: uuid.New(), FreelancerID: uuid.New()}
	m.Contracts().CreateIfAbsent(ctx, contract)

	late := &models.ChatMessage{ContractID: contract.ID, SenderID: contract.ClientID, Message: "late", CreatedAt: base.Add(time.Minute)}
	early := &models.ChatMessage{ContractID: contract.ID, SenderID: contract.ClientID, Message: "early"}
	m.Messages().Add(ctx, late)
	m.Messages().Add(ctx, early)

	thread, _ := m.Messages().FindByContract(ctx, contract.ID)
	if len(thread) != 2 || thread[0].Message != "early" || thread[1].Message != "late" {
		t.Fatalf("thread order = %v", thread)
	}
}

func TestMemoryTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := seedJob(t, m, &models.Job{Title: "Rollback"})
	boom := errors.New("boom")

	err := m.Transaction(ctx, func(tx Store) error {
		if err := tx.Jobs().UpdateStatus(ctx, job.ID, models.JobStatusInProgress); err != nil {
			return err
		}
		if _, err := tx.Contracts().CreateIfAbsent(ctx, &models.Contract{JobID: &job.ID, ClientID: job.ClientID, FreelancerID: uuid.New()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction err = %v", err)
	}

	got, _ := m.Jobs().FindByID(ctx, job.ID)
	if got.Status != models.JobStatusOpen {
		t.Fatalf("job status = %q after rollback", got.Status)
	}
	contracts, _ := m.Contracts().FindByParty(ctx, job.ClientID)
	if len(contracts) != 0 {
		t.Fatalf("contract survived rollback")
	}
}

func TestMemoryRollbackKeepsWritesMadeOutsideTransaction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := seedJob(t, m, &models.Job{Title: "Concurrent"})
	boom := errors.New("boom")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Transaction(ctx, func(tx Store) error {
			if err := tx.Jobs().UpdateStatus(ctx, job.ID, models.JobStatusCancelled); err != nil {
				return err
			}
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	added := make(chan error, 1)
	go func() {
		added <- m.Applications().Add(ctx, &models.Application{JobID: job.ID, FreelancerID: uuid.New(), ProposedRate: 30})
	}()
	select {
	case err := <-added:
		t.Fatalf("write interleaved with a running transaction: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-done; !errors.Is(err, boom) {
		t.Fatalf("Transaction err = %v", err)
	}
	if err := <-added; err != nil {
		t.Fatalf("add after rollback: %v", err)
	}

	applications, _ := m.Applications().FindByJob(ctx, job.ID)
	if len(applications) != 1 {
		t.Fatalf("applications after unrelated rollback = %d, want 1", len(applications))
	}
	if got, _ := m.Jobs().FindByID(ctx, job.ID); got.Status != models.JobStatusOpen {
		t.Fatalf("job status = %q after rollback", got.Status)
	}
}

func TestMemoryNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := seedJob(t, m, &models.Job{Title: "Nested"})

	err := m.Transaction(ctx, func(tx Store) error {
		return tx.Transaction(ctx, func(inner Store) error {
			return inner.Jobs().UpdateStatus(ctx, job.ID, models.JobStatusInProgress)
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Jobs().FindByID(ctx, job.ID); got.Status != models.JobStatusInProgress {
		t.Fatalf("job status = %q", got.Status)
	}
}

func TestMemorySearchFilters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	expert := models.ExperienceExpert
	seedJob(t, m, &models.Job{Title: "Go backend", Category: "dev", SkillsRequired: []string{"go", "sql"}, ExperienceLevel: &expert})
	seedJob(t, m, &models.Job{Title: "Logo design", Category: "design", SkillsRequired: []string{"figma"}})
	closed := seedJob(t, m, &models.Job{Title: "Old Go job", Category: "dev", SkillsRequired: []string{"go"}})
	m.Jobs().UpdateStatus(ctx, closed.ID, models.JobStatusCancelled)

	tests := []struct {
		name   string
		filter JobFilter
		want   int
	}{
		{"all", JobFilter{}, 3},
		{"open only", JobFilter{Status: models.JobStatusOpen}, 2},
		{"category", JobFilter{Category: "dev"}, 2},
		{"skill overlap", JobFilter{Skills: []string{"rust", "go"}}, 2},
		{"search is case insensitive", JobFilter{Search: "LOGO"}, 1},
		{"experience", JobFilter{ExperienceLevel: models.ExperienceExpert}, 1},
		{"limit", JobFilter{Limit: 1}, 1},
		{"offset past end", JobFilter{Offset: 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := m.Jobs().Search(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(jobs) != tt.want {
				t.Fatalf("got %d jobs, want %d", len(jobs), tt.want)
			}
		})
	}
}

func TestMemoryInquiryViewsCarryNames(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	client := &models.Profile{ID: uuid.New(), Email: "c@example.com", FullName: "Casey", Role: models.RoleClient}
	freelancer := &models.Profile{ID: uuid.New(), Email: "f@example.com", FullName: "Fran", Role: models.RoleFreelancer}
	m.Profiles().Save(ctx, client)
	m.Profiles().Save(ctx, freelancer)

	if err := m.Inquiries().Add(ctx, &models.ProjectInquiry{ClientID: client.ID, FreelancerID: freelancer.ID, ProjectDescription: "site"}); err != nil {
		t.Fatal(err)
	}

	views, _ := m.Inquiries().ListByFreelancer(ctx, freelancer.ID)
	if len(views) != 1 || views[0].ClientName != "Casey" || views[0].FreelancerName != "Fran" {
		t.Fatalf("views = %+v", views)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := seedJob(t, m, &models.Job{Title: "Original"})

	got, _ := m.Jobs().FindByID(ctx, job.ID)
	got.Title = "Mutated"

	again, _ := m.Jobs().FindByID(ctx, job.ID)
	if again.Title != "Original" {
		t.Fatalf("store leaked a reference: title = %q", again.Title)
	}
}

func TestMemoryProfileEmailUnique(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Profiles().Save(ctx, &models.Profile{ID: uuid.New(), Email: "a@example.com", Role: models.RoleClient})
	err := m.Profiles().Save(ctx, &models.Profile{ID: uuid.New(), Email: "a@example.com", Role: models.RoleClient})
	if !errs.IsAlreadyExists(err) {
		t.Fatalf("err = %v, want already exists", err)
	}
}
