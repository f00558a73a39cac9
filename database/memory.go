package database

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
)

var errForeignKey = errors.New("violates foreign key constraint")

// Memory is a Store kept in process memory, used by DB_TYPE=memory and by
// tests. It mirrors the Postgres schema's unique and foreign key rules.
// Transactions are serialized against every other access and roll back by
// restoring a snapshot, so nothing outside a transaction interleaves with it.
type Memory struct {
	*memoryState
	// tx marks the view handed to a Transaction callback; it already holds txMu.
	tx bool
}

type memoryState struct {
	mu   sync.RWMutex
	txMu sync.RWMutex
	data memoryData
	now  func() time.Time
}

type memoryData struct {
	profiles     []models.Profile
	admins       []models.AdminAccess
	jobs         []models.Job
	applications []models.Application
	contracts    []models.Contract
	messages     []models.ChatMessage
	inquiries    []models.ProjectInquiry
	submissions  []models.ProjectSubmission
}

func (d memoryData) clone() memoryData {
	return memoryData{
		profiles:     slices.Clone(d.profiles),
		admins:       slices.Clone(d.admins),
		jobs:         slices.Clone(d.jobs),
		applications: slices.Clone(d.applications),
		contracts:    slices.Clone(d.contracts),
		messages:     slices.Clone(d.messages),
		inquiries:    slices.Clone(d.inquiries),
		submissions:  slices.Clone(d.submissions),
	}
}

// MemoryOption customizes NewMemory.
type MemoryOption func(*Memory)

// MemoryWithClock overrides the clock used for created_at/updated_at.
func MemoryWithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{memoryState: &memoryState{now: func() time.Time { return time.Now().UTC() }}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Profiles() ProfileStore         { return memProfiles{m} }
func (m *Memory) Admins() AdminStore             { return memAdmins{m} }
func (m *Memory) Jobs() JobStore                 { return memJobs{m} }
func (m *Memory) Applications() ApplicationStore { return memApplications{m} }
func (m *Memory) Contracts() ContractStore       { return memContracts{m} }
func (m *Memory) Messages() MessageStore         { return memMessages{m} }
func (m *Memory) Inquiries() InquiryStore        { return memInquiries{m} }
func (m *Memory) Submissions() SubmissionStore   { return memSubmissions{m} }

func (m *Memory) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if m.tx {
		return fn(m)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	snapshot := m.data.clone()
	m.mu.RUnlock()

	if err := fn(&Memory{memoryState: m.memoryState, tx: true}); err != nil {
		m.mu.Lock()
		m.data = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// read and write lock the data. Outside a transaction they also wait for any
// running transaction to finish.
func (m *Memory) read() func() {
	if !m.tx {
		m.txMu.RLock()
	}
	m.mu.RLock()
	return func() {
		m.mu.RUnlock()
		if !m.tx {
			m.txMu.RUnlock()
		}
	}
}

func (m *Memory) write() func() {
	if !m.tx {
		m.txMu.RLock()
	}
	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		if !m.tx {
			m.txMu.RUnlock()
		}
	}
}

func (m *Memory) stamp(created, updated *time.Time) {
	now := m.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func find[T any](rows []T, match func(T) bool) (int, bool) {
	for i, row := range rows {
		if match(row) {
			return i, true
		}
	}
	return -1, false
}

func collect[T any](rows []T, match func(T) bool) []*T {
	out := make([]*T, 0)
	for _, row := range rows {
		if match(row) {
			row := row
			out = append(out, &row)
		}
	}
	return out
}

func newestFirst[T any](rows []*T, createdAt func(*T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		return createdAt(rows[i]).After(createdAt(rows[j]))
	})
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Profiles

type memProfiles struct{ m *Memory }

func (s memProfiles) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.profiles, func(p models.Profile) bool { return p.ID == id })
	if !ok {
		return nil, errs.NewNotFound("profile")
	}
	profile := s.m.data.profiles[i]
	return &profile, nil
}

func (s memProfiles) FindAll(_ context.Context) ([]*models.Profile, error) {
	defer s.m.read()()
	profiles := collect(s.m.data.profiles, func(models.Profile) bool { return true })
	newestFirst(profiles, func(p *models.Profile) time.Time { return p.CreatedAt })
	return profiles, nil
}

func (s memProfiles) Save(_ context.Context, profile *models.Profile) error {
	defer s.m.write()()
	profile.Skills = slices.Clone(profile.Skills)
	if i, ok := find(s.m.data.profiles, func(p models.Profile) bool { return p.ID == profile.ID }); ok {
		profile.CreatedAt = s.m.data.profiles[i].CreatedAt
		s.m.stamp(nil, &profile.UpdatedAt)
		s.m.data.profiles[i] = *profile
		return nil
	}
	if _, taken := find(s.m.data.profiles, func(p models.Profile) bool { return p.Email == profile.Email }); taken {
		return errs.NewUniqueConstraintViolationError("profiles", "email", nil)
	}
	s.m.stamp(&profile.CreatedAt, &profile.UpdatedAt)
	s.m.data.profiles = append(s.m.data.profiles, *profile)
	return nil
}

// Admins

type memAdmins struct{ m *Memory }

func (s memAdmins) IsAdmin(_ context.Context, userID uuid.UUID) (bool, error) {
	defer s.m.read()()
	_, ok := find(s.m.data.admins, func(a models.AdminAccess) bool { return a.UserID == userID })
	return ok, nil
}

func (s memAdmins) Grant(_ context.Context, access *models.AdminAccess) error {
	defer s.m.write()()
	if _, ok := find(s.m.data.admins, func(a models.AdminAccess) bool { return a.UserID == access.UserID }); ok {
		return nil
	}
	s.m.stamp(&access.CreatedAt, nil)
	s.m.data.admins = append(s.m.data.admins, *access)
	return nil
}

// Jobs

type memJobs struct{ m *Memory }

func (s memJobs) Add(_ context.Context, job *models.Job) error {
	defer s.m.write()()
	assignID(&job.ID)
	if job.Status == "" {
		job.Status = models.JobStatusOpen
	}
	job.SkillsRequired = slices.Clone(job.SkillsRequired)
	s.m.stamp(&job.CreatedAt, &job.UpdatedAt)
	s.m.data.jobs = append(s.m.data.jobs, *job)
	return nil
}

func (s memJobs) FindByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.jobs, func(j models.Job) bool { return j.ID == id })
	if !ok {
		return nil, errs.NewNotFound("job")
	}
	job := s.m.data.jobs[i]
	return &job, nil
}

func (s memJobs) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return s.FindByID(ctx, id)
}

func (s memJobs) FindByClient(_ context.Context, clientID uuid.UUID) ([]*models.Job, error) {
	defer s.m.read()()
	jobs := collect(s.m.data.jobs, func(j models.Job) bool { return j.ClientID == clientID })
	newestFirst(jobs, func(j *models.Job) time.Time { return j.CreatedAt })
	return jobs, nil
}

func (s memJobs) Search(_ context.Context, filter JobFilter) ([]*models.Job, error) {
	defer s.m.read()()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	jobs := collect(s.m.data.jobs, func(j models.Job) bool {
		if filter.Status != "" && j.Status != filter.Status {
			return false
		}
		if filter.Category != "" && j.Category != filter.Category {
			return false
		}
		if filter.ExperienceLevel != "" && (j.ExperienceLevel == nil || *j.ExperienceLevel != filter.ExperienceLevel) {
			return false
		}
		if len(filter.Skills) > 0 && !slices.ContainsFunc(filter.Skills, func(skill string) bool {
			return slices.Contains(j.SkillsRequired, skill)
		}) {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) && !strings.Contains(strings.ToLower(j.Description), search) {
			return false
		}
		return true
	})
	newestFirst(jobs, func(j *models.Job) time.Time { return j.CreatedAt })

	if filter.Offset > 0 {
		if filter.Offset >= len(jobs) {
			return []*models.Job{}, nil
		}
		jobs = jobs[filter.Offset:]
	}
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}

func (s memJobs) UpdateStatus(_ context.Context, id uuid.UUID, status models.JobStatus) error {
	defer s.m.write()()
	i, ok := find(s.m.data.jobs, func(j models.Job) bool { return j.ID == id })
	if !ok {
		return errs.NewNotFound("job")
	}
	s.m.data.jobs[i].Status = status
	s.m.stamp(nil, &s.m.data.jobs[i].UpdatedAt)
	return nil
}

// Applications

type memApplications struct{ m *Memory }

func (s memApplications) Add(_ context.Context, application *models.Application) error {
	defer s.m.write()()
	if _, ok := find(s.m.data.jobs, func(j models.Job) bool { return j.ID == application.JobID }); !ok {
		return errs.NewDatabaseError("create", "application", errForeignKey)
	}
	if _, dup := find(s.m.data.applications, func(a models.Application) bool {
		return a.JobID == application.JobID && a.FreelancerID == application.FreelancerID
	}); dup {
		return errs.NewUniqueConstraintViolationError("job_applications", "job_id,freelancer_id", nil)
	}
	assignID(&application.ID)
	if application.Status == "" {
		application.Status = models.ReviewPending
	}
	s.m.stamp(&application.CreatedAt, &application.UpdatedAt)
	stored := *application
	stored.Job = nil
	s.m.data.applications = append(s.m.data.applications, stored)
	return nil
}

func (s memApplications) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.applications, func(a models.Application) bool { return a.ID == id })
	if !ok {
		return nil, errs.NewNotFound("application")
	}
	application := s.m.data.applications[i]
	return &application, nil
}

func (s memApplications) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.FindByID(ctx, id)
}

func (s memApplications) FindByJob(_ context.Context, jobID uuid.UUID) ([]*models.Application, error) {
	defer s.m.read()()
	return collect(s.m.data.applications, func(a models.Application) bool { return a.JobID == jobID }), nil
}

func (s memApplications) FindByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]*models.Application, error) {
	defer s.m.read()()
	applications := collect(s.m.data.applications, func(a models.Application) bool { return a.FreelancerID == freelancerID })
	for _, application := range applications {
		if i, ok := find(s.m.data.jobs, func(j models.Job) bool { return j.ID == application.JobID }); ok {
			job := s.m.data.jobs[i]
			application.Job = &job
		}
	}
	newestFirst(applications, func(a *models.Application) time.Time { return a.CreatedAt })
	return applications, nil
}

func (s memApplications) Exists(_ context.Context, jobID, freelancerID uuid.UUID) (bool, error) {
	defer s.m.read()()
	_, ok := find(s.m.data.applications, func(a models.Application) bool {
		return a.JobID == jobID && a.FreelancerID == freelancerID
	})
	return ok, nil
}

func (s memApplications) UpdateStatus(_ context.Context, id uuid.UUID, status models.ReviewStatus) error {
	defer s.m.write()()
	i, ok := find(s.m.data.applications, func(a models.Application) bool { return a.ID == id })
	if !ok {
		return errs.NewNotFound("application")
	}
	s.m.data.applications[i].Status = status
	s.m.stamp(nil, &s.m.data.applications[i].UpdatedAt)
	return nil
}

// Contracts

type memContracts struct{ m *Memory }

func (s memContracts) FindByID(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.contracts, func(c models.Contract) bool { return c.ID == id })
	if !ok {
		return nil, errs.NewNotFound("contract")
	}
	contract := s.m.data.contracts[i]
	return &contract, nil
}

func (s memContracts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.FindByID(ctx, id)
}

func (s memContracts) FindExisting(_ context.Context, jobID, freelancerID uuid.UUID) (*models.Contract, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.contracts, func(c models.Contract) bool {
		return c.JobID != nil && *c.JobID == jobID && c.FreelancerID == freelancerID
	})
	if !ok {
		return nil, nil
	}
	contract := s.m.data.contracts[i]
	return &contract, nil
}

func (s memContracts) FindByInquiry(_ context.Context, inquiryID uuid.UUID) (*models.Contract, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.contracts, func(c models.Contract) bool {
		return c.InquiryID != nil && *c.InquiryID == inquiryID
	})
	if !ok {
		return nil, nil
	}
	contract := s.m.data.contracts[i]
	return &contract, nil
}

func (s memContracts) FindByParty(_ context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	defer s.m.read()()
	contracts := collect(s.m.data.contracts, func(c models.Contract) bool { return c.HasParty(userID) })
	newestFirst(contracts, func(c *models.Contract) time.Time { return c.CreatedAt })
	return contracts, nil
}

func (s memContracts) CreateIfAbsent(_ context.Context, contract *models.Contract) (bool, error) {
	defer s.m.write()()
	if contract.ClientID == contract.FreelancerID {
		return false, errs.NewBadRequestError("contract parties must be distinct")
	}
	if _, conflict := find(s.m.data.contracts, func(c models.Contract) bool {
		sameJob := c.JobID != nil && contract.JobID != nil && *c.JobID == *contract.JobID && c.FreelancerID == contract.FreelancerID
		sameInquiry := c.InquiryID != nil && contract.InquiryID != nil && *c.InquiryID == *contract.InquiryID
		return sameJob || sameInquiry
	}); conflict {
		return false, nil
	}
	assignID(&contract.ID)
	if contract.Status == "" {
		contract.Status = models.ContractActive
	}
	s.m.stamp(&contract.CreatedAt, &contract.UpdatedAt)
	s.m.data.contracts = append(s.m.data.contracts, *contract)
	return true, nil
}

func (s memContracts) Update(_ context.Context, contract *models.Contract) error {
	defer s.m.write()()
	i, ok := find(s.m.data.contracts, func(c models.Contract) bool { return c.ID == contract.ID })
	if !ok {
		return errs.NewNotFound("contract")
	}
	stored := &s.m.data.contracts[i]
	stored.Status = contract.Status
	stored.EndDate = contract.EndDate
	s.m.stamp(nil, &stored.UpdatedAt)
	contract.UpdatedAt = stored.UpdatedAt
	return nil
}

// Messages

type memMessages struct{ m *Memory }

func (s memMessages) Add(_ context.Context, message *models.ChatMessage) error {
	defer s.m.write()()
	if _, ok := find(s.m.data.contracts, func(c models.Contract) bool { return c.ID == message.ContractID }); !ok {
		return errs.NewDatabaseError("create", "chat message", errForeignKey)
	}
	assignID(&message.ID)
	s.m.stamp(&message.CreatedAt, nil)
	stored := *message
	stored.Contract = nil
	s.m.data.messages = append(s.m.data.messages, stored)
	return nil
}

func (s memMessages) FindByContract(_ context.Context, contractID uuid.UUID) ([]*models.ChatMessage, error) {
	defer s.m.read()()
	messages := collect(s.m.data.messages, func(msg models.ChatMessage) bool { return msg.ContractID == contractID })
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (s memMessages) MarkRead(_ context.Context, contractID, readerID uuid.UUID) (int64, error) {
	defer s.m.write()()
	var flipped int64
	for i := range s.m.data.messages {
		msg := &s.m.data.messages[i]
		if msg.ContractID == contractID && msg.SenderID != readerID && !msg.Read {
			msg.Read = true
			flipped++
		}
	}
	return flipped, nil
}

func (s memMessages) CountUnread(_ context.Context, contractID, readerID uuid.UUID) (int64, error) {
	defer s.m.read()()
	var count int64
	for _, msg := range s.m.data.messages {
		if msg.ContractID == contractID && msg.SenderID != readerID && !msg.Read {
			count++
		}
	}
	return count, nil
}

// Inquiries

type memInquiries struct{ m *Memory }

func (s memInquiries) Add(_ context.Context, inquiry *models.ProjectInquiry) error {
	defer s.m.write()()
	assignID(&inquiry.ID)
	if inquiry.Status == "" {
		inquiry.Status = models.ReviewPending
	}
	s.m.stamp(&inquiry.CreatedAt, &inquiry.UpdatedAt)
	s.m.data.inquiries = append(s.m.data.inquiries, *inquiry)
	return nil
}

func (s memInquiries) FindByID(_ context.Context, id uuid.UUID) (*models.ProjectInquiry, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.inquiries, func(q models.ProjectInquiry) bool { return q.ID == id })
	if !ok {
		return nil, errs.NewNotFound("project inquiry")
	}
	inquiry := s.m.data.inquiries[i]
	return &inquiry, nil
}

func (s memInquiries) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProjectInquiry, error) {
	return s.FindByID(ctx, id)
}

func (s memInquiries) ListByClient(_ context.Context, clientID uuid.UUID) ([]*models.InquiryView, error) {
	return s.listWithNames(func(q models.ProjectInquiry) bool { return q.ClientID == clientID }), nil
}

func (s memInquiries) ListByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]*models.InquiryView, error) {
	return s.listWithNames(func(q models.ProjectInquiry) bool { return q.FreelancerID == freelancerID }), nil
}

func (s memInquiries) listWithNames(match func(models.ProjectInquiry) bool) []*models.InquiryView {
	defer s.m.read()()
	name := func(id uuid.UUID) string {
		if i, ok := find(s.m.data.profiles, func(p models.Profile) bool { return p.ID == id }); ok {
			return s.m.data.profiles[i].FullName
		}
		return ""
	}
	views := make([]*models.InquiryView, 0)
	for _, inquiry := range collect(s.m.data.inquiries, match) {
		views = append(views, &models.InquiryView{
			ProjectInquiry: *inquiry,
			ClientName:     name(inquiry.ClientID),
			FreelancerName: name(inquiry.FreelancerID),
		})
	}
	newestFirst(views, func(v *models.InquiryView) time.Time { return v.CreatedAt })
	return views
}

func (s memInquiries) UpdateStatus(_ context.Context, id uuid.UUID, status models.ReviewStatus) error {
	defer s.m.write()()
	i, ok := find(s.m.data.inquiries, func(q models.ProjectInquiry) bool { return q.ID == id })
	if !ok {
		return errs.NewNotFound("project inquiry")
	}
	s.m.data.inquiries[i].Status = status
	s.m.stamp(nil, &s.m.data.inquiries[i].UpdatedAt)
	return nil
}

// Submissions

type memSubmissions struct{ m *Memory }

func (s memSubmissions) Add(_ context.Context, submission *models.ProjectSubmission) error {
	defer s.m.write()()
	if _, ok := find(s.m.data.contracts, func(c models.Contract) bool { return c.ID == submission.ContractID }); !ok {
		return errs.NewDatabaseError("create", "project submission", errForeignKey)
	}
	assignID(&submission.ID)
	if submission.Status == "" {
		submission.Status = models.ReviewPending
	}
	s.m.stamp(&submission.CreatedAt, &submission.UpdatedAt)
	stored := *submission
	stored.Contract = nil
	s.m.data.submissions = append(s.m.data.submissions, stored)
	return nil
}

func (s memSubmissions) FindByID(_ context.Context, id uuid.UUID) (*models.ProjectSubmission, error) {
	defer s.m.read()()
	i, ok := find(s.m.data.submissions, func(sub models.ProjectSubmission) bool { return sub.ID == id })
	if !ok {
		return nil, errs.NewNotFound("project submission")
	}
	submission := s.m.data.submissions[i]
	return &submission, nil
}

func (s memSubmissions) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProjectSubmission, error) {
	return s.FindByID(ctx, id)
}

func (s memSubmissions) FindByContract(_ context.Context, contractID uuid.UUID) ([]*models.ProjectSubmission, error) {
	defer s.m.read()()
	submissions := collect(s.m.data.submissions, func(sub models.ProjectSubmission) bool { return sub.ContractID == contractID })
	newestFirst(submissions, func(sub *models.ProjectSubmission) time.Time { return sub.CreatedAt })
	return submissions, nil
}

func (s memSubmissions) Update(_ context.Context, submission *models.ProjectSubmission) error {
	defer s.m.write()()
	i, ok := find(s.m.data.submissions, func(sub models.ProjectSubmission) bool { return sub.ID == submission.ID })
	if !ok {
		return errs.NewNotFound("project submission")
	}
	stored := &s.m.data.submissions[i]
	stored.Status = submission.Status
	stored.Feedback = submission.Feedback
	s.m.stamp(nil, &stored.UpdatedAt)
	submission.UpdatedAt = stored.UpdatedAt
	return nil
}
