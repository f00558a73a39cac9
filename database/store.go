package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
)

// Store is the persistence boundary of the marketplace. Both the gorm-backed
// Database and the in-memory Memory store implement it.
//
// Lookups of a single row return an errs.NewNotFound error when the row does
// not exist. The ForUpdate variants lock the row until the surrounding
// transaction ends.
type Store interface {
	Profiles() ProfileStore
	Admins() AdminStore
	Jobs() JobStore
	Applications() ApplicationStore
	Contracts() ContractStore
	Messages() MessageStore
	Inquiries() InquiryStore
	Submissions() SubmissionStore

	// Transaction runs fn against a Store bound to a single transaction.
	// Returning an error from fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type ProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindAll(ctx context.Context) ([]*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	Grant(ctx context.Context, access *models.AdminAccess) error
}

// JobFilter narrows a job search. Zero values mean "any".
type JobFilter struct {
	Status          models.JobStatus
	Category        string
	ExperienceLevel models.ExperienceLevel
	Skills          []string // matches jobs sharing at least one skill
	Search          string   // case-insensitive match on title or description
	Limit           int
	Offset          int
}

type JobStore interface {
	Add(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Job, error)
	Search(ctx context.Context, filter JobFilter) ([]*models.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error
}

type ApplicationStore interface {
	Add(ctx context.Context, application *models.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Application, error)
	FindByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Application, error)
	Exists(ctx context.Context, jobID, freelancerID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) error
}

type ContractStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	// FindExisting returns the contract for (jobID, freelancerID), or nil.
	FindExisting(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Contract, error)
	// FindByInquiry returns the contract created from inquiryID, or nil.
	FindByInquiry(ctx context.Context, inquiryID uuid.UUID) (*models.Contract, error)
	FindByParty(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
	// CreateIfAbsent inserts contract unless a contract with the same
	// (job_id, freelancer_id) or inquiry_id exists. created is false when
	// the insert was skipped.
	CreateIfAbsent(ctx context.Context, contract *models.Contract) (created bool, err error)
	Update(ctx context.Context, contract *models.Contract) error
}

type MessageStore interface {
	Add(ctx context.Context, message *models.ChatMessage) error
	// FindByContract returns the thread ordered by creation time.
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]*models.ChatMessage, error)
	// MarkRead flags every unread message in the thread not sent by readerID.
	MarkRead(ctx context.Context, contractID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, contractID, readerID uuid.UUID) (int64, error)
}

type InquiryStore interface {
	Add(ctx context.Context, inquiry *models.ProjectInquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProjectInquiry, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProjectInquiry, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.InquiryView, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.InquiryView, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) error
}

type SubmissionStore interface {
	Add(ctx context.Context, submission *models.ProjectSubmission) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProjectSubmission, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProjectSubmission, error)
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]*models.ProjectSubmission, error)
	Update(ctx context.Context, submission *models.ProjectSubmission) error
}
