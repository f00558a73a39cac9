package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) *JobRepo {
	return &JobRepo{db}
}

// Add inserts a new job into the database
func (r *JobRepo) Add(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID returns a job by its ID
func (r *JobRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound("job", err)
	}
	return &job, nil
}

// FindByIDForUpdate returns a job and locks its row for the current transaction
func (r *JobRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", id).Error
	if err != nil {
		return nil, notFound("job", err)
	}
	return &job, nil
}

// FindByClient returns every job posted by a client, newest first
func (r *JobRepo) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Job, error) {
	var jobs []*models.Job
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at desc").Find(&jobs).Error
	return jobs, err
}

// Search returns the jobs matching filter, newest first
func (r *JobRepo) Search(ctx context.Context, filter JobFilter) ([]*models.Job, error) {
	query := r.db.WithContext(ctx).Model(&models.Job{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ExperienceLevel != "" {
		query = query.Where("experience_level = ?", filter.ExperienceLevel)
	}
	if len(filter.Skills) > 0 {
		query = query.Where("skills_required && ?", pq.StringArray(filter.Skills))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var jobs []*models.Job
	err := query.Order("created_at desc").Find(&jobs).Error
	return jobs, err
}

// UpdateStatus sets the job status; callers validate the transition
func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("job", gorm.ErrRecordNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
