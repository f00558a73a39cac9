package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepo struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) *ApplicationRepo {
	return &ApplicationRepo{db}
}

// Add inserts a new application; a second application for the same
// (job, freelancer) fails on idx_application_job_freelancer
func (r *ApplicationRepo) Add(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

// FindByID returns an application by its ID
func (r *ApplicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, notFound("application", err)
	}
	return &application, nil
}

// FindByIDForUpdate returns an application and locks its row, so concurrent
// reviews of the same application run one after the other
func (r *ApplicationRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&application, "id = ?", id).Error
	if err != nil {
		return nil, notFound("application", err)
	}
	return &application, nil
}

// FindByJob returns the applications for a job, oldest first
func (r *ApplicationRepo) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Application, error) {
	var applications []*models.Application
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at asc").Find(&applications).Error
	return applications, err
}

// FindByFreelancer returns a freelancer's applications with their jobs
func (r *ApplicationRepo) FindByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Application, error) {
	var applications []*models.Application
	err := r.db.WithContext(ctx).Preload("Job").Where("freelancer_id = ?", freelancerID).Order("created_at desc").Find(&applications).Error
	return applications, err
}

// Exists checks if a freelancer has already applied to a job
func (r *ApplicationRepo) Exists(ctx context.Context, jobID, freelancerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND freelancer_id = ?", jobID, freelancerID).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus sets the status and bumps updated_at
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("application", gorm.ErrRecordNotFound)
	}
	return nil
}
