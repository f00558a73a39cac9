package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db}
}

func (r *SubmissionRepo) Add(ctx context.Context, submission *models.ProjectSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ProjectSubmission, error) {
	var submission models.ProjectSubmission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return nil, notFound("project submission", err)
	}
	return &submission, nil
}

func (r *SubmissionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProjectSubmission, error) {
	var submission models.ProjectSubmission
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, notFound("project submission", err)
	}
	return &submission, nil
}

func (r *SubmissionRepo) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*models.ProjectSubmission, error) {
	var submissions []*models.ProjectSubmission
	err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).Order("created_at desc").Find(&submissions).Error
	return submissions, err
}

// Update persists the review outcome
func (r *SubmissionRepo) Update(ctx context.Context, submission *models.ProjectSubmission) error {
	return r.db.WithContext(ctx).Model(submission).Select("status", "feedback", "updated_at").Updates(submission).Error
}
