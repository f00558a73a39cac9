package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InquiryRepo struct {
	db *gorm.DB
}

func NewInquiryRepo(db *gorm.DB) *InquiryRepo {
	return &InquiryRepo{db}
}

func (r *InquiryRepo) Add(ctx context.Context, inquiry *models.ProjectInquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *InquiryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ProjectInquiry, error) {
	var inquiry models.ProjectInquiry
	if err := r.db.WithContext(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, notFound("project inquiry", err)
	}
	return &inquiry, nil
}

func (r *InquiryRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProjectInquiry, error) {
	var inquiry models.ProjectInquiry
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&inquiry, "id = ?", id).Error
	if err != nil {
		return nil, notFound("project inquiry", err)
	}
	return &inquiry, nil
}

func (r *InquiryRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.InquiryView, error) {
	return r.listWithNames(ctx, "project_inquiries.client_id = ?", clientID)
}

func (r *InquiryRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.InquiryView, error) {
	return r.listWithNames(ctx, "project_inquiries.freelancer_id = ?", freelancerID)
}

// listWithNames stands in for the denormalized inquiry view: both parties'
// names are joined from profiles.
func (r *InquiryRepo) listWithNames(ctx context.Context, query string, args ...any) ([]*models.InquiryView, error) {
	var views []*models.InquiryView
	err := r.db.WithContext(ctx).
		Model(&models.ProjectInquiry{}).
		Select("project_inquiries.*, COALESCE(c.full_name, '') AS client_name, COALESCE(f.full_name, '') AS freelancer_name").
		Joins("LEFT JOIN profiles c ON c.id = project_inquiries.client_id").
		Joins("LEFT JOIN profiles f ON f.id = project_inquiries.freelancer_id").
		Where(query, args...).
		Order("project_inquiries.created_at desc").
		Scan(&views).Error
	return views, err
}

func (r *InquiryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) error {
	result := r.db.WithContext(ctx).Model(&models.ProjectInquiry{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("project inquiry", gorm.ErrRecordNotFound)
	}
	return nil
}
