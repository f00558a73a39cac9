package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db}
}

// FindByID returns a profile by its ID
func (r *ProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, notFound("profile", err)
	}
	return &profile, nil
}

// FindAll returns all profiles, newest first
func (r *ProfileRepo) FindAll(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&profiles).Error
	return profiles, err
}

// Save inserts the profile or overwrites the editable columns of an existing one
func (r *ProfileRepo) Save(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "role", "bio", "avatar_url", "skills", "hourly_rate", "metadata", "updated_at"}),
	}).Create(profile).Error
}

type AdminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db}
}

// IsAdmin reports whether the user has a row in admin_access
func (r *AdminRepo) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminAccess{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// Grant adds admin access; granting twice is a no-op
func (r *AdminRepo) Grant(ctx context.Context, access *models.AdminAccess) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(access).Error
}
