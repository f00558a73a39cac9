package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepo struct {
	db *gorm.DB
}

func NewContractRepo(db *gorm.DB) *ContractRepo {
	return &ContractRepo{db}
}

// FindByID returns a contract by its ID
func (r *ContractRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, notFound("contract", err)
	}
	return &contract, nil
}

// FindByIDForUpdate returns a contract and locks its row for the current transaction
func (r *ContractRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, notFound("contract", err)
	}
	return &contract, nil
}

// FindExisting returns the contract for a job and freelancer, or nil if there is none
func (r *ContractRepo) FindExisting(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Contract, error) {
	return r.findOne(ctx, "job_id = ? AND freelancer_id = ?", jobID, freelancerID)
}

// FindByInquiry returns the contract created from an inquiry, or nil if there is none
func (r *ContractRepo) FindByInquiry(ctx context.Context, inquiryID uuid.UUID) (*models.Contract, error) {
	return r.findOne(ctx, "inquiry_id = ?", inquiryID)
}

func (r *ContractRepo) findOne(ctx context.Context, query string, args ...any) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).Where(query, args...).Take(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindByParty returns every contract where the user is client or freelancer
func (r *ContractRepo) FindByParty(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).
		Where("client_id = ? OR freelancer_id = ?", userID, userID).
		Order("created_at desc").
		Find(&contracts).Error
	return contracts, err
}

// CreateIfAbsent relies on idx_contract_job_freelancer and idx_contract_inquiry:
// a conflicting insert affects no rows instead of failing.
func (r *ContractRepo) CreateIfAbsent(ctx context.Context, contract *models.Contract) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(contract)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update persists status and end date changes
func (r *ContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Model(contract).Select("status", "end_date", "updated_at").Updates(contract).Error
}
