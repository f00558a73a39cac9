package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db              *gorm.DB
	profileRepo     *ProfileRepo
	adminRepo       *AdminRepo
	jobRepo         *JobRepo
	applicationRepo *ApplicationRepo
	contractRepo    *ContractRepo
	messageRepo     *MessageRepo
	inquiryRepo     *InquiryRepo
	submissionRepo  *SubmissionRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:              db,
		profileRepo:     NewProfileRepo(db),
		adminRepo:       NewAdminRepo(db),
		jobRepo:         NewJobRepo(db),
		applicationRepo: NewApplicationRepo(db),
		contractRepo:    NewContractRepo(db),
		messageRepo:     NewMessageRepo(db),
		inquiryRepo:     NewInquiryRepo(db),
		submissionRepo:  NewSubmissionRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) Profiles() ProfileStore {
	return d.profileRepo
}

func (d Database) Admins() AdminStore {
	return d.adminRepo
}

func (d Database) Jobs() JobStore {
	return d.jobRepo
}

func (d Database) Applications() ApplicationStore {
	return d.applicationRepo
}

func (d Database) Contracts() ContractStore {
	return d.contractRepo
}

func (d Database) Messages() MessageStore {
	return d.messageRepo
}

func (d Database) Inquiries() InquiryStore {
	return d.inquiryRepo
}

func (d Database) Submissions() SubmissionStore {
	return d.submissionRepo
}

// Transaction runs fn inside a gorm transaction. Transactions always go to the
// primary, even when read replicas are registered.
func (d Database) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return d.db.WithContext(ctx).Clauses(dbresolver.Write).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Options configures Open.
type Options struct {
	DSN         string
	ReplicaDSNs []string
	LogLevel    logger.LogLevel
}

// Open connects to Postgres (Supabase or plain) and registers read replicas
// when any are configured.
func Open(opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, errs.NewBadRequestError("database DSN cannot be empty")
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if len(opts.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(opts.ReplicaDSNs))
		for _, dsn := range opts.ReplicaDSNs {
			replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every marketplace table together with the unique
// indexes the accept workflow relies on.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp extension: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func notFound(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound(entity)
	}
	return err
}
