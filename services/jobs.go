package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

type JobInput struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Category        string                  `json:"category"`
	SkillsRequired  []string                `json:"skills_required"`
	BudgetMin       float64                 `json:"budget_min"`
	BudgetMax       float64                 `json:"budget_max"`
	BudgetType      models.BudgetType       `json:"budget_type"`
	Duration        *string                 `json:"duration,omitempty"`
	ExperienceLevel *models.ExperienceLevel `json:"experience_level,omitempty"`
}

func (in JobInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return errs.NewMissingRequiredFieldError("title")
	case strings.TrimSpace(in.Description) == "":
		return errs.NewMissingRequiredFieldError("description")
	case strings.TrimSpace(in.Category) == "":
		return errs.NewMissingRequiredFieldError("category")
	case in.BudgetMin < 0:
		return errs.NewInvalidFieldError("budget_min", "must not be negative")
	case in.BudgetMax < in.BudgetMin:
		return errs.NewInvalidFieldError("budget_max", "must be at least budget_min")
	case !in.BudgetType.Valid():
		return errs.NewInvalidFieldError("budget_type", "must be fixed or hourly")
	case in.ExperienceLevel != nil && !in.ExperienceLevel.Valid():
		return errs.NewInvalidFieldError("experience_level", "must be entry, intermediate or expert")
	}
	return nil
}

func normalizeSkills(skills []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (m *Marketplace) CreateJob(ctx context.Context, actor Actor, in JobInput) (*models.Job, error) {
	if err := requireRole(actor, models.RoleClient); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:              uuid.New(),
		ClientID:        actor.UserID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Category:        strings.TrimSpace(in.Category),
		SkillsRequired:  normalizeSkills(in.SkillsRequired),
		BudgetMin:       in.BudgetMin,
		BudgetMax:       in.BudgetMax,
		BudgetType:      in.BudgetType,
		Duration:        in.Duration,
		ExperienceLevel: in.ExperienceLevel,
		Status:          models.JobStatusOpen,
	}
	if err := m.store.Jobs().Add(ctx, job); err != nil {
		return nil, errs.NewDatabaseError("create", "job", err)
	}

	var out outbox
	if err := out.event(realtime.TopicJobs, realtime.ActionInsert, job.ID, job, map[string]string{"client_id": actor.UserID.String()}); err != nil {
		return nil, err
	}
	m.flush(ctx, &out)
	return job, nil
}

// SearchJobs lists jobs matching filter. An empty status means open jobs.
func (m *Marketplace) SearchJobs(ctx context.Context, filter database.JobFilter) ([]*models.Job, error) {
	if filter.Status == "" {
		filter.Status = models.JobStatusOpen
	} else if !filter.Status.Valid() {
		return nil, errs.NewInvalidFieldError("status", "unknown job status")
	}
	if filter.ExperienceLevel != "" && !filter.ExperienceLevel.Valid() {
		return nil, errs.NewInvalidFieldError("experience_level", "must be entry, intermediate or expert")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultSearchLimit
	}
	if filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Skills = normalizeSkills(filter.Skills)

	jobs, err := m.store.Jobs().Search(ctx, filter)
	if err != nil {
		return nil, errs.NewDatabaseError("search", "jobs", err)
	}
	return jobs, nil
}

func (m *Marketplace) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := m.store.Jobs().FindByID(ctx, jobID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "job", err)
	}
	return job, nil
}

func (m *Marketplace) ListClientJobs(ctx context.Context, actor Actor) ([]*models.Job, error) {
	jobs, err := m.store.Jobs().FindByClient(ctx, actor.UserID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "jobs", err)
	}
	return jobs, nil
}

// CancelJob closes an open job and rejects its pending applications.
func (m *Marketplace) CancelJob(ctx context.Context, actor Actor, jobID uuid.UUID) (*models.Job, error) {
	var (
		job *models.Job
		out outbox
	)
	err := m.store.Transaction(ctx, func(tx database.Store) error {
		var err error
		job, err = tx.Jobs().FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return errs.NewDatabaseError("find", "job", err)
		}
		if job.ClientID != actor.UserID {
			return errs.NewNotOwnerError("job")
		}
		if err := moveJob(ctx, tx, job, models.JobStatusCancelled, &out); err != nil {
			return err
		}

		applications, err := tx.Applications().FindByJob(ctx, job.ID)
		if err != nil {
			return errs.NewDatabaseError("list", "applications", err)
		}
		for _, application := range applications {
			if application.Status != models.ReviewPending {
				continue
			}
			if err := tx.Applications().UpdateStatus(ctx, application.ID, models.ReviewRejected); err != nil {
				return errs.NewDatabaseError("update", "application", err)
			}
			application.Status = models.ReviewRejected
			if err := out.event(realtime.TopicApplications, realtime.ActionUpdate, application.ID, application, map[string]string{
				"job_id":        job.ID.String(),
				"freelancer_id": application.FreelancerID.String(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.flush(ctx, &out)
	return job, nil
}
