package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"gorm.io/datatypes"
)

type ProfileInput struct {
	FullName   string          `json:"full_name"`
	Role       models.Role     `json:"role"`
	Bio        *string         `json:"bio,omitempty"`
	AvatarURL  *string         `json:"avatar_url,omitempty"`
	Skills     []string        `json:"skills"`
	HourlyRate *float64        `json:"hourly_rate,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// ResolveActor establishes the session role of userID. The stored profile
// role wins; claimRole from the token is only used before a profile exists.
func (m *Marketplace) ResolveActor(ctx context.Context, userID uuid.UUID, claimRole string) (Actor, error) {
	actor := Actor{UserID: userID}
	profile, err := m.store.Profiles().FindByID(ctx, userID)
	switch {
	case err == nil:
		actor.Role = profile.Role
	case errs.IsNotFound(err):
		if role := models.Role(strings.ToLower(strings.TrimSpace(claimRole))); role.Valid() {
			actor.Role = role
		}
	default:
		return Actor{}, errs.NewDatabaseError("find", "profile", err)
	}
	return actor, nil
}

func (m *Marketplace) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	profile, err := m.store.Profiles().FindByID(ctx, profileID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "profile", err)
	}
	return profile, nil
}

// UpsertProfile creates or updates the actor's own profile. The role is
// fixed once the profile exists.
func (m *Marketplace) UpsertProfile(ctx context.Context, actor Actor, email string, in ProfileInput) (*models.Profile, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, errs.NewMissingRequiredFieldError("full_name")
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return nil, errs.NewInvalidFieldError("hourly_rate", "must not be negative")
	}
	if len(in.Metadata) > 0 && !json.Valid(in.Metadata) {
		return nil, errs.NewInvalidFieldError("metadata", "must be valid JSON")
	}

	var profile *models.Profile
	err := m.store.Transaction(ctx, func(tx database.Store) error {
		existing, err := tx.Profiles().FindByID(ctx, actor.UserID)
		switch {
		case err == nil:
			if in.Role != "" && in.Role != existing.Role {
				return errs.NewConflictError("role cannot be changed once set")
			}
			profile = existing
		case errs.IsNotFound(err):
			role := in.Role
			if role == "" {
				role = actor.Role
			}
			if !role.Valid() {
				return errs.NewInvalidFieldError("role", "must be client or freelancer")
			}
			if strings.TrimSpace(email) == "" {
				return errs.NewMissingRequiredFieldError("email")
			}
			profile = &models.Profile{ID: actor.UserID, Email: strings.TrimSpace(email), Role: role}
		default:
			return errs.NewDatabaseError("find", "profile", err)
		}

		profile.FullName = strings.TrimSpace(in.FullName)
		profile.Bio = in.Bio
		profile.AvatarURL = in.AvatarURL
		profile.Skills = normalizeSkills(in.Skills)
		profile.HourlyRate = in.HourlyRate
		if len(in.Metadata) > 0 {
			profile.Metadata = datatypes.JSON(in.Metadata)
		}
		if err := tx.Profiles().Save(ctx, profile); err != nil {
			return errs.NewDatabaseError("save", "profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (m *Marketplace) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := m.store.Admins().IsAdmin(ctx, userID)
	if err != nil {
		return false, errs.NewDatabaseError("find", "admin access", err)
	}
	return ok, nil
}

// GrantAdmin gives userID admin access. Only admins may grant it.
func (m *Marketplace) GrantAdmin(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if err := m.requireAdmin(ctx, actor); err != nil {
		return err
	}
	if _, err := m.store.Profiles().FindByID(ctx, userID); err != nil {
		return errs.NewDatabaseError("find", "profile", err)
	}
	grantedBy := actor.UserID
	if err := m.store.Admins().Grant(ctx, &models.AdminAccess{UserID: userID, GrantedBy: &grantedBy}); err != nil {
		return errs.NewDatabaseError("grant", "admin access", err)
	}
	m.logger.Info().Str("userID", userID.String()).Str("grantedBy", actor.UserID.String()).Msg("admin access granted")
	return nil
}

func (m *Marketplace) AdminListProfiles(ctx context.Context, actor Actor) ([]*models.Profile, error) {
	if err := m.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	profiles, err := m.store.Profiles().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "profiles", err)
	}
	return profiles, nil
}

// AdminListJobs lists jobs in any status.
func (m *Marketplace) AdminListJobs(ctx context.Context, actor Actor, filter database.JobFilter) ([]*models.Job, error) {
	if err := m.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}
	jobs, err := m.store.Jobs().Search(ctx, filter)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "jobs", err)
	}
	return jobs, nil
}

func (m *Marketplace) requireAdmin(ctx context.Context, actor Actor) error {
	ok, err := m.IsAdmin(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewForbiddenError("admin access required")
	}
	return nil
}
