package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type jobHandler struct {
	responder Responder
	logger    zerolog.Logger
	market    *services.Marketplace
}

func newJobHandler(market *services.Marketplace) jobHandler {
	logger := log.With().Str("handlerName", "jobHandler").Logger()

	return jobHandler{
		responder: NewResponder(logger),
		logger:    logger,
		market:    market,
	}
}

// jobFilterFromQuery reads status, category, experience_level, skills
// (comma separated), q, limit and offset.
func jobFilterFromQuery(r *http.Request) (database.JobFilter, error) {
	q := r.URL.Query()
	filter := database.JobFilter{
		Status:          models.JobStatus(q.Get("status")),
		Category:        q.Get("category"),
		ExperienceLevel: models.ExperienceLevel(q.Get("experience_level")),
		Search:          strings.TrimSpace(q.Get("q")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, errs.NewInvalidFieldError("status", "unknown job status")
	}
	if filter.ExperienceLevel != "" && !filter.ExperienceLevel.Valid() {
		return filter, errs.NewInvalidFieldError("experience_level", "must be entry, intermediate or expert")
	}
	for _, skill := range strings.Split(q.Get("skills"), ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			filter.Skills = append(filter.Skills, skill)
		}
	}

	var err error
	if raw := q.Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			return filter, errs.NewInvalidFieldError("limit", "must be a non-negative integer")
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if filter.Offset, err = strconv.Atoi(raw); err != nil || filter.Offset < 0 {
			return filter, errs.NewInvalidFieldError("offset", "must be a non-negative integer")
		}
	}
	return filter, nil
}

// searchJobs lists jobs
// @Summary Search jobs
// @Description Open jobs by default. Filters: status, category, experience_level, skills, q, limit, offset.
// @Tags Jobs
// @Produce json
// @Success 200 {array} models.Job
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Router /jobs [get]
func (h jobHandler) searchJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := jobFilterFromQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		jobs, err := h.market.SearchJobs(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, jobs)
	}
}

// createJob posts a job
// @Summary Create job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param job body services.JobInput true "Job"
// @Success 201 {object} models.Job
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Only clients post jobs"
// @Router /jobs [post]
func (h jobHandler) createJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.JobInput
		if err := decodeJSON(r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		job, err := h.market.CreateJob(r.Context(), actor, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, job)
	}
}

// listMyJobs lists the caller's jobs
// @Summary List own jobs
// @Tags Jobs
// @Produce json
// @Success 200 {array} models.Job
// @Router /jobs/mine [get]
func (h jobHandler) listMyJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		jobs, err := h.market.ListClientJobs(r.Context(), actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, jobs)
	}
}

// getJob returns one job
// @Summary Get job
// @Tags Jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} ErrorResponse "Job not found"
// @Router /jobs/{jobID} [get]
func (h jobHandler) getJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		job, err := h.market.GetJob(r.Context(), jobID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, job)
	}
}

// cancelJob cancels an open job
// @Summary Cancel job
// @Tags Jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 403 {object} ErrorResponse "Not the job owner"
// @Failure 409 {object} ErrorResponse "Job is no longer open"
// @Router /jobs/{jobID}/cancel [post]
func (h jobHandler) cancelJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		job, err := h.market.CancelJob(r.Context(), actor, jobID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, job)
	}
}
