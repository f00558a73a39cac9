package api

import (
	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler      healthHandler
	profileHandler     profileHandler
	jobHandler         jobHandler
	applicationHandler applicationHandler
	contractHandler    contractHandler
	chatHandler        chatHandler
	submissionHandler  submissionHandler
	inquiryHandler     inquiryHandler
	adminHandler       adminHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// StatusUpdateRequest is the body of every accept/reject endpoint.
type StatusUpdateRequest struct {
	Status   models.ReviewStatus `json:"status" example:"accepted"`
	Feedback *string             `json:"feedback,omitempty"`
}

type SendMessageRequest struct {
	Message  string  `json:"message" example:"Hi, when can we start?"`
	ImageURL *string `json:"image_url,omitempty"`
}

type CreateInquiryRequest struct {
	FreelancerID       uuid.UUID `json:"freelancer_id"`
	ProjectDescription string    `json:"project_description"`
}

type GrantAdminRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type AdminAccessResponse struct {
	IsAdmin bool `json:"is_admin"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
}
