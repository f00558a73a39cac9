package api

import (
	"time"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		healthHandler:      newHealthHandler(startupTime),
		profileHandler:     newProfileHandler(deps.Market),
		jobHandler:         newJobHandler(deps.Market),
		applicationHandler: newApplicationHandler(deps.Market),
		contractHandler:    newContractHandler(deps.Market, deps.Events),
		chatHandler:        newChatHandler(deps.Market),
		submissionHandler:  newSubmissionHandler(deps.Market),
		inquiryHandler:     newInquiryHandler(deps.Market),
		adminHandler:       newAdminHandler(deps.Market),
	}
}
