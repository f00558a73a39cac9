package api

import (
	"github.com/go-chi/chi/v5"
)

func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.healthHandler.health())
}

// setupFrontendRoutes sets up all routes with authentication
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		// Profile endpoints
		r.Get("/profile", handlers.profileHandler.getOwnProfile())
		r.Put("/profile", handlers.profileHandler.upsertProfile())
		r.Get("/profiles/{profileID}", handlers.profileHandler.getProfile())

		// Job endpoints
		r.Get("/jobs", handlers.jobHandler.searchJobs())
		r.Post("/jobs", handlers.jobHandler.createJob())
		r.Get("/jobs/mine", handlers.jobHandler.listMyJobs())
		r.Get("/jobs/{jobID}", handlers.jobHandler.getJob())
		r.Post("/jobs/{jobID}/cancel", handlers.jobHandler.cancelJob())

		// Application endpoints
		r.Get("/jobs/{jobID}/applications", handlers.applicationHandler.listJobApplications())
		r.Post("/jobs/{jobID}/applications", handlers.applicationHandler.apply())
		r.Get("/applications/mine", handlers.applicationHandler.listMyApplications())
		r.Put("/applications/{applicationID}/status", handlers.applicationHandler.reviewApplication())

		// Contract endpoints
		r.Get("/contracts", handlers.contractHandler.listContracts())
		r.Get("/contracts/{contractID}", handlers.contractHandler.getOverview())
		r.Post("/contracts/{contractID}/complete", handlers.contractHandler.completeContract())
		r.Post("/contracts/{contractID}/terminate", handlers.contractHandler.terminateContract())
		r.Get("/contracts/{contractID}/events", handlers.contractHandler.streamEvents())

		// Chat endpoints
		r.Get("/contracts/{contractID}/messages", handlers.chatHandler.listMessages())
		r.Post("/contracts/{contractID}/messages", handlers.chatHandler.sendMessage())
		r.Post("/contracts/{contractID}/messages/read", handlers.chatHandler.markRead())
		r.Get("/contracts/{contractID}/messages/unread", handlers.chatHandler.unreadCount())

		// Submission endpoints
		r.Get("/contracts/{contractID}/submissions", handlers.submissionHandler.listSubmissions())
		r.Post("/contracts/{contractID}/submissions", handlers.submissionHandler.submitDeliverable())
		r.Put("/submissions/{submissionID}/status", handlers.submissionHandler.reviewSubmission())

		// Inquiry endpoints
		r.Get("/inquiries", handlers.inquiryHandler.listInquiries())
		r.Post("/inquiries", handlers.inquiryHandler.createInquiry())
		r.Put("/inquiries/{inquiryID}/status", handlers.inquiryHandler.respondToInquiry())

		// Admin endpoints
		r.Get("/admin/access", handlers.adminHandler.checkAccess())
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.requireAdmin)
			r.Post("/admin/access", handlers.adminHandler.grantAccess())
			r.Get("/admin/profiles", handlers.adminHandler.listProfiles())
			r.Get("/admin/jobs", handlers.adminHandler.listJobs())
		})
	})
}
