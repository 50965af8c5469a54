package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes sets up the public and authenticated route groups
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.siteHandler.health())
		r.Get("/auth/login", handlers.authHandler.login())
		r.Get("/auth/callback", handlers.authHandler.callback())

		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())

		r.Post("/chat", handlers.siteHandler.chatReply())
		r.Get("/github/contributions", handlers.siteHandler.githubContributions())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(ColoredHTTPLoggingMiddleware)

		// Project Handler endpoints (admin checks inside)
		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())

		// Download workflow endpoints
		r.Get("/downloads", handlers.downloadHandler.listRequests())
		r.Post("/downloads", handlers.downloadHandler.createRequest())
		r.Get("/download/{downloadID}", handlers.downloadHandler.getRequest())
		r.Patch("/download/{downloadID}", handlers.downloadHandler.transitionRequest())
		r.Delete("/download/{downloadID}", handlers.downloadHandler.deleteRequest())
		r.Get("/download/{downloadID}/file", handlers.downloadHandler.fulfillRequest())

		// User Handler endpoints
		r.Get("/users/me", handlers.userHandler.getMe())
		r.Get("/users", handlers.userHandler.getAllUsers())
		r.Put("/user/{userID}/role", handlers.userHandler.updateRole())
		r.Delete("/user/{userID}", handlers.userHandler.deleteUser())

		// Follow Handler endpoints
		r.Get("/follows", handlers.followHandler.getFollows())
		r.Post("/follows", handlers.followHandler.createFollow())
		r.Put("/follow/{followID}", handlers.followHandler.updateFollow())
		r.Delete("/follow/{followID}", handlers.followHandler.deleteFollow())
	})
}
