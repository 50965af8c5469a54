package api

import (
	"context"
	"io"

	"github.com/assyifaul/portfolio-backend/auth"
	"github.com/assyifaul/portfolio-backend/services"
	"github.com/assyifaul/portfolio-backend/workflow"
)

// ObjectStore is the slice of the object-store surface the API needs:
// uploads and deletions for project management, locator resolution for
// fulfillment.
type ObjectStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	Resolve(ctx context.Context, key string) (string, error)
}

// Deps carries the external collaborators the router wires into handlers.
// Chat, Github and Notifier are optional; their routes degrade gracefully
// when absent.
type Deps struct {
	Archive  ObjectStore
	Google   *auth.GoogleProvider
	Tokens   auth.TokenIssuer
	Chat     *services.ChatService
	Github   *services.GithubService
	Notifier workflow.Notifier
}

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	projectHandler  projectHandler
	downloadHandler downloadHandler
	userHandler     userHandler
	followHandler   followHandler
	siteHandler     siteHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"status"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}
