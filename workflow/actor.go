package workflow

import (
	"github.com/google/uuid"

	"github.com/assyifaul/portfolio-backend/models"
)

// Actor is the identity every engine operation authorizes against. It is a
// tag (role) plus the id it applies to; the engine never authenticates, it
// only trusts what the auth layer put here.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// UserActor builds an actor with ordinary visitor privileges.
func UserActor(id uuid.UUID) Actor {
	return Actor{ID: id, Role: models.RoleUser}
}

// AdminActor builds an actor with site-owner privileges.
func AdminActor(id uuid.UUID) Actor {
	return Actor{ID: id, Role: models.RoleAdmin}
}

// Authenticated reports whether the actor carries a real identity.
func (a Actor) Authenticated() bool {
	return a.ID != uuid.Nil
}

// Admin reports whether the actor may perform privileged operations.
func (a Actor) Admin() bool {
	return a.Role == models.RoleAdmin
}
