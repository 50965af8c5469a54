package api

import (
	"context"

	"github.com/assyifaul/portfolio-backend/workflow"
)

type keyType string

const actorKey keyType = "actor"

// ctxWithActor adds the authenticated actor to the context
func ctxWithActor(ctx context.Context, actor workflow.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// actorFromCtx retrieves the actor from the context. An anonymous actor is
// returned when the auth middleware did not run.
func actorFromCtx(ctx context.Context) workflow.Actor {
	if value := ctx.Value(actorKey); value != nil {
		if actor, ok := value.(workflow.Actor); ok {
			return actor
		}
	}
	return workflow.Actor{}
}
