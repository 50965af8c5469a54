package api

import (
	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/workflow"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, deps Deps) *routeHandlers {
	engineOpts := []func(*workflow.Engine){}
	if deps.Notifier != nil {
		engineOpts = append(engineOpts, workflow.WithNotifier(deps.Notifier))
	}

	engine := workflow.NewEngine(
		database.DownloadRepo(),
		database.ProjectRepo(),
		deps.Archive,
		engineOpts...,
	)

	return &routeHandlers{
		authHandler:     newAuthHandler(database.UserRepo(), deps.Google, deps.Tokens),
		projectHandler:  newProjectHandler(database.ProjectRepo(), deps.Archive),
		downloadHandler: newDownloadHandler(engine),
		userHandler:     newUserHandler(database.UserRepo()),
		followHandler:   newFollowHandler(database.FollowRepo()),
		siteHandler:     newSiteHandler(deps.Chat, deps.Github),
	}
}
