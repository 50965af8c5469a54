package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 64 << 20 // 64MB

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	archive     ObjectStore
}

func newProjectHandler(projectRepo *database.ProjectRepo, archive ObjectStore) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		archive:     archive,
	}
}

// ProjectCollection represents multiple projects
type ProjectCollection struct {
	Projects []*models.Project `json:"projects"`
	Total    int               `json:"total,omitempty"`
}

// getAllProjects retrieves all projects, newest first
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// getProject retrieves a specific project by ID
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		if project == nil {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project from a multipart form. The archive
// goes to the object store first; the row is only written once the upload
// succeeded, so a failed upload never leaves a dangling file_key.
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())
		if !actor.Admin() {
			h.responder.WriteError(w, errs.NewForbiddenError("only the site owner can create projects"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed multipart form"))
			return
		}

		title := r.FormValue("title")
		if title == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("title is required"))
			return
		}

		project := &models.Project{
			ID:          uuid.New(),
			Title:       title,
			Description: r.FormValue("description"),
			Tags:        pq.StringArray(splitList(r.FormValue("tags"))),
			Type:        pq.StringArray(splitList(r.FormValue("type"))),
			Language:    pq.StringArray(splitList(r.FormValue("language"))),
			Sort:        r.FormValue("sort"),
			AdminID:     actor.ID,
		}
		if project.Sort == "" {
			project.Sort = "Last updated"
		}

		fileKey, err := h.uploadFormFile(r, "file")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if fileKey == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("project archive file is required"))
			return
		}
		project.FileKey = fileKey

		imageKey, err := h.uploadFormFile(r, "image")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if imageKey != "" {
			project.ImageKey = &imageKey
		}

		if err := h.projectRepo.Add(project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, project)
	}
}

// updateProject updates project metadata; new uploads replace the stored
// objects and the old keys are removed afterwards
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())
		if !actor.Admin() {
			h.responder.WriteError(w, errs.NewForbiddenError("only the site owner can update projects"))
			return
		}

		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed multipart form"))
			return
		}

		if title := r.FormValue("title"); title != "" {
			project.Title = title
		}
		if description := r.FormValue("description"); description != "" {
			project.Description = description
		}
		if tags := r.FormValue("tags"); tags != "" {
			project.Tags = pq.StringArray(splitList(tags))
		}
		if types := r.FormValue("type"); types != "" {
			project.Type = pq.StringArray(splitList(types))
		}
		if language := r.FormValue("language"); language != "" {
			project.Language = pq.StringArray(splitList(language))
		}
		if sort := r.FormValue("sort"); sort != "" {
			project.Sort = sort
		}

		oldFileKey := project.FileKey
		newFileKey, err := h.uploadFormFile(r, "file")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if newFileKey != "" {
			project.FileKey = newFileKey
		}

		var oldImageKey string
		if project.ImageKey != nil {
			oldImageKey = *project.ImageKey
		}
		newImageKey, err := h.uploadFormFile(r, "image")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if newImageKey != "" {
			project.ImageKey = &newImageKey
		}

		if err := h.projectRepo.Update(project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}

		// Old objects are removed only after the row points at the new ones
		if newFileKey != "" && oldFileKey != "" {
			h.removeObject(r, oldFileKey)
		}
		if newImageKey != "" && oldImageKey != "" {
			h.removeObject(r, oldImageKey)
		}

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject deletes a project, its stored objects, and (via cascade)
// its download requests
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())
		if !actor.Admin() {
			h.responder.WriteError(w, errs.NewForbiddenError("only the site owner can delete projects"))
			return
		}

		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		if err := h.projectRepo.Delete(projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}

		// Storage cleanup happens after the row is gone, matching the
		// delete-then-clean order of the dashboard this replaces
		if project.FileKey != "" {
			h.removeObject(r, project.FileKey)
		}
		if project.ImageKey != nil && *project.ImageKey != "" {
			h.removeObject(r, *project.ImageKey)
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

// uploadFormFile stores the named form file and returns its key; a missing
// file is not an error, just an empty key
func (h projectHandler) uploadFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", errs.NewBadRequestError(fmt.Sprintf("could not read %s upload", field))
	}
	defer file.Close()

	key := objectKey(header)
	stored, err := h.archive.Save(r.Context(), key, file)
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to upload object")
		return "", errs.NewInternalErrorWithCause(fmt.Sprintf("%s upload failed", field), err)
	}
	return stored, nil
}

func (h projectHandler) removeObject(r *http.Request, key string) {
	if err := h.archive.Delete(r.Context(), key); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove stored object")
	}
}

func (h projectHandler) parseProjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing projectID"))
		return uuid.Nil, false
	}

	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
		return uuid.Nil, false
	}
	return projectID, true
}

// objectKey prefixes the original filename with a fresh uuid so repeated
// uploads of the same file never collide
func objectKey(header *multipart.FileHeader) string {
	return fmt.Sprintf("%s-%s", uuid.New(), header.Filename)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
