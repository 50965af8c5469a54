package api

import (
	"encoding/json"
	"net/http"

	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
	"github.com/assyifaul/portfolio-backend/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type downloadHandler struct {
	responder Responder
	logger    zerolog.Logger
	engine    *workflow.Engine
}

func newDownloadHandler(engine *workflow.Engine) downloadHandler {
	logger := log.With().Str("handlerName", "downloadHandler").Logger()

	return downloadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		engine:    engine,
	}
}

type createRequestBody struct {
	ProjectID uuid.UUID `json:"project_id"`
}

type transitionRequestBody struct {
	Status models.RequestStatus `json:"status"`
}

// DownloadCollection represents multiple download requests
type DownloadCollection struct {
	Downloads []*models.DownloadRequest `json:"downloads"`
	Total     int                       `json:"total,omitempty"`
}

// createRequest opens a new pending download request for the caller
func (h downloadHandler) createRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		var body createRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode download request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if body.ProjectID == uuid.Nil {
			h.responder.WriteError(w, errs.NewBadRequestError("project_id is required"))
			return
		}

		request, err := h.engine.CreateRequest(actor, body.ProjectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, request)
	}
}

// listRequests returns the caller's requests, or every request for admins.
// Optional query params: status, userId (admin only), sort=created_at.
func (h downloadHandler) listRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		var filter database.DownloadFilter

		if statusStr := r.URL.Query().Get("status"); statusStr != "" {
			status := models.RequestStatus(statusStr)
			if !status.Valid() {
				h.responder.WriteError(w, errs.NewBadRequestError("invalid status filter"))
				return
			}
			filter.Status = &status
		}

		if userIDStr := r.URL.Query().Get("userId"); userIDStr != "" {
			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("invalid userId"))
				return
			}
			filter.UserID = &userID
		}

		if r.URL.Query().Get("sort") == "created_at" {
			filter.SortByCreated = true
		}

		requests, err := h.engine.ListRequests(actor, filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, DownloadCollection{
			Downloads: requests,
			Total:     len(requests),
		})
	}
}

// getRequest returns a single download request visible to the caller
func (h downloadHandler) getRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		downloadID, ok := h.parseDownloadID(w, r)
		if !ok {
			return
		}

		request, err := h.engine.GetRequest(actor, downloadID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, request)
	}
}

// transitionRequest moves a pending request to approved or rejected
func (h downloadHandler) transitionRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		downloadID, ok := h.parseDownloadID(w, r)
		if !ok {
			return
		}

		var body transitionRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode transition request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if body.Status == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("status is required"))
			return
		}

		request, err := h.engine.Transition(actor, downloadID, body.Status)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, request)
	}
}

// deleteRequest hard-deletes a download request
func (h downloadHandler) deleteRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		downloadID, ok := h.parseDownloadID(w, r)
		if !ok {
			return
		}

		if err := h.engine.DeleteRequest(actor, downloadID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "download request deleted successfully",
		})
	}
}

// fulfillRequest hands the owner of an approved request the archive URL
func (h downloadHandler) fulfillRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		downloadID, ok := h.parseDownloadID(w, r)
		if !ok {
			return
		}

		locator, err := h.engine.Fulfill(r.Context(), actor, downloadID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"url": locator,
		})
	}
}

func (h downloadHandler) parseDownloadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	downloadIDStr := chi.URLParam(r, "downloadID")
	if downloadIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing downloadID"))
		return uuid.Nil, false
	}

	downloadID, err := uuid.Parse(downloadIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid downloadID"))
		return uuid.Nil, false
	}
	return downloadID, true
}
