package api

import (
	"encoding/json"
	"net/http"

	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type followHandler struct {
	responder  Responder
	logger     zerolog.Logger
	followRepo *database.FollowRepo
}

func newFollowHandler(followRepo *database.FollowRepo) followHandler {
	logger := log.With().Str("handlerName", "followHandler").Logger()

	return followHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		followRepo: followRepo,
	}
}

// FollowCollection represents multiple follow records
type FollowCollection struct {
	Follows []*models.Follow `json:"follows"`
	Total   int              `json:"total,omitempty"`
}

type followBody struct {
	Platform   string `json:"platform"`
	IsFollowed bool   `json:"is_followed"`
}

// getFollows lists the caller's follow records; admins see everyone's
func (h followHandler) getFollows() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		var follows []*models.Follow
		var err error
		if actor.Admin() {
			follows, err = h.followRepo.FindAll()
		} else {
			follows, err = h.followRepo.FindByUser(actor.ID)
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "follows", err))
			return
		}

		h.responder.WriteJSON(w, FollowCollection{
			Follows: follows,
			Total:   len(follows),
		})
	}
}

// createFollow records a follow signal for the caller
func (h followHandler) createFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		var body followBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if body.Platform == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("platform is required"))
			return
		}

		follow := &models.Follow{
			ID:         uuid.New(),
			UserID:     actor.ID,
			Platform:   body.Platform,
			IsFollowed: body.IsFollowed,
		}
		if err := h.followRepo.Add(follow); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "follow", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, follow)
	}
}

// updateFollow updates one of the caller's follow records
func (h followHandler) updateFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		followID, ok := h.parseFollowID(w, r)
		if !ok {
			return
		}

		follow, err := h.followRepo.FindByID(followID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "follow", err))
			return
		}
		if follow == nil || (!actor.Admin() && follow.UserID != actor.ID) {
			h.responder.WriteError(w, errs.NewNotFound("follow"))
			return
		}

		var body followBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if body.Platform != "" {
			follow.Platform = body.Platform
		}
		follow.IsFollowed = body.IsFollowed

		if err := h.followRepo.Update(follow); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "follow", err))
			return
		}

		h.responder.WriteJSON(w, follow)
	}
}

// deleteFollow removes a follow record; owner or admin
func (h followHandler) deleteFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		followID, ok := h.parseFollowID(w, r)
		if !ok {
			return
		}

		follow, err := h.followRepo.FindByID(followID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "follow", err))
			return
		}
		if follow == nil || (!actor.Admin() && follow.UserID != actor.ID) {
			h.responder.WriteError(w, errs.NewNotFound("follow"))
			return
		}

		if err := h.followRepo.Delete(followID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "follow", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "follow deleted successfully",
		})
	}
}

func (h followHandler) parseFollowID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	followIDStr := chi.URLParam(r, "followID")
	if followIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing followID"))
		return uuid.Nil, false
	}

	followID, err := uuid.Parse(followIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid followID"))
		return uuid.Nil, false
	}
	return followID, true
}
