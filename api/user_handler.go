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

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
}

func newUserHandler(userRepo *database.UserRepo) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
	}
}

// UserCollection represents multiple users
type UserCollection struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total,omitempty"`
}

type updateRoleBody struct {
	Role models.Role `json:"role"`
}

// getMe returns the caller's own account
func (h userHandler) getMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		user, err := h.userRepo.FindByID(actor.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFound("user"))
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// getAllUsers lists every account, admin only
func (h userHandler) getAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())
		if !actor.Admin() {
			h.responder.WriteError(w, errs.NewForbiddenError("only the site owner can list users"))
			return
		}

		users, err := h.userRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "users", err))
			return
		}

		h.responder.WriteJSON(w, UserCollection{
			Users: users,
			Total: len(users),
		})
	}
}

// updateRole changes a user's role, admin only
func (h userHandler) updateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())
		if !actor.Admin() {
			h.responder.WriteError(w, errs.NewForbiddenError("only the site owner can change roles"))
			return
		}

		userID, ok := h.parseUserID(w, r)
		if !ok {
			return
		}

		var body updateRoleBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if body.Role != models.RoleUser && body.Role != models.RoleAdmin {
			h.responder.WriteError(w, errs.NewBadRequestError("role must be 'user' or 'admin'"))
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFound("user"))
			return
		}

		if err := h.userRepo.UpdateRole(userID, body.Role); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}

		user.Role = body.Role
		h.responder.WriteJSON(w, user)
	}
}

// deleteUser removes an account and cascades its requests and follows.
// Admins can delete anyone; users can delete themselves.
func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromCtx(r.Context())

		userID, ok := h.parseUserID(w, r)
		if !ok {
			return
		}

		if !actor.Admin() && actor.ID != userID {
			h.responder.WriteError(w, errs.NewForbiddenError("you can only delete your own account"))
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFound("user"))
			return
		}

		if err := h.userRepo.Delete(userID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "user", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "user deleted successfully",
		})
	}
}

func (h userHandler) parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr := chi.URLParam(r, "userID")
	if userIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing userID"))
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
		return uuid.Nil, false
	}
	return userID, true
}
