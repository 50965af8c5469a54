package api

import (
	"net/http"
	"os"
	"time"

	"github.com/assyifaul/portfolio-backend/auth"
	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	google    *auth.GoogleProvider
	tokens    auth.TokenIssuer
}

func newAuthHandler(userRepo *database.UserRepo, google *auth.GoogleProvider, tokens auth.TokenIssuer) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		google:    google,
		tokens:    tokens,
	}
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// login hands the frontend the Google consent URL
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.google == nil {
			h.responder.WriteError(w, errs.NewInternalError("sign-in is not configured"))
			return
		}

		state := r.URL.Query().Get("state")
		if state == "" {
			state = uuid.NewString()
		}

		h.responder.WriteJSON(w, map[string]string{
			"url":   h.google.AuthURL(state),
			"state": state,
		})
	}
}

// callback trades the OAuth code for a profile, upserts the user, and
// mints a session token. The first sign-in creates the account; the
// configured owner email comes in as admin, everyone else as user.
func (h authHandler) callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.google == nil {
			h.responder.WriteError(w, errs.NewInternalError("sign-in is not configured"))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing code"))
			return
		}

		profile, err := h.google.Exchange(r.Context(), code)
		if err != nil {
			h.logger.Error().Err(err).Msg("OAuth exchange failed")
			h.responder.WriteError(w, errs.NewUnauthorizedError("sign-in failed"))
			return
		}

		role := models.RoleUser
		if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" && adminEmail == profile.Email {
			role = models.RoleAdmin
		}

		user := &models.User{
			ID:        uuid.New(),
			Email:     profile.Email,
			Name:      profile.Name,
			AvatarURL: profile.Picture,
			Role:      role,
		}
		if err := h.userRepo.Upsert(user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("upsert", "user", err))
			return
		}

		token, expiresAt, err := h.tokens.Issue(user)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to issue session token")
			h.responder.WriteError(w, errs.NewInternalError("could not create session"))
			return
		}

		h.responder.WriteJSON(w, sessionResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      user,
		})
	}
}
