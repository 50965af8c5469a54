package api

import (
	"encoding/json"
	"net/http"

	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// siteHandler serves the portfolio extras that sit next to the catalog:
// health, the chatbot, and the GitHub contribution calendar.
type siteHandler struct {
	responder Responder
	logger    zerolog.Logger
	chat      *services.ChatService
	github    *services.GithubService
}

func newSiteHandler(chat *services.ChatService, github *services.GithubService) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder: NewResponder(logger),
		logger:    logger,
		chat:      chat,
		github:    github,
	}
}

type chatBody struct {
	Message string `json:"message"`
}

func (h siteHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{"status": "ok"})
	}
}

// chat proxies the visitor's message to the text-generation model
func (h siteHandler) chatReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.chat == nil {
			h.responder.WriteError(w, errs.NewInternalError("chat is not configured"))
			return
		}

		var body chatBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if body.Message == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("message is required"))
			return
		}

		reply, err := h.chat.Reply(r.Context(), body.Message)
		if err != nil {
			h.logger.Error().Err(err).Msg("Chat generation failed")
			h.responder.WriteError(w, errs.NewInternalError("could not generate a reply"))
			return
		}

		h.responder.WriteJSON(w, map[string]string{"reply": reply})
	}
}

// githubContributions proxies the owner's contribution calendar
func (h siteHandler) githubContributions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.github == nil {
			h.responder.WriteError(w, errs.NewInternalError("github integration is not configured"))
			return
		}

		calendar, err := h.github.Contributions(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to fetch contributions")
			h.responder.WriteError(w, errs.NewInternalError("could not fetch contributions"))
			return
		}

		h.responder.WriteJSON(w, calendar)
	}
}
