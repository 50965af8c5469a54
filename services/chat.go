package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
)

const fallbackReply = "Sorry, I don't have an answer for that yet."

// ChatService answers visitor questions on the portfolio through a hosted
// HuggingFace text-generation model.
//
// Requires environment variables:
//   - HUGGINGFACE_API_TOKEN: API token for the inference endpoint
//   - HUGGINGFACE_MODEL: model id (e.g. "mistralai/Mistral-7B-Instruct-v0.2")
type ChatService struct {
	llm *huggingface.LLM
}

func NewChatService() (*ChatService, error) {
	token := os.Getenv("HUGGINGFACE_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("HUGGINGFACE_API_TOKEN is not set")
	}

	model := os.Getenv("HUGGINGFACE_MODEL")
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.2"
	}

	llm, err := huggingface.New(
		huggingface.WithToken(token),
		huggingface.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init huggingface client: %w", err)
	}

	return &ChatService{llm: llm}, nil
}

// Reply generates a response to the visitor's message. An empty generation
// falls back to a canned reply instead of an error, matching what the site
// shows visitors.
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	reply, err := llms.GenerateFromSinglePrompt(ctx, s.llm, message)
	if err != nil {
		return "", fmt.Errorf("generate chat reply: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fallbackReply, nil
	}
	return reply, nil
}
