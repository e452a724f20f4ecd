package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aichat-backend/internal/ai"
	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

const emptyReplyPlaceholder = "The model returned an empty response."

type ChatService struct {
	chats      repository.ChatStore
	llm        ai.Client
	maxHistory int
}

type SendMessageInput struct {
	UserID string
	ChatID string
	Text   string
}

type SendMessageResult struct {
	ChatID string
	User   model.Message
	Model  model.Message
}

func NewChatService(chats repository.ChatStore, llm ai.Client, maxHistory int) *ChatService {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &ChatService{
		chats:      chats,
		llm:        llm,
		maxHistory: maxHistory,
	}
}

// SendMessage forwards text with the tail of the conversation to the model
// and stores the exchange. An unknown or foreign ChatID starts a new
// conversation. Nothing is stored when the model call fails.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, invalid("Message is required")
	}

	var conv *model.Conversation
	if input.ChatID != "" {
		found, err := s.chats.GetByIDAndUserID(ctx, input.ChatID, input.UserID)
		switch {
		case err == nil:
			conv = found
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("load chat failed: %w", err)
		}
	}

	userMessage := model.Message{Role: model.RoleUser, Text: text}
	prompt := s.buildPrompt(conv, userMessage)

	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownstream, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = emptyReplyPlaceholder
	}
	modelMessage := model.Message{Role: model.RoleModel, Text: reply}

	if conv == nil {
		conv = &model.Conversation{
			UserID:   input.UserID,
			Messages: []model.Message{userMessage, modelMessage},
		}
		if err := s.chats.Create(ctx, conv); err != nil {
			return nil, fmt.Errorf("create chat failed: %w", err)
		}
	} else if err := s.chats.AppendMessages(ctx, conv.ID, input.UserID, userMessage, modelMessage); err != nil {
		return nil, fmt.Errorf("append chat failed: %w", err)
	}

	return &SendMessageResult{ChatID: conv.ID, User: userMessage, Model: modelMessage}, nil
}

func (s *ChatService) ListChats(ctx context.Context, userID string) ([]model.Conversation, error) {
	chats, err := s.chats.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (s *ChatService) GetChat(ctx context.Context, userID, chatID string) (*model.Conversation, error) {
	conv, err := s.chats.GetByIDAndUserID(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load chat failed: %w", err)
	}
	return conv, nil
}

// buildPrompt returns the last maxHistory stored messages followed by next.
func (s *ChatService) buildPrompt(conv *model.Conversation, next model.Message) []model.Message {
	var history []model.Message
	if conv != nil {
		history = conv.LastMessages(s.maxHistory)
	}
	prompt := make([]model.Message, 0, len(history)+1)
	prompt = append(prompt, history...)
	return append(prompt, next)
}
