// Package memory keeps users and conversations in process memory. It backs
// local runs without external services and the transport tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.EmailID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	r.byEmail[user.EmailID] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, emailID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, emailID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[emailID]
	return ok, nil
}

type chatEntry struct {
	conv model.Conversation
	seq  uint64
}

type ChatRepository struct {
	mu    sync.RWMutex
	chats map[string]*chatEntry
	seq   uint64
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{chats: make(map[string]*chatEntry)}
}

func (r *ChatRepository) Create(_ context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	conv.ID = uuid.NewString()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	r.seq++
	r.chats[conv.ID] = &chatEntry{conv: cloneConversation(*conv), seq: r.seq}
	return nil
}

func (r *ChatRepository) GetByIDAndUserID(_ context.Context, id, userID string) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.chats[id]
	if !ok || e.conv.UserID != userID {
		return nil, repository.ErrNotFound
	}
	c := cloneConversation(e.conv)
	return &c, nil
}

func (r *ChatRepository) ListByUserID(_ context.Context, userID string) ([]model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]*chatEntry, 0)
	for _, e := range r.chats {
		if e.conv.UserID == userID {
			owned = append(owned, e)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].conv.UpdatedAt.Equal(owned[j].conv.UpdatedAt) {
			return owned[i].conv.UpdatedAt.After(owned[j].conv.UpdatedAt)
		}
		return owned[i].seq > owned[j].seq
	})

	convs := make([]model.Conversation, 0, len(owned))
	for _, e := range owned {
		convs = append(convs, cloneConversation(e.conv))
	}
	return convs, nil
}

func (r *ChatRepository) AppendMessages(_ context.Context, id, userID string, msgs ...model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.chats[id]
	if !ok || e.conv.UserID != userID {
		return repository.ErrNotFound
	}
	e.conv.Messages = append(e.conv.Messages, msgs...)
	e.conv.UpdatedAt = time.Now().UTC()
	r.seq++
	e.seq = r.seq
	return nil
}

func cloneConversation(c model.Conversation) model.Conversation {
	msgs := make([]model.Message, len(c.Messages))
	copy(msgs, c.Messages)
	c.Messages = msgs
	return c
}
