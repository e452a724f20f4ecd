package repository

//go:generate mockgen -source=repository.go -destination=../../mocks/repository.go -package=mocks

import (
	"context"
	"errors"

	"aichat-backend/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore persists users. Implementations enforce emailId uniqueness and
// report violations as ErrDuplicate.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, emailID string) (*model.User, error)
	ExistsByEmail(ctx context.Context, emailID string) (bool, error)
}

// ChatStore persists conversations. Every read is filtered by owner, and ids
// that cannot belong to the backend are reported as ErrNotFound.
type ChatStore interface {
	// Create stores conv and assigns its ID and timestamps.
	Create(ctx context.Context, conv *model.Conversation) error
	GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Conversation, error)
	// ListByUserID returns conversations ordered by UpdatedAt descending.
	ListByUserID(ctx context.Context, userID string) ([]model.Conversation, error)
	// AppendMessages appends msgs in order as one write and bumps UpdatedAt.
	AppendMessages(ctx context.Context, id, userID string, msgs ...model.Message) error
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}
