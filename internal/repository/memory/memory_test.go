package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &model.User{FirstName: "Ada", EmailID: "ada@x.io", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	err := repo.Create(ctx, &model.User{FirstName: "Ada2", EmailID: "ada@x.io"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := repo.ExistsByEmail(ctx, "ada@x.io")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := repo.GetByEmail(ctx, "ada@x.io")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChatRepository_OwnershipAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository()

	first := &model.Conversation{UserID: "alice"}
	second := &model.Conversation{UserID: "alice"}
	foreign := &model.Conversation{UserID: "bob"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, foreign))

	_, err := repo.GetByIDAndUserID(ctx, foreign.ID, "alice")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.AppendMessages(ctx, first.ID, "alice",
		model.Message{Role: model.RoleUser, Text: "hi"},
		model.Message{Role: model.RoleModel, Text: "hello"},
	))
	require.ErrorIs(t, repo.AppendMessages(ctx, first.ID, "bob"), repository.ErrNotFound)

	list, err := repo.ListByUserID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Len(t, list[0].Messages, 2)
	require.Equal(t, second.ID, list[1].ID)
}

func TestChatRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository()

	conv := &model.Conversation{UserID: "alice"}
	require.NoError(t, repo.Create(ctx, conv))

	got, err := repo.GetByIDAndUserID(ctx, conv.ID, "alice")
	require.NoError(t, err)
	got.Messages = append(got.Messages, model.Message{Role: model.RoleUser, Text: "leak"})

	again, err := repo.GetByIDAndUserID(ctx, conv.ID, "alice")
	require.NoError(t, err)
	require.Empty(t, again.Messages)
}
