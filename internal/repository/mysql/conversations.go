package mysql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

type conversationRow struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index:idx_conversations_user_updated,priority:1"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index:idx_conversations_user_updated,priority:2"`
}

func (conversationRow) TableName() string { return "conversations" }

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, conv *model.Conversation) error {
	userID, ok := parseID(conv.UserID)
	if !ok {
		return fmt.Errorf("create conversation failed: invalid user id %q", conv.UserID)
	}

	row := conversationRow{UserID: userID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(conv.Messages) == 0 {
			return nil
		}
		msgs := toMessageRows(row.ID, conv.Messages)
		return tx.Create(&msgs).Error
	})
	if err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}

	conv.ID = strconv.FormatUint(uint64(row.ID), 10)
	conv.CreatedAt = row.CreatedAt
	conv.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *ChatRepository) GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Conversation, error) {
	pk, ok := parseID(id)
	owner, ownerOK := parseID(userID)
	if !ok || !ownerOK {
		return nil, repository.ErrNotFound
	}

	var row conversationRow
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", pk, owner).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}

	var msgs []messageRow
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", row.ID).Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return toConversation(row, msgs), nil
}

func (r *ChatRepository) ListByUserID(ctx context.Context, userID string) ([]model.Conversation, error) {
	owner, ok := parseID(userID)
	if !ok {
		return []model.Conversation{}, nil
	}

	var rows []conversationRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", owner).Order("updated_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	if len(rows) == 0 {
		return []model.Conversation{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var msgs []messageRow
	if err := r.db.WithContext(ctx).Where("conversation_id IN ?", ids).Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	grouped := make(map[uint][]messageRow, len(rows))
	for _, m := range msgs {
		grouped[m.ConversationID] = append(grouped[m.ConversationID], m)
	}

	convs := make([]model.Conversation, 0, len(rows))
	for _, row := range rows {
		convs = append(convs, *toConversation(row, grouped[row.ID]))
	}
	return convs, nil
}

func (r *ChatRepository) AppendMessages(ctx context.Context, id, userID string, msgs ...model.Message) error {
	pk, ok := parseID(id)
	owner, ownerOK := parseID(userID)
	if !ok || !ownerOK {
		return repository.ErrNotFound
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the owning row so concurrent appends queue up behind each other.
		var row conversationRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", pk, owner).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&row).Update("updated_at", time.Now()).Error; err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}
		rows := toMessageRows(pk, msgs)
		return tx.Create(&rows).Error
	})
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("append messages failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toConversation(row conversationRow, msgs []messageRow) *model.Conversation {
	return &model.Conversation{
		ID:        strconv.FormatUint(uint64(row.ID), 10),
		UserID:    strconv.FormatUint(uint64(row.UserID), 10),
		Messages:  toMessages(msgs),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
