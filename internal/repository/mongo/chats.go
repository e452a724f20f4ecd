package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

// Messages are stored in the generateContent shape {role, parts:[{text}]}.
type partDoc struct {
	Text string `bson:"text"`
}

type messageDoc struct {
	Role  string    `bson:"role"`
	Parts []partDoc `bson:"parts"`
}

type chatDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Messages  []messageDoc       `bson:"messages"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toMessageDocs(msgs []model.Message) []messageDoc {
	docs := make([]messageDoc, 0, len(msgs))
	for _, m := range msgs {
		docs = append(docs, messageDoc{Role: m.Role, Parts: []partDoc{{Text: m.Text}}})
	}
	return docs
}

func (d *chatDoc) toModel() *model.Conversation {
	msgs := make([]model.Message, 0, len(d.Messages))
	for _, m := range d.Messages {
		var text strings.Builder
		for _, p := range m.Parts {
			text.WriteString(p.Text)
		}
		msgs = append(msgs, model.Message{Role: m.Role, Text: text.String()})
	}
	return &model.Conversation{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Messages:  msgs,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type ChatRepository struct {
	chats *mongodriver.Collection
}

func NewChatRepository(db *mongodriver.Database) *ChatRepository {
	return &ChatRepository{chats: db.Collection(chatsCollection)}
}

func (r *ChatRepository) Create(ctx context.Context, conv *model.Conversation) error {
	const op = "repository/mongo/chats.Create"

	owner, err := primitive.ObjectIDFromHex(conv.UserID)
	if err != nil {
		return fmt.Errorf("%s: invalid user id %q", op, conv.UserID)
	}
	ts := now()
	doc := chatDoc{
		UserID:    owner,
		Messages:  toMessageDocs(conv.Messages),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := r.chats.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type %T", op, res.InsertedID)
	}
	conv.ID = oid.Hex()
	conv.CreatedAt = ts
	conv.UpdatedAt = ts
	return nil
}

// GetByIDAndUserID treats malformed ids as missing records.
func (r *ChatRepository) GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Conversation, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	var doc chatDoc
	if err := r.chats.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("repository/mongo/chats.GetByIDAndUserID: %w", err)
	}
	return doc.toModel(), nil
}

func (r *ChatRepository) ListByUserID(ctx context.Context, userID string) ([]model.Conversation, error) {
	const op = "repository/mongo/chats.ListByUserID"

	owner, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return []model.Conversation{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.chats.Find(ctx, bson.D{{Key: "userId", Value: owner}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var docs []chatDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	convs := make([]model.Conversation, 0, len(docs))
	for i := range docs {
		convs = append(convs, *docs[i].toModel())
	}
	return convs, nil
}

// AppendMessages pushes all msgs in one update so concurrent appends to the
// same chat never overwrite each other.
func (r *ChatRepository) AppendMessages(ctx context.Context, id, userID string, msgs ...model.Message) error {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return repository.ErrNotFound
	}

	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "messages", Value: bson.D{{Key: "$each", Value: toMessageDocs(msgs)}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now()}}},
	}
	res, err := r.chats.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("repository/mongo/chats.AppendMessages: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ChatRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.chats.Database())
}

func ownedFilter(id, userID string) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: owner}}, true
}
