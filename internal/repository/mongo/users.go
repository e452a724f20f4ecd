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

	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName,omitempty"`
	EmailID   string             `bson:"emailId"`
	Age       *int               `bson:"age,omitempty"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		EmailID:      d.EmailID,
		Age:          d.Age,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type UserRepository struct {
	users *mongodriver.Collection
}

func NewUserRepository(db *mongodriver.Database) *UserRepository {
	return &UserRepository{users: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	const op = "repository/mongo/users.Create"

	ts := now()
	doc := userDoc{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		EmailID:   user.EmailID,
		Age:       user.Age,
		Password:  user.PasswordHash,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type %T", op, res.InsertedID)
	}
	doc.ID = oid
	*user = *doc.toModel()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) GetByEmail(ctx context.Context, emailID string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "emailId", Value: emailID}})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, emailID string) (bool, error) {
	n, err := r.users.CountDocuments(ctx, bson.D{{Key: "emailId", Value: emailID}})
	if err != nil {
		return false, fmt.Errorf("repository/mongo/users.ExistsByEmail: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("repository/mongo/users.findOne: %w", err)
	}
	return doc.toModel(), nil
}
