package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"storyloom/internal/domain"
	"storyloom/internal/domain/models"
	"storyloom/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepository implements the UserRepository interface.
// Emails are stored lower-cased so the unique index is case-insensitive.
type MongoUserRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewUserRepository creates a new MongoUserRepository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &MongoUserRepository{
		coll:   config.DB.Collection(config.Collections.Users),
		logger: config.Logger,
	}
}

// Create inserts a new user
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	doc := *user
	doc.Email = strings.ToLower(user.Email)

	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("email '%s' is already registered", user.Email),
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByEmail looks a user up case-insensitively
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// GetByID retrieves a user by ID
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) getOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
