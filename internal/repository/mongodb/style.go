package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storyloom/internal/domain"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStyleRepository implements the StyleRepository interface.
// Switching the default is two writes; the one_default partial index rejects
// a concurrent second default.
type MongoStyleRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewStyleRepository creates a new MongoStyleRepository
func NewStyleRepository(config *RepositoryConfig) repositories.StyleRepository {
	return &MongoStyleRepository{
		coll:   config.DB.Collection(config.Collections.Styles),
		logger: config.Logger,
	}
}

// Create inserts a new style
func (r *MongoStyleRepository) Create(ctx context.Context, s *style.Style) error {
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateStyle(s)
		}
		return fmt.Errorf("create %s style: %w", s.Kind, err)
	}
	return nil
}

// GetByID retrieves a style owned by userID
func (r *MongoStyleRepository) GetByID(ctx context.Context, kind style.Kind, id, userID string) (*style.Style, error) {
	var s style.Style
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID, "kind": kind}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s style %s: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s style: %w", kind, err)
	}
	if s.Attributes == nil {
		s.Attributes = map[string]string{}
	}
	return &s, nil
}

// List retrieves all styles of a kind for a user, ordered by updatedAt DESC
func (r *MongoStyleRepository) List(ctx context.Context, kind style.Kind, userID string) ([]style.Style, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID, "kind": kind}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s styles: %w", kind, err)
	}

	styles := []style.Style{}
	if err := cursor.All(ctx, &styles); err != nil {
		return nil, fmt.Errorf("decode %s styles: %w", kind, err)
	}
	for i := range styles {
		if styles[i].Attributes == nil {
			styles[i].Attributes = map[string]string{}
		}
	}
	return styles, nil
}

// Update overwrites name, attributes and the default flag
func (r *MongoStyleRepository) Update(ctx context.Context, s *style.Style) error {
	filter := bson.M{"_id": s.ID, "userId": s.UserID, "kind": s.Kind}
	update := bson.M{"$set": bson.M{
		"name":         s.Name,
		"attributes":   s.Attributes,
		"defaultStyle": s.DefaultStyle,
		"updatedAt":    s.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateStyle(s)
		}
		return fmt.Errorf("update %s style: %w", s.Kind, err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%s style %s: %w", s.Kind, s.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a style owned by userID
func (r *MongoStyleRepository) Delete(ctx context.Context, kind style.Kind, id, userID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID, "kind": kind})
	if err != nil {
		return fmt.Errorf("delete %s style: %w", kind, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%s style %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// ClearDefault unsets defaultStyle on all of the user's styles of a kind except one
func (r *MongoStyleRepository) ClearDefault(ctx context.Context, kind style.Kind, userID, exceptID string) error {
	filter := bson.M{
		"userId":       userID,
		"kind":         kind,
		"defaultStyle": true,
		"_id":          bson.M{"$ne": exceptID},
	}

	result, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"defaultStyle": false}})
	if err != nil {
		return fmt.Errorf("clear default %s style: %w", kind, err)
	}

	r.logger.Debug("cleared default styles",
		"kind", kind,
		"user_id", userID,
		"count", result.ModifiedCount,
	)
	return nil
}

// duplicateStyle maps a unique-index violation. The only unique index besides
// _id is one_default, so it almost always means a concurrent default switch.
func duplicateStyle(s *style.Style) error {
	if s.DefaultStyle {
		return fmt.Errorf("another %s style became default concurrently: %w", s.Kind, domain.ErrVersionConflict)
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("%s style '%s' already exists", s.Kind, s.ID),
		ResourceType: string(s.Kind) + "_style",
		ResourceID:   s.ID,
	}
}
