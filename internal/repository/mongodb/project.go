package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"
	docsysRepo "storyloom/internal/domain/repositories/docsystem"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProjectRepository implements the ProjectRepository interface.
// One project is one BSON document with its documents embedded.
type MongoProjectRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) docsysRepo.ProjectRepository {
	return &MongoProjectRepository{
		coll:   config.DB.Collection(config.Collections.Projects),
		logger: config.Logger,
	}
}

// Create creates a new project
func (r *MongoProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Normalize()
	project.Version = 1

	if _, err := r.coll.InsertOne(ctx, project); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project '%s' already exists", project.ID),
				ResourceType: "project",
				ResourceID:   project.ID,
			}
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *MongoProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	var project models.Project
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&project)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	project.Normalize()
	return &project, nil
}

// List retrieves all projects for a user, ordered by updatedAt DESC
func (r *MongoProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	for i := range projects {
		projects[i].Normalize()
	}
	return projects, nil
}

// Save replaces the project document if the stored version matches
func (r *MongoProjectRepository) Save(ctx context.Context, project *models.Project, expectedVersion int64) error {
	project.Normalize()

	next := *project
	next.Version = expectedVersion + 1

	filter := bson.M{"_id": project.ID, "userId": project.UserID, "version": expectedVersion}
	result, err := r.coll.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": project.ID, "userId": project.UserID})
		if err != nil {
			return fmt.Errorf("check project exists: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("project %s at version %d: %w", project.ID, expectedVersion, domain.ErrVersionConflict)
	}

	project.Version = next.Version
	return nil
}

// Delete removes the project document
func (r *MongoProjectRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
