package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	DB          *mongo.Database
	Collections *CollectionNames
	Logger      *slog.Logger
}

// CollectionNames holds dynamically prefixed collection names
type CollectionNames struct {
	Projects string
	Styles   string
	Users    string
}

// NewCollectionNames creates collection names with the given prefix
func NewCollectionNames(prefix string) *CollectionNames {
	return &CollectionNames{
		Projects: fmt.Sprintf("%sprojects", prefix),
		Styles:   fmt.Sprintf("%sstyles", prefix),
		Users:    fmt.Sprintf("%susers", prefix),
	}
}

// Connect opens a client and verifies the server is reachable.
// Nested documents decode as bson.M so free-form metadata round-trips as a map.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database, names *CollectionNames) error {
	_, err := db.Collection(names.Projects).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create project index: %w", err)
	}

	_, err = db.Collection(names.Styles).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "kind", Value: 1}, {Key: "updatedAt", Value: -1}}},
		{
			// At most one default per user and kind
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().
				SetName("one_default").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"defaultStyle": true}),
		},
	})
	if err != nil {
		return fmt.Errorf("create style indexes: %w", err)
	}

	_, err = db.Collection(names.Users).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user index: %w", err)
	}

	return nil
}

// DropCollections removes all collections for the prefix. Used by the seed tool's --reset.
func DropCollections(ctx context.Context, db *mongo.Database, names *CollectionNames) error {
	for _, name := range []string{names.Projects, names.Styles, names.Users} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	return nil
}
