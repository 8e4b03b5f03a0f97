package services

import (
	"context"

	"storyloom/internal/domain/models/style"
)

// StyleService manages author and book styles with at most one default per user and kind
type StyleService interface {
	// List returns normalized styles; if storage holds several defaults only the
	// most recently updated one is reported as default
	List(ctx context.Context, userID string, kind style.Kind) ([]style.Style, error)

	// Create requires a name and every categorical attribute of the kind
	Create(ctx context.Context, userID string, kind style.Kind, fields *style.Fields) (*style.Style, error)

	Update(ctx context.Context, userID string, kind style.Kind, id string, fields *style.Fields) (*style.Style, error)

	Delete(ctx context.Context, userID string, kind style.Kind, id string) error

	// Resolve returns the referenced style, else the user's default, else vocabulary defaults.
	// A dangling reference is not an error.
	Resolve(ctx context.Context, userID string, kind style.Kind, id *string) (*style.Style, error)
}
