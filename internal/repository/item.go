package repository

import (
	"context"

	"cookify/internal/domain"
)

// ItemFilter narrows item listings. Zero values leave the listing
// unfiltered.
type ItemFilter struct {
	// Keyword matches item titles by case-insensitive substring.
	Keyword string
	// Category matches items tagged with the given category.
	Category string
}

// ItemRepository exposes persistence operations for Item aggregates.
type ItemRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, item *domain.Item) (int64, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Item, error)
	ListLikedBy(ctx context.Context, userID int64, filter ItemFilter) ([]domain.Item, error)
	// ToggleLike flips the user's membership in the item's like set and
	// adjusts the like counter in the same transaction. It reports the
	// resulting membership.
	ToggleLike(ctx context.Context, itemID, userID int64) (bool, error)
	AddComment(ctx context.Context, comment *domain.Comment) (int64, error)
}
