package service

import (
	"context"
	"errors"
	"strings"

	"cookify/internal/domain"
	"cookify/internal/repository"
)

// ErrNotOwner is returned when a user tries to modify an item they did
// not create.
var ErrNotOwner = errors.New("Not allowed to modify this item")

// ItemInput carries the client-editable fields of an item.
type ItemInput struct {
	Title        string
	ImageURL     string
	Servings     int
	CookTime     int
	Instructions string
	Categories   []string
	Ingredients  []domain.Ingredient
}

// ItemService coordinates item level operations backed by repositories.
type ItemService interface {
	Create(ctx context.Context, owner *domain.User, input ItemInput) (*domain.Item, error)
	Update(ctx context.Context, id int64, requester *domain.User, input ItemInput) error
	Delete(ctx context.Context, id int64, requester *domain.User) error
	Get(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Item, error)
	ListFavorites(ctx context.Context, userID int64, filter repository.ItemFilter) ([]domain.Item, error)
	ToggleLike(ctx context.Context, itemID, userID int64) (bool, error)
	AddComment(ctx context.Context, itemID int64, author *domain.User, text string) (*domain.Comment, error)
}

type itemService struct {
	items repository.ItemRepository
}

func NewItemService(items repository.ItemRepository) ItemService {
	return &itemService{items: items}
}

func (s *itemService) Create(ctx context.Context, owner *domain.User, input ItemInput) (*domain.Item, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("title is required")
	}
	if input.ImageURL == "" {
		input.ImageURL = domain.DefaultItemImageURL
	}

	item := &domain.Item{
		UserID:       owner.ID,
		UserName:     owner.Name,
		UserImageURL: owner.ImageURL,
		Title:        input.Title,
		ImageURL:     input.ImageURL,
		Servings:     input.Servings,
		CookTime:     input.CookTime,
		Instructions: input.Instructions,
		Categories:   input.Categories,
		Ingredients:  input.Ingredients,
	}

	if _, err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, id int64, requester *domain.User, input ItemInput) error {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != requester.ID {
		return ErrNotOwner
	}

	item.UserName = requester.Name
	item.UserImageURL = requester.ImageURL
	item.Title = input.Title
	item.ImageURL = input.ImageURL
	item.Servings = input.Servings
	item.CookTime = input.CookTime
	item.Instructions = input.Instructions
	item.Categories = input.Categories
	item.Ingredients = input.Ingredients

	return s.items.Update(ctx, item)
}

func (s *itemService) Delete(ctx context.Context, id int64, requester *domain.User) error {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != requester.ID {
		return ErrNotOwner
	}
	return s.items.Delete(ctx, id)
}

func (s *itemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

func (s *itemService) List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	return s.items.List(ctx, filter)
}

func (s *itemService) ListByUser(ctx context.Context, userID int64) ([]domain.Item, error) {
	return s.items.ListByUser(ctx, userID)
}

func (s *itemService) ListFavorites(ctx context.Context, userID int64, filter repository.ItemFilter) ([]domain.Item, error) {
	return s.items.ListLikedBy(ctx, userID, filter)
}

func (s *itemService) ToggleLike(ctx context.Context, itemID, userID int64) (bool, error) {
	return s.items.ToggleLike(ctx, itemID, userID)
}

func (s *itemService) AddComment(ctx context.Context, itemID int64, author *domain.User, text string) (*domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("comment text is required")
	}

	comment := &domain.Comment{
		ItemID:       itemID,
		UserID:       author.ID,
		UserName:     author.Name,
		UserImageURL: author.ImageURL,
		Text:         text,
	}

	if _, err := s.items.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
