package domain

import "time"

// DefaultItemImageURL is assigned to items created without a picture.
const DefaultItemImageURL = "/img/item-default.jpg"

// Item represents a recipe posted by a user. The owner name and avatar
// are copied from the user at write time and are not kept in sync with
// later profile edits.
type Item struct {
	ID           int64
	UserID       int64
	UserName     string
	UserImageURL string
	Title        string
	ImageURL     string
	Servings     int
	CookTime     int
	Instructions string
	Categories   []string
	Ingredients  []Ingredient
	Comments     []Comment
	Likes        []int64
	NumLikes     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ingredient is a single entry of an item's ingredient list. The ID is
// supplied by the client and only has to be unique within the item.
type Ingredient struct {
	ID     string
	Name   string
	Amount string
}

// Comment is an immutable remark attached to an item.
type Comment struct {
	ID           int64
	ItemID       int64
	UserID       int64
	UserName     string
	UserImageURL string
	Text         string
	CreatedAt    time.Time
}

// LikedBy reports whether the given user is in the item's like set.
func (i *Item) LikedBy(userID int64) bool {
	for _, id := range i.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
