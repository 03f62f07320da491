package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cookify/internal/domain"
	"cookify/internal/repository"
	"cookify/internal/service"
)

type itemRequest struct {
	Title        string              `json:"title" binding:"required"`
	ImageURL     string              `json:"imageUrl"`
	Servings     int                 `json:"servings"`
	CookTime     int                 `json:"cookTime"`
	Instructions string              `json:"instructions"`
	Category     []string            `json:"category"`
	Ingredients  []ingredientRequest `json:"ingredients"`
}

type ingredientRequest struct {
	ID     string `json:"id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

type ItemResponse struct {
	ID           int64                `json:"id"`
	UserID       int64                `json:"userId"`
	UserName     string               `json:"userName"`
	UserImageURL string               `json:"userImageUrl"`
	Title        string               `json:"title"`
	ImageURL     string               `json:"imageUrl"`
	Servings     int                  `json:"servings"`
	CookTime     int                  `json:"cookTime"`
	Instructions string               `json:"instructions"`
	Category     []string             `json:"category"`
	Ingredients  []IngredientResponse `json:"ingredients"`
	Comments     []CommentResponse    `json:"comments"`
	Likes        []int64              `json:"likes"`
	NumLikes     int                  `json:"numLikes"`
	CreatedAt    string               `json:"createdAt"`
	UpdatedAt    string               `json:"updatedAt"`
}

type IngredientResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type CommentResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userId"`
	UserName     string `json:"userName"`
	UserImageURL string `json:"userImageUrl"`
	Text         string `json:"text"`
	CreatedAt    string `json:"createdAt"`
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsToResponse(items))
}

func (h *Handler) listMyItems(c *gin.Context) {
	items, err := h.items.ListByUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsToResponse(items))
}

func (h *Handler) listFavoriteItems(c *gin.Context) {
	items, err := h.items.ListFavorites(c.Request.Context(), currentUser(c).ID, filterFromQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsToResponse(items))
}

func (h *Handler) getItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(*item))
}

func (h *Handler) createItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if _, err := h.items.Create(c.Request.Context(), currentUser(c), itemInput(req)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added"})
}

func (h *Handler) updateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.items.Update(c.Request.Context(), id, currentUser(c), itemInput(req)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated"})
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	liked, err := h.items.ToggleLike(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "Like removed"
	if liked {
		message = "Like added"
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *Handler) addComment(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if _, err := h.items.AddComment(c.Request.Context(), id, currentUser(c), req.Text); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added"})
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid item id"})
		return 0, false
	}
	return id, true
}

func filterFromQuery(c *gin.Context) repository.ItemFilter {
	return repository.ItemFilter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
	}
}

func itemInput(req itemRequest) service.ItemInput {
	ingredients := make([]domain.Ingredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		ingredients[i] = domain.Ingredient{
			ID:     ing.ID,
			Name:   ing.Name,
			Amount: ing.Amount,
		}
	}
	return service.ItemInput{
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		Servings:     req.Servings,
		CookTime:     req.CookTime,
		Instructions: req.Instructions,
		Categories:   req.Category,
		Ingredients:  ingredients,
	}
}

func itemsToResponse(items []domain.Item) []ItemResponse {
	resp := make([]ItemResponse, len(items))
	for i := range items {
		resp[i] = itemToResponse(items[i])
	}
	return resp
}

func itemToResponse(item domain.Item) ItemResponse {
	resp := ItemResponse{
		ID:           item.ID,
		UserID:       item.UserID,
		UserName:     item.UserName,
		UserImageURL: item.UserImageURL,
		Title:        item.Title,
		ImageURL:     item.ImageURL,
		Servings:     item.Servings,
		CookTime:     item.CookTime,
		Instructions: item.Instructions,
		Category:     item.Categories,
		Ingredients:  make([]IngredientResponse, len(item.Ingredients)),
		Comments:     make([]CommentResponse, len(item.Comments)),
		Likes:        item.Likes,
		NumLikes:     item.NumLikes,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Likes == nil {
		resp.Likes = []int64{}
	}
	if resp.Category == nil {
		resp.Category = []string{}
	}

	for i := range item.Ingredients {
		resp.Ingredients[i] = IngredientResponse{
			ID:     item.Ingredients[i].ID,
			Name:   item.Ingredients[i].Name,
			Amount: item.Ingredients[i].Amount,
		}
	}
	for i := range item.Comments {
		resp.Comments[i] = CommentResponse{
			ID:           item.Comments[i].ID,
			UserID:       item.Comments[i].UserID,
			UserName:     item.Comments[i].UserName,
			UserImageURL: item.Comments[i].UserImageURL,
			Text:         item.Comments[i].Text,
			CreatedAt:    item.Comments[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}
