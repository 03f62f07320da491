package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cookify/internal/domain"
	"cookify/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
	IsAdmin  bool   `json:"isAdmin"`
	Token    string `json:"token,omitempty"`
}

func userToResponse(user *domain.User, token string) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		ImageURL: user.ImageURL,
		IsAdmin:  user.IsAdmin,
		Token:    token,
	}
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user, token))
}

func (h *Handler) loginUser(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user, token))
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("We sent a new password to %s", req.Email)})
}

func (h *Handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(currentUser(c), ""))
}

// updateProfile patches the provided fields and hands back a fresh
// token so clients whose name/email changed keep a consistent session.
func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c).ID, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		ImageURL: req.ImageURL,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user, token))
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), currentUser(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}
