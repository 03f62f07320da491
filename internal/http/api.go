package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cookify/internal/auth"
	"cookify/internal/domain"
	"cookify/internal/service"
	"cookify/internal/storage"
)

// contextUserKey is where the auth middleware stores the resolved user.
const contextUserKey = "currentUser"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	items     service.ItemService
	tokens    *auth.TokenService
	storage   storage.Service
	bucket    string
	keyPrefix string
	logger    *logrus.Logger
}

func NewHandler(users service.UserService, items service.ItemService, tokens *auth.TokenService, store storage.Service, bucket, keyPrefix string, logger *logrus.Logger) *Handler {
	return &Handler{
		users:     users,
		items:     items,
		tokens:    tokens,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	if h.logger != nil {
		router.Use(requestLogger(h.logger))
	}

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", h.registerUser)
			users.POST("/login", h.loginUser)
			users.POST("/reset", h.resetPassword)
			users.GET("/profile", h.authRequired(), h.getProfile)
			users.PUT("/profile", h.authRequired(), h.updateProfile)
			users.DELETE("/delete", h.authRequired(), h.deleteAccount)
		}

		items := api.Group("/items")
		{
			items.GET("", h.listItems)
			items.POST("", h.authRequired(), h.createItem)
			items.GET("/my", h.authRequired(), h.listMyItems)
			items.GET("/favorite", h.authRequired(), h.listFavoriteItems)
			items.GET("/:id", h.getItem)
			items.PUT("/:id", h.authRequired(), h.updateItem)
			items.DELETE("/:id", h.authRequired(), h.deleteItem)
			items.POST("/like/:id", h.authRequired(), h.toggleLike)
			items.POST("/comment/:id", h.authRequired(), h.addComment)
		}

		api.POST("/uploads", h.authRequired(), h.uploadImage)
		api.GET("/uploads/*key", h.serveUpload)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

// authRequired guards a route behind a bearer token. The token subject
// must still resolve to an existing user; a valid token for a deleted
// account is rejected.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		userID, err := h.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUserNotFound.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	value, _ := c.Get(contextUserKey)
	user, _ := value.(*domain.User)
	return user
}

// fail maps service errors to status codes with the {message} body shape
// every error response uses.
func (h *Handler) fail(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"message": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrNameTaken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}
