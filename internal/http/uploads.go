package http

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

// uploadImage stores a multipart image in object storage and returns a
// stable URL served through serveUpload.
func (h *Handler) uploadImage(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "storage service not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}
	defer file.Close()

	key := path.Join(strings.Trim(h.keyPrefix, "/"), uuid.NewString()+filepath.Ext(header.Filename))
	if err := h.storage.UploadObject(c.Request.Context(), h.bucket, key, file, header.Header.Get("Content-Type")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imageUrl": "/api/uploads/" + key})
}

func (h *Handler) serveUpload(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "storage service not configured"})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "object key is required"})
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, presignExpiry)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
