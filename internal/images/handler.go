package images

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/middleware"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/users"
	"github.com/dancrewzus/webinar-wizard/pkg/response"
	"github.com/dancrewzus/webinar-wizard/pkg/storage"
)

// Handler handles profile image uploads.
type Handler struct {
	repo   *Repository
	users  *users.Repository
	s3     *storage.S3
	clk    clock.Clock
	logger *zap.Logger
}

// NewHandler creates an images handler.
func NewHandler(repo *Repository, users *users.Repository, s3 *storage.S3, clk clock.Clock, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, s3: s3, clk: clk, logger: logger}
}

// Upload handles POST /users/me/picture: a multipart "file" becomes the
// caller's profile picture.
func (h *Handler) Upload(c *gin.Context) {
	userVal, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	userID, ok := userVal.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	if fileHeader.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read file")
		return
	}
	defer file.Close()

	key := storage.ProfileKey(userID.String(), contentType)
	url, err := h.s3.UploadImage(c.Request.Context(), key, contentType, file)
	if err != nil {
		h.logger.Error("image upload failed", zap.Error(err))
		response.Internal(c, "failed to upload image")
		return
	}

	now := clock.Format(h.clk.Now())
	img := &models.Image{
		ID:        uuid.New(),
		URL:       url,
		Key:       key,
		CreatedBy: &userID,
		CreatedAt: now,
	}
	if err := h.repo.Create(c.Request.Context(), img); err != nil {
		h.logger.Error("failed to record image", zap.Error(err))
		response.Internal(c, "failed to record image")
		return
	}
	if err := h.users.UpdateProfilePicture(c.Request.Context(), userID, img.ID, now); err != nil {
		h.logger.Error("failed to set profile picture", zap.Error(err))
		response.Internal(c, "failed to set profile picture")
		return
	}
	response.Created(c, img)
}
