package emaillogs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/pkg/response"
)

// Handler exposes the notification delivery history.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ListByWebinar handles GET /webinars/:id/emails (admin only).
func (h *Handler) ListByWebinar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	list, err := h.repo.ListByWebinar(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to list email logs", zap.Error(err))
		response.Internal(c, "failed to list email logs")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: list})
}
