package webinars

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/attendance"
	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/middleware"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/pkg/response"
	"github.com/dancrewzus/webinar-wizard/pkg/utils"
)

// CreateRequest is the body for POST /webinars.
type CreateRequest struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description" binding:"required"`
	Presenter        string `json:"presenter" binding:"required"`
	RegistrationLink string `json:"registrationLink"`
	Date             string `json:"date" binding:"required"`
	Duration         int    `json:"duration" binding:"required,min=1"`
	MaxAttendees     int    `json:"maxAttendees" binding:"required,min=10"`
}

// UpdateRequest is the body for PATCH /webinars/:id. Absent fields keep
// their current value. Status is not updatable here: only the lifecycle
// sweep moves it.
type UpdateRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Presenter        *string `json:"presenter"`
	RegistrationLink *string `json:"registrationLink"`
	Date             *string `json:"date"`
	Duration         *int    `json:"duration"`
	MaxAttendees     *int    `json:"maxAttendees"`
}

// Handler handles webinar HTTP endpoints.
type Handler struct {
	repo        *Repository
	coordinator *attendance.Coordinator
	clk         clock.Clock
	logger      *zap.Logger
}

// NewHandler creates a webinar handler.
func NewHandler(repo *Repository, coordinator *attendance.Coordinator, clk clock.Clock, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, coordinator: coordinator, clk: clk, logger: logger}
}

// Create handles POST /webinars (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := clock.Parse(req.Date, h.clk.Location()); err != nil {
		response.BadRequest(c, "invalid date, expected DD/MM/YYYY HH:mm:ss")
		return
	}

	slug := utils.Slugify(req.Title)
	if slug == "" {
		response.BadRequest(c, "title produces an empty slug")
		return
	}
	if _, err := h.repo.GetBySlug(c.Request.Context(), slug); err == nil {
		response.Conflict(c, "a webinar with this title already exists")
		return
	}

	actorID := currentUserID(c)
	now := clock.Format(h.clk.Now())
	w := &models.Webinar{
		ID:               uuid.New(),
		Title:            req.Title,
		Slug:             slug,
		Description:      req.Description,
		Presenter:        req.Presenter,
		RegistrationLink: req.RegistrationLink,
		Date:             req.Date,
		Duration:         req.Duration,
		MaxAttendees:     req.MaxAttendees,
		Status:           models.StatusScheduled,
		AttendeeIDs:      []uuid.UUID{},
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.repo.Create(c.Request.Context(), w); err != nil {
		h.logger.Error("failed to create webinar", zap.Error(err))
		response.Internal(c, "failed to create webinar")
		return
	}
	response.Created(c, w)
}

// List handles GET /webinars. An optional ?status= filters by lifecycle state.
func (h *Handler) List(c *gin.Context) {
	status := models.WebinarStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		response.BadRequest(c, "unknown status")
		return
	}
	list, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("failed to list webinars", zap.Error(err))
		response.Internal(c, "failed to list webinars")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: list})
}

// Get handles GET /webinars/:id. The parameter is a webinar ID or a slug.
func (h *Handler) Get(c *gin.Context) {
	w, err := h.lookup(c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "webinar not found")
			return
		}
		h.logger.Error("failed to load webinar", zap.Error(err))
		response.Internal(c, "failed to load webinar")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: w})
}

// Update handles PATCH /webinars/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	w, err := h.lookup(c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "webinar not found")
			return
		}
		response.Internal(c, "failed to load webinar")
		return
	}
	if w.Deleted {
		response.Conflict(c, "webinar has been cancelled")
		return
	}

	if req.Title != nil && *req.Title != w.Title {
		slug := utils.Slugify(*req.Title)
		if slug == "" {
			response.BadRequest(c, "title produces an empty slug")
			return
		}
		if existing, err := h.repo.GetBySlug(c.Request.Context(), slug); err == nil && existing.ID != w.ID {
			response.Conflict(c, "a webinar with this title already exists")
			return
		}
		w.Title = *req.Title
		w.Slug = slug
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.Presenter != nil {
		w.Presenter = *req.Presenter
	}
	if req.RegistrationLink != nil {
		w.RegistrationLink = *req.RegistrationLink
	}
	if req.Date != nil {
		if _, err := clock.Parse(*req.Date, h.clk.Location()); err != nil {
			response.BadRequest(c, "invalid date, expected DD/MM/YYYY HH:mm:ss")
			return
		}
		w.Date = *req.Date
	}
	if req.Duration != nil {
		if *req.Duration < 1 {
			response.BadRequest(c, "duration must be positive")
			return
		}
		w.Duration = *req.Duration
	}
	if req.MaxAttendees != nil {
		if *req.MaxAttendees < 10 {
			response.BadRequest(c, "maxAttendees must be at least 10")
			return
		}
		w.MaxAttendees = *req.MaxAttendees
	}

	w.UpdatedAt = clock.Format(h.clk.Now())
	if err := h.repo.Update(c.Request.Context(), w); err != nil {
		h.logger.Error("failed to update webinar", zap.Error(err))
		response.Internal(c, "failed to update webinar")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: w})
}

// Delete handles DELETE /webinars/:id (admin only). The webinar is
// cancelled: soft-deleted, severed from every attendee, attendees notified.
func (h *Handler) Delete(c *gin.Context) {
	w, err := h.lookup(c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "webinar not found")
			return
		}
		response.Internal(c, "failed to load webinar")
		return
	}

	actorID := currentUserID(c)
	if actorID == nil {
		response.Unauthorized(c, "missing user context")
		return
	}
	if err := h.coordinator.Cancel(c.Request.Context(), w.ID, *actorID, c.ClientIP()); err != nil {
		h.attendanceError(c, err, "failed to cancel webinar")
		return
	}
	response.NoContent(c)
}

// Attend handles POST /webinars/:id/attend.
func (h *Handler) Attend(c *gin.Context) {
	h.attendance(c, h.coordinator.Join)
}

// NotAttend handles POST /webinars/:id/not-attend.
func (h *Handler) NotAttend(c *gin.Context) {
	h.attendance(c, h.coordinator.Leave)
}

func (h *Handler) attendance(c *gin.Context, op func(ctx context.Context, webinarID, userID uuid.UUID, clientIP string) error) {
	w, err := h.lookup(c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "webinar not found")
			return
		}
		response.Internal(c, "failed to load webinar")
		return
	}

	userID := currentUserID(c)
	if userID == nil {
		response.Unauthorized(c, "missing user context")
		return
	}
	if err := op(c.Request.Context(), w.ID, *userID, c.ClientIP()); err != nil {
		h.attendanceError(c, err, "failed to update attendance")
		return
	}

	updated, err := h.repo.GetByID(c.Request.Context(), w.ID)
	if err != nil {
		response.NoContent(c)
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: updated})
}

func (h *Handler) attendanceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "webinar not found")
	case errors.Is(err, attendance.ErrAlreadyAttending):
		response.Conflict(c, "already attending this webinar")
	case errors.Is(err, attendance.ErrNotAttending):
		response.Conflict(c, "not attending this webinar")
	case errors.Is(err, attendance.ErrWebinarFull):
		response.Conflict(c, "webinar is at capacity")
	case errors.Is(err, attendance.ErrWebinarDeleted):
		response.Conflict(c, "webinar has been cancelled")
	case errors.Is(err, attendance.ErrUserDisabled):
		response.Forbidden(c, "account is disabled")
	default:
		h.logger.Error(fallback, zap.Error(err))
		response.Internal(c, fallback)
	}
}

// lookup resolves the :id path parameter as a UUID first, then a slug.
func (h *Handler) lookup(c *gin.Context) (*models.Webinar, error) {
	param := c.Param("id")
	if id, err := uuid.Parse(param); err == nil {
		return h.repo.GetByID(c.Request.Context(), id)
	}
	return h.repo.GetBySlug(c.Request.Context(), param)
}

func currentUserID(c *gin.Context) *uuid.UUID {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
