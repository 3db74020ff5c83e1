package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/roles"
	"github.com/dancrewzus/webinar-wizard/internal/tracks"
	"github.com/dancrewzus/webinar-wizard/internal/users"
	"github.com/dancrewzus/webinar-wizard/pkg/response"
	"github.com/dancrewzus/webinar-wizard/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Name        string `json:"name" binding:"required"`
	Surname     string `json:"surname"`
	Gender      string `json:"gender"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users  *users.Repository
	roles  *roles.Repository
	tracks *tracks.Repository
	jwt    *JWTService
	clk    clock.Clock
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(users *users.Repository, roles *roles.Repository, tracks *tracks.Repository, jwt *JWTService, clk clock.Clock, logger *zap.Logger) *Handler {
	return &Handler{users: users, roles: roles, tracks: tracks, jwt: jwt, clk: clk, logger: logger}
}

// Register handles POST /auth/register. New accounts always get the client role.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.users.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	role, err := h.roles.GetByName(c.Request.Context(), models.RoleClient)
	if err != nil {
		response.Internal(c, "failed to resolve role")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	now := clock.Format(h.clk.Now())
	user := &models.User{
		ID:          uuid.New(),
		Email:       req.Email,
		Password:    hash,
		Name:        req.Name,
		Surname:     req.Surname,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
		RoleID:      role.ID,
		RoleName:    role.Name,
		WebinarIDs:  []uuid.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	h.audit(c, user.ID, "User registered: "+user.Email)

	token, err := h.jwt.Generate(user.ID, user.Email, user.RoleName)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || user.Deleted {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.RoleName)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	h.audit(c, user.ID, "User logged in: "+user.Email)

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user}})
}

func (h *Handler) audit(c *gin.Context, userID uuid.UUID, description string) {
	t := &models.Track{
		IP:          c.ClientIP(),
		Description: description,
		Module:      "auth",
		UserID:      &userID,
		CreatedAt:   clock.Format(h.clk.Now()),
	}
	if err := h.tracks.Create(c.Request.Context(), t); err != nil {
		h.logger.Warn("failed to record audit entry", zap.Error(err))
	}
}
