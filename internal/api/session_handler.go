package api

import (
	"net/http"
	"strconv"

	"FunRadar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionHandler 名字即身份的轻量登录
type SessionHandler struct {
	db          *gorm.DB
	logger      *logrus.Logger
	users       *service.UserService
	events      *service.EventService
	invitations *service.InvitationService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(db *gorm.DB, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		db:          db,
		logger:      logger,
		users:       service.NewUserService(db, logger),
		events:      service.NewEventService(db, logger),
		invitations: service.NewInvitationService(db, logger),
	}
}

type sessionRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create 登录/注册二合一
// POST /api/session {"name":"Ann"}
func (h *SessionHandler) Create(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "name can't be blank"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.SignIn(ctx, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// 登录响应顺带带回名下邀请（含令牌）和组织的活动，前端免二次请求
	invitations, err := h.invitations.ListForUser(ctx, user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	invPayloads := make([]service.InvitationPayload, 0, len(invitations))
	for i := range invitations {
		invPayloads = append(invPayloads, service.NewInvitationPayload(&invitations[i], true))
	}

	events, err := h.events.ListForUser(ctx, user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	eventSummaries := make([]gin.H, 0, len(events))
	for _, e := range events {
		eventSummaries = append(eventSummaries, gin.H{
			"id":     e.ID,
			"title":  e.Title,
			"status": e.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        service.NewUserPayload(user),
		"invitations": invPayloads,
		"events":      eventSummaries,
	})
}

// UserHandler 用户资料（位置授权）更新
type UserHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
	users  *service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(db *gorm.DB, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		db:     db,
		logger: logger,
		users:  service.NewUserService(db, logger),
	}
}

// Update 更新位置授权与坐标，只允许本人
// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id != user.ID {
		respondError(c, h.logger, service.ErrForbidden)
		return
	}

	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.users.UpdateLocation(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": service.NewUserPayload(updated)})
}
