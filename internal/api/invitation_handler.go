package api

import (
	"net/http"

	"FunRadar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InvitationHandler 邀请查询、认领与偏好提交（免登录令牌路径）
type InvitationHandler struct {
	db          *gorm.DB
	logger      *logrus.Logger
	invitations *service.InvitationService
	preferences *service.PreferenceService
	events      *service.EventService
}

// NewInvitationHandler 创建 InvitationHandler
func NewInvitationHandler(db *gorm.DB, logger *logrus.Logger, preferences *service.PreferenceService) *InvitationHandler {
	return &InvitationHandler{
		db:          db,
		logger:      logger,
		invitations: service.NewInvitationService(db, logger),
		preferences: preferences,
		events:      service.NewEventService(db, logger),
	}
}

// List 当前用户名下的邀请
// GET /api/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForUser(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	payloads := make([]service.InvitationPayload, 0, len(invitations))
	for i := range invitations {
		payloads = append(payloads, service.NewInvitationPayload(&invitations[i], true))
	}
	c.JSON(http.StatusOK, gin.H{"invitations": payloads})
}

// Show 按令牌取邀请及其活动，持令牌即视为授权
// GET /api/invitations/:token
func (h *InvitationHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	inv, event, err := h.invitations.FindByToken(ctx, c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload := service.NewInvitationPayload(inv, true)
	eventPayload, err := h.events.Payload(ctx, event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	payload.Event = eventPayload
	c.JSON(http.StatusOK, gin.H{"invitation": payload})
}

// Claim 登录用户认领未绑定的邀请
// PATCH /api/invitations/:token
func (h *InvitationHandler) Claim(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}

	inv, err := h.invitations.Claim(c.Request.Context(), c.Param("token"), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": service.NewInvitationPayload(inv, true)})
}

// ShowPreference 按令牌读偏好
// GET /api/invitations/:token/preference
func (h *InvitationHandler) ShowPreference(c *gin.Context) {
	inv, pref, err := h.preferences.FindInvitation(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload := service.NewInvitationPayload(inv, true)
	payload.Preference = service.NewPreferencePayload(pref)
	c.JSON(http.StatusOK, gin.H{"invitation": payload})
}

// UpsertPreference 提交/更新偏好，可能触发就绪检查与匹配调度
// POST/PUT /api/invitations/:token/preference
func (h *InvitationHandler) UpsertPreference(c *gin.Context) {
	var req service.PreferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	inv, pref, err := h.preferences.Submit(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload := service.NewInvitationPayload(inv, true)
	payload.Preference = service.NewPreferencePayload(pref)
	c.JSON(http.StatusOK, gin.H{"invitation": payload})
}
