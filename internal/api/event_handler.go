package api

import (
	"net/http"

	"FunRadar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventHandler 活动CRUD与结果查询
type EventHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
	events *service.EventService
	votes  *service.VoteService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(db *gorm.DB, logger *logrus.Logger) *EventHandler {
	return &EventHandler{
		db:     db,
		logger: logger,
		events: service.NewEventService(db, logger),
		votes:  service.NewVoteService(db, logger),
	}
}

// List 当前用户可见的活动（组织的 + 受邀的）
// GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	events, err := h.events.ListForUser(ctx, user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	payloads := make([]service.EventPayload, 0, len(events))
	for i := range events {
		p, err := h.events.Payload(ctx, &events[i])
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		payloads = append(payloads, *p)
	}
	c.JSON(http.StatusOK, gin.H{"events": payloads})
}

// Create 创建活动（含组织者偏好与参与者邀请，单事务）
// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}

	var req service.CreateEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Create(ctx, user, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload, err := h.events.Payload(ctx, event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": payload})
}

// Show 活动详情。授权：组织者 / 受邀用户 / 正确的share_token
// GET /api/events/:id?share_token=xxx
func (h *EventHandler) Show(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user := currentUser(c, h.db)
	if err := h.events.Authorize(ctx, event, user, c.Query("share_token")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload, err := h.events.Payload(ctx, event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": payload})
}

// Progress 各邀请的提交进度
// GET /api/events/:id/progress
func (h *EventHandler) Progress(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	user := currentUser(c, h.db)
	if err := h.events.Authorize(ctx, event, user, c.Query("share_token")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload, err := h.events.Payload(ctx, event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            payload.Status,
		"progress":          payload.Progress,
		"submitted_count":   payload.SubmittedCount,
		"participant_count": payload.ParticipantCount,
	})
}

// Results 投票结果：候选 + 票面汇总 + 访问者已投分数 + 最终活动
// GET /api/events/:id/results?share_token=xxx&access_token=yyy
func (h *EventHandler) Results(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	user := currentUser(c, h.db)
	if err := h.events.Authorize(ctx, event, user, c.Query("share_token")); err != nil {
		// 持有效邀请令牌的匿名访问者同样可读结果
		if tokenErr := h.events.AuthorizeToken(ctx, event, c.Query("access_token")); tokenErr != nil {
			respondError(c, h.logger, tokenErr)
			return
		}
	}

	results, err := h.events.Results(ctx, event, user, c.Query("access_token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

type addInvitationRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
}

// AddInvitation 组织者补充参与者，必要时活动重回collecting
// POST /api/events/:id/invitations
func (h *EventHandler) AddInvitation(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req addInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invitee name can't be blank"})
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	inv, err := h.events.AddParticipant(ctx, event, user, req.Name, req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": service.NewInvitationPayload(inv, true)})
}

// Delete 组织者删除活动（级联）
// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c, h.db, h.logger)
	if !ok {
		return
	}
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.events.Delete(ctx, event, user); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type castVotesRequest struct {
	Votes []service.VoteInput `json:"votes"`
}

// CastVotes 批量写入评分，可能触发自动定案
// POST /api/events/:id/votes
func (h *EventHandler) CastVotes(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req castVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "votes can't be blank"})
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user := currentUser(c, h.db)
	result, err := h.votes.Cast(ctx, event, user, c.Query("access_token"), req.Votes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	payload, err := h.events.Payload(ctx, result.Event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event":         payload,
		"votes_summary": result.VotesSummary,
		"user_votes":    result.UserVotes,
		"finalized":     result.Finalized,
	})
}
