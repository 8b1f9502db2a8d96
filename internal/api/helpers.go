package api

import (
	"errors"
	"net/http"
	"strconv"

	"FunRadar/internal/model"
	"FunRadar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// currentUser 从 X-User-Id 头解析当前用户（受信内网头，无签名校验）。
// 头缺失或用户不存在时返回nil，令牌路径允许匿名访问。
func currentUser(c *gin.Context, db *gorm.DB) *model.User {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	var user model.User
	if err := db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		return nil
	}
	return &user
}

// respondError 业务错误映射HTTP状态码
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case service.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("请求处理失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// requireUser 必须登录的端点入口
func requireUser(c *gin.Context, db *gorm.DB, logger *logrus.Logger) (*model.User, bool) {
	user := currentUser(c, db)
	if user == nil {
		respondError(c, logger, service.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// eventIDParam 解析 :id 路径参数
func eventIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}
