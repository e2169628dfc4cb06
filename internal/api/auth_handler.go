package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/api/middleware"
	"portfolio/internal/auth"
)

// AuthHandler 处理管理员登录。
type AuthHandler struct {
	authService      *auth.Service
	redis            redis.UniversalClient
	logger           *slog.Logger
	rateLimitPerHour int
	lockThreshold    int
	lockTTL          time.Duration
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(authService *auth.Service, redisClient redis.UniversalClient, logger *slog.Logger, rateLimitPerHour, lockThreshold int, lockTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		redis:            redisClient,
		logger:           logger,
		rateLimitPerHour: rateLimitPerHour,
		lockThreshold:    lockThreshold,
		lockTTL:          lockTTL,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验静态管理员凭据并签发 24 小时会话令牌。
// 凭据错误统一返回同一条消息，不暴露哪一项不匹配。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 速率限制：每 IP+邮箱 每小时一个窗口。
	rateKey := "rate:login:" + c.ClientIP() + ":" + email + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
	if err != nil {
		count = 0
	}
	if count > int64(h.rateLimitPerHour) {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
		return
	}

	if lockActive(ctx, h.redis, "lock:login:"+email) {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "login temporarily locked"})
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Info("login failed", slog.String("email", email))
			_ = registerLoginFailure(ctx, h.redis, email, h.lockThreshold, h.lockTTL)
			Unauthorized(c, "invalid email or password")
			return
		}
		logger.Error("login error", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}

	// 登录成功：清理失败计数。
	_ = h.redis.Del(ctx, "lock:login:fail:"+email).Err()

	logger.Info("admin logged in", slog.String("email", email))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
