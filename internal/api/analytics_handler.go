package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/internal/analytics"
	"portfolio/internal/api/middleware"
)

// AnalyticsHandler 负责访客信标与统计。
type AnalyticsHandler struct {
	repo   *analytics.Repository
	logger *slog.Logger
}

// NewAnalyticsHandler 构造 AnalyticsHandler。
func NewAnalyticsHandler(repo *analytics.Repository, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		repo:   repo,
		logger: logger,
	}
}

type visitRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Page      string `json:"page"`
}

// RecordVisit 记录一次页面到达（公开信标）。
func (h *AnalyticsHandler) RecordVisit(c *gin.Context) {
	var req visitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	visitID, err := h.repo.RecordVisit(c.Request.Context(), analytics.Visit{
		SessionID: req.SessionID,
		Page:      req.Page,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.loggerFromContext(c).Error("record visit failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "visit recorded", "visitId": visitID})
}

type leaveRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	TimeSpent int    `json:"timeSpent"`
}

// RecordLeave 把离开信标匹配到该会话最近一次到达的记录。
func (h *AnalyticsHandler) RecordLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.repo.RecordLeave(c.Request.Context(), req.SessionID, req.TimeSpent); err != nil {
		h.loggerFromContext(c).Error("record leave failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "leave recorded"})
}

// Stats 返回按需重算的聚合统计（仅管理员）。
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.repo.ComputeStats(c.Request.Context(), time.Now())
	if err != nil {
		h.loggerFromContext(c).Error("compute stats failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
