package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/internal/api/middleware"
	"portfolio/internal/assets"
	"portfolio/internal/content"
	"portfolio/internal/database"
)

// ProjectHandler 负责项目的增删改查与配图槽位。
type ProjectHandler struct {
	repo    *content.Repository
	manager *assets.Manager
	logger  *slog.Logger
}

// NewProjectHandler 构造 ProjectHandler。
func NewProjectHandler(repo *content.Repository, manager *assets.Manager, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		repo:    repo,
		manager: manager,
		logger:  logger,
	}
}

type projectResponse struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Technologies json.RawMessage `json:"technologies"`
	ImageURL     string          `json:"imageUrl"`
	GithubURL    string          `json:"githubUrl"`
	LiveURL      string          `json:"liveUrl"`
	Category     string          `json:"category"`
	Order        int             `json:"order"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func newProjectResponse(p *database.Project) projectResponse {
	return projectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Technologies: rawOrEmptyList(p.Technologies),
		ImageURL:     p.ImageURL,
		GithubURL:    p.GithubURL,
		LiveURL:      p.LiveURL,
		Category:     p.Category,
		Order:        p.SortOrder,
		CreatedAt:    p.CreatedAt,
	}
}

// ListProjects 返回有序项目列表（公开）。
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.repo.ListProjects(c.Request.Context())
	if err != nil {
		h.loggerFromContext(c).Error("list projects failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, newProjectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, items)
}

type createProjectRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Technologies []string `json:"technologies"`
	GithubURL    string   `json:"githubUrl"`
	LiveURL      string   `json:"liveUrl"`
	Category     string   `json:"category"`
	Order        int      `json:"order"`
}

// CreateProject 新建项目。
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	project, err := h.repo.CreateProject(c.Request.Context(), content.ProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		GithubURL:    req.GithubURL,
		LiveURL:      req.LiveURL,
		Category:     req.Category,
		SortOrder:    req.Order,
	})
	if err != nil {
		h.loggerFromContext(c).Error("create project failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusCreated, newProjectResponse(project))
}

type updateProjectRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Technologies *[]string `json:"technologies"`
	GithubURL    *string   `json:"githubUrl"`
	LiveURL      *string   `json:"liveUrl"`
	Category     *string   `json:"category"`
	Order        *int      `json:"order"`
}

// UpdateProject 更新被提交的字段。
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := projectIDFromParam(c)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	project, err := h.repo.UpdateProject(c.Request.Context(), id, content.ProjectPatch{
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		GithubURL:    req.GithubURL,
		LiveURL:      req.LiveURL,
		Category:     req.Category,
		SortOrder:    req.Order,
	})
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		h.loggerFromContext(c).Error("update project failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

// DeleteProject 删除项目；先尽力清掉配图，避免存储端留下孤儿。
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := projectIDFromParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.manager.Clear(ctx, assets.SlotProjectImage, h.repo.ProjectImageSlot(id)); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		h.loggerFromContext(c).Error("clear project image before delete failed",
			slog.Uint64("project_id", uint64(id)),
			slog.Any("error", err),
		)
	}

	if err := h.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		h.loggerFromContext(c).Error("delete project failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// UploadImage 替换项目配图。
func (h *ProjectHandler) UploadImage(c *gin.Context) {
	id, ok := projectIDFromParam(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		BadRequest(c, "no file received")
		return
	}

	ref, err := h.manager.Replace(c.Request.Context(), assets.SlotProjectImage, h.repo.ProjectImageSlot(id), uploadFromFileHeader(file, ""))
	if err != nil {
		respondAssetError(c, h.loggerFromContext(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image uploaded", "imageUrl": ref.URL})
}

// DeleteImage 清空项目配图槽位（幂等）。
func (h *ProjectHandler) DeleteImage(c *gin.Context) {
	id, ok := projectIDFromParam(c)
	if !ok {
		return
	}

	if err := h.manager.Clear(c.Request.Context(), assets.SlotProjectImage, h.repo.ProjectImageSlot(id)); err != nil {
		respondAssetError(c, h.loggerFromContext(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}

func projectIDFromParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid project id")
		return 0, false
	}
	return uint(id), true
}

func (h *ProjectHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
