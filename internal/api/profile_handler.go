package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/internal/api/middleware"
	"portfolio/internal/assets"
	"portfolio/internal/content"
	"portfolio/internal/database"
	"portfolio/internal/storage"
)

// ProfileHandler 负责个人资料文档与其两个资产槽位（头像、CV）。
type ProfileHandler struct {
	repo    *content.Repository
	manager *assets.Manager
	store   storage.ObjectStore
	logger  *slog.Logger
}

// NewProfileHandler 构造 ProfileHandler。
func NewProfileHandler(repo *content.Repository, manager *assets.Manager, store storage.ObjectStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		repo:    repo,
		manager: manager,
		store:   store,
		logger:  logger,
	}
}

type cvResponse struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type profileResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	PhotoURL    string          `json:"photoUrl"`
	CV          *cvResponse     `json:"cv"`
	Skills      json.RawMessage `json:"skills"`
	Experiences json.RawMessage `json:"experiences"`
	Formations  json.RawMessage `json:"formations"`
	Contacts    json.RawMessage `json:"contacts"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func newProfileResponse(p *database.Profile) profileResponse {
	resp := profileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Title:       p.Title,
		Description: p.Description,
		PhotoURL:    p.PhotoURL,
		Skills:      rawOrEmptyList(p.Skills),
		Experiences: rawOrEmptyList(p.Experiences),
		Formations:  rawOrEmptyList(p.Formations),
		Contacts:    rawOrEmptyList(p.Contacts),
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CVObjectKey != "" || p.CVURL != "" {
		cv := cvResponse{
			Filename:     p.CVFileName,
			OriginalName: p.CVOriginalName,
			URL:          p.CVURL,
		}
		if p.CVUploadedAt != nil {
			cv.UploadedAt = *p.CVUploadedAt
		}
		resp.CV = &cv
	}
	return resp
}

func rawOrEmptyList(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return json.RawMessage(raw)
}

func newCVResponse(ref *assets.Reference) cvResponse {
	return cvResponse{
		Filename:     ref.FileName,
		OriginalName: ref.DisplayName,
		URL:          ref.URL,
		UploadedAt:   ref.UploadedAt,
	}
}

// GetProfile 返回完整资料文档（公开，不存在时惰性创建）。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.repo.GetOrCreateProfile(c.Request.Context())
	if err != nil {
		h.loggerFromContext(c).Error("get profile failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// UpdateProfile 更新基础信息中被提交的字段，返回完整文档。
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	profile, err := h.repo.UpdateProfileInfo(c.Request.Context(), content.ProfileInfoUpdate{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.loggerFromContext(c).Error("update profile failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// UploadPhoto 替换头像。
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		BadRequest(c, "no file received")
		return
	}

	ref, err := h.manager.Replace(c.Request.Context(), assets.SlotPhoto, h.repo.PhotoSlot(), uploadFromFileHeader(file, ""))
	if err != nil {
		h.respondAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "photo uploaded", "photoUrl": ref.URL})
}

// DeletePhoto 清空头像槽位（幂等）。
func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	if err := h.manager.Clear(c.Request.Context(), assets.SlotPhoto, h.repo.PhotoSlot()); err != nil {
		h.respondAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "photo deleted"})
}

// UploadCV 替换 CV，可选 customName 作为展示名。
func (h *ProfileHandler) UploadCV(c *gin.Context) {
	file, err := c.FormFile("cv")
	if err != nil {
		BadRequest(c, "no file received")
		return
	}
	customName := c.PostForm("customName")

	ref, err := h.manager.Replace(c.Request.Context(), assets.SlotCV, h.repo.CVSlot(), uploadFromFileHeader(file, customName))
	if err != nil {
		h.respondAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cv uploaded", "cv": newCVResponse(ref)})
}

type renameCVRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameCV 仅更新 CV 的展示名，不触碰存储端。
func (h *ProfileHandler) RenameCV(c *gin.Context) {
	var req renameCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ref, err := h.manager.Rename(c.Request.Context(), h.repo.CVSlot(), req.Name)
	if err != nil {
		h.respondAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cv renamed", "cv": newCVResponse(ref)})
}

// DeleteCV 清空 CV 槽位（幂等）。
func (h *ProfileHandler) DeleteCV(c *gin.Context) {
	if err := h.manager.Clear(c.Request.Context(), assets.SlotCV, h.repo.CVSlot()); err != nil {
		h.respondAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cv deleted"})
}

// DownloadCV 回源下载 CV（公开）；?preview=true 时内联展示。
// 存储端对象已消失时顺带清掉悬空引用再返回 404。
func (h *ProfileHandler) DownloadCV(c *gin.Context) {
	ctx := c.Request.Context()
	profile, err := h.repo.GetOrCreateProfile(ctx)
	if err != nil {
		h.loggerFromContext(c).Error("get profile failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	if profile.CVObjectKey == "" {
		NotFound(c, "no cv available")
		return
	}

	reader, err := h.store.Open(ctx, profile.CVObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			if swapErr := h.repo.CVSlot().Swap(ctx, nil); swapErr != nil {
				h.loggerFromContext(c).Error("clear dangling cv reference failed", slog.Any("error", swapErr))
			}
			NotFound(c, "cv file not found")
			return
		}
		h.loggerFromContext(c).Error("open cv failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	defer reader.Close()

	disposition := "attachment"
	if c.Query("preview") == "true" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, profile.CVOriginalName))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.loggerFromContext(c).Error("stream cv failed", slog.Any("error", err))
	}
}

type skillsRequest struct {
	Skills []content.SkillCategory `json:"skills" binding:"required"`
}

// ReplaceSkills 整体替换技能集合并回显。
func (h *ProfileHandler) ReplaceSkills(c *gin.Context) {
	var req skillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.repo.ReplaceSkills(c.Request.Context(), req.Skills); err != nil {
		h.loggerFromContext(c).Error("replace skills failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, req.Skills)
}

type experiencesRequest struct {
	Experiences []content.Experience `json:"experiences" binding:"required"`
}

// ReplaceExperiences 整体替换经历集合并回显。
func (h *ProfileHandler) ReplaceExperiences(c *gin.Context) {
	var req experiencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.repo.ReplaceExperiences(c.Request.Context(), req.Experiences); err != nil {
		h.loggerFromContext(c).Error("replace experiences failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, req.Experiences)
}

type formationsRequest struct {
	Formations []content.Formation `json:"formations" binding:"required"`
}

// ReplaceFormations 整体替换教育经历集合并回显。
func (h *ProfileHandler) ReplaceFormations(c *gin.Context) {
	var req formationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.repo.ReplaceFormations(c.Request.Context(), req.Formations); err != nil {
		h.loggerFromContext(c).Error("replace formations failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, req.Formations)
}

type contactsRequest struct {
	Contacts []content.Contact `json:"contacts" binding:"required"`
}

// ReplaceContacts 整体替换联系方式集合并回显。
func (h *ProfileHandler) ReplaceContacts(c *gin.Context) {
	var req contactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.repo.ReplaceContacts(c.Request.Context(), req.Contacts); err != nil {
		h.loggerFromContext(c).Error("replace contacts failed", slog.Any("error", err))
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, req.Contacts)
}

// respondAssetError 把资产生命周期的错误分类映射为响应码。
func (h *ProfileHandler) respondAssetError(c *gin.Context, err error) {
	respondAssetError(c, h.loggerFromContext(c), err)
}

func (h *ProfileHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func respondAssetError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, assets.ErrInvalidUpload):
		BadRequest(c, err.Error())
	case errors.Is(err, assets.ErrSlotEmpty):
		NotFound(c, "no asset in slot")
	case errors.Is(err, content.ErrNotFound):
		NotFound(c, "project not found")
	default:
		logger.Error("asset operation failed", slog.Any("error", err))
		Internal(c, err.Error())
	}
}

func uploadFromFileHeader(file *multipart.FileHeader, displayName string) assets.Upload {
	return assets.Upload{
		Open: func() (io.ReadCloser, error) {
			return file.Open()
		},
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
		FileName:    file.Filename,
		DisplayName: displayName,
	}
}
