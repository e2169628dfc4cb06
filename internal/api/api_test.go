package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio/internal/analytics"
	"portfolio/internal/assets"
	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/database"
	"portfolio/internal/storage"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Profile{}, &database.Project{}, &database.Visitor{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := storage.NewLocalStore(config.LocalConfig{Dir: t.TempDir(), BaseURL: "/files"})
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authService, err := auth.NewService(testAdminEmail, string(hash), []byte("test-secret"))
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	// 端口 0 不可达：限流计数全部失败并被忽略，登录路径退化为直接校验。
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})

	router := NewRouter(logger)
	RegisterRoutes(
		router,
		content.NewRepository(db),
		analytics.NewRepository(db),
		assets.NewManager(store, nil, logger),
		store,
		authService,
		redisClient,
		logger,
		LoginLimits{RateLimitPerHour: 100, LockThreshold: 100, LockTTL: time.Minute},
	)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login response must carry a token")
	}
	return resp.Token
}

func TestLogin_WrongPasswordIsUndifferentiated(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    testAdminEmail,
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["message"] != "invalid email or password" {
		t.Fatalf("failure message must not leak which credential was wrong: %q", resp["message"])
	}
}

func TestProfile_UpdateRequiresToken(t *testing.T) {
	router := newTestServer(t)

	patch := gin.H{"name": "New Name"}
	if w := doJSON(t, router, http.MethodPut, "/api/profile", "", patch); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated update: got %d want 401", w.Code)
	}

	token := loginToken(t, router)
	w := doJSON(t, router, http.MethodPut, "/api/profile", token, patch)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated update: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/profile", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get profile: status %d", w.Code)
	}
	var profile struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Name != "New Name" {
		t.Fatalf("name not persisted: %q", profile.Name)
	}
	if profile.Title == "" {
		t.Fatal("untouched fields must keep their defaults")
	}
}

func multipartUpload(t *testing.T, field, filename, contentType string, payload []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for key, value := range extra {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestPhoto_UploadReplaceDelete(t *testing.T) {
	router := newTestServer(t)
	token := loginToken(t, router)

	body, contentType := multipartUpload(t, "photo", "avatar.png", "image/png", []byte("png-bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/profile/photo", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload photo: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		PhotoURL string `json:"photoUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.PhotoURL, "photos/") {
		t.Fatalf("photo url must point into the photos folder: %q", resp.PhotoURL)
	}

	if w := doJSON(t, router, http.MethodDelete, "/api/profile/photo", token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete photo: status %d body %s", w.Code, w.Body.String())
	}
	// 再次删除为幂等空操作。
	if w := doJSON(t, router, http.MethodDelete, "/api/profile/photo", token, nil); w.Code != http.StatusOK {
		t.Fatalf("repeat delete photo: status %d", w.Code)
	}
}

func TestPhoto_RejectsWrongContentType(t *testing.T) {
	router := newTestServer(t)
	token := loginToken(t, router)

	body, contentType := multipartUpload(t, "photo", "avatar.exe", "application/octet-stream", []byte("not an image"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/profile/photo", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", w.Code)
	}
}

func TestCV_UploadDownloadRename(t *testing.T) {
	router := newTestServer(t)
	token := loginToken(t, router)

	if w := doJSON(t, router, http.MethodGet, "/api/profile/cv/download", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("empty slot download: got %d want 404", w.Code)
	}

	body, contentType := multipartUpload(t, "cv", "resume.pdf", "application/pdf", []byte("%PDF-1.4 fake"), map[string]string{"customName": "CV Said 2026"})
	req := httptest.NewRequest(http.MethodPost, "/api/profile/cv", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload cv: status %d body %s", w.Code, w.Body.String())
	}
	var uploadResp struct {
		CV struct {
			OriginalName string `json:"originalName"`
		} `json:"cv"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &uploadResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if uploadResp.CV.OriginalName != "CV Said 2026.pdf" {
		t.Fatalf("display name must carry a pdf extension: %q", uploadResp.CV.OriginalName)
	}

	w = doJSON(t, router, http.MethodGet, "/api/profile/cv/download", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download cv: status %d body %s", w.Code, w.Body.String())
	}
	if disposition := w.Header().Get("Content-Disposition"); !strings.HasPrefix(disposition, "attachment") {
		t.Fatalf("default download must be an attachment: %q", disposition)
	}
	if w.Body.String() != "%PDF-1.4 fake" {
		t.Fatal("downloaded bytes must match the upload")
	}

	w = doJSON(t, router, http.MethodGet, "/api/profile/cv/download?preview=true", "", nil)
	if disposition := w.Header().Get("Content-Disposition"); !strings.HasPrefix(disposition, "inline") {
		t.Fatalf("preview must be inline: %q", disposition)
	}

	w = doJSON(t, router, http.MethodPut, "/api/profile/cv/rename", token, gin.H{"name": "mon-cv"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename cv: status %d body %s", w.Code, w.Body.String())
	}
	var renameResp struct {
		CV struct {
			OriginalName string `json:"originalName"`
		} `json:"cv"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &renameResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if renameResp.CV.OriginalName != "mon-cv.pdf" {
		t.Fatalf("rename must normalize the extension: %q", renameResp.CV.OriginalName)
	}
}

func TestProjects_CRUDAndImageSlot(t *testing.T) {
	router := newTestServer(t)
	token := loginToken(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/projects", token, gin.H{
		"title":        "Portfolio",
		"description":  "Personal site",
		"technologies": []string{"Go", "Gin"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create project: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID       uint   `json:"id"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Category != "web" {
		t.Fatalf("category must default to web: %q", created.Category)
	}

	body, contentType := multipartUpload(t, "image", "shot.png", "image/png", []byte("png-bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%d/image", created.ID), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload image: status %d body %s", rec.Code, rec.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/projects", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list projects: status %d", w.Code)
	}
	var listed []struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ImageURL == "" {
		t.Fatalf("listed project must carry the image url: %+v", listed)
	}

	if w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/projects/%d", created.ID), token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete project: status %d body %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/projects/%d", created.ID), token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing project: got %d want 404", w.Code)
	}
}

func TestAnalytics_BeaconsAndGatedStats(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/analytics/visit", "", gin.H{
		"sessionId": "session-1",
		"page":      "/projects",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record visit: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPut, "/api/analytics/leave", "", gin.H{
		"sessionId": "session-1",
		"timeSpent": 42,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("record leave: status %d body %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, http.MethodGet, "/api/analytics/stats", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("stats without token: got %d want 401", w.Code)
	}

	token := loginToken(t, router)
	w = doJSON(t, router, http.MethodGet, "/api/analytics/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d body %s", w.Code, w.Body.String())
	}
	var stats struct {
		TotalVisitors int64 `json:"totalVisitors"`
		AvgTimeSpent  int   `json:"avgTimeSpent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalVisitors != 1 || stats.AvgTimeSpent != 42 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
