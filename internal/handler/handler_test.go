package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/db"
	"github.com/hrimajin/internal/service"
	"github.com/hrimajin/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	name string
	data interface{}
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.name = name
	r.data = data
	return &stubHTMLInstance{}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

var handlerDBSeq int64

type testServer struct {
	api    *API
	engine *gin.Engine
	html   *stubHTMLRender
	gdb    *gorm.DB
	bucket *storage.LocalBucket
}

func setupTestServer(t *testing.T, requireEdit bool) (*testServer, func()) {
	t.Helper()
	return setupTestServerWithCache(t, requireEdit, nil)
}

func setupTestServerWithCache(t *testing.T, requireEdit bool, cache service.LinkCache) (*testServer, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", atomic.AddInt64(&handlerDBSeq, 1))
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	bucket, err := storage.NewLocalBucket(t.TempDir(), "/uploads", "")
	if err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	cfg := config.AppConfig{
		MaxUploadBytes:     1 << 20,
		AdminPassword:      "admin123",
		RequireEditSession: requireEdit,
		DirectLinkCacheTTL: time.Minute,
		SiteBaseURL:        "https://hrimajin.id",
	}
	api := NewAPI(cfg, gdb, bucket, cache, nil)

	html := &stubHTMLRender{}
	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	r.GET("/", api.ShowHome)
	r.GET("/login", api.ShowLoginPage)
	r.GET("/logout", api.Logout)
	r.GET("/health", api.HealthCheck)
	r.GET("/api/cards", api.ListCards)
	r.GET("/api/direct-path/check", api.CheckDirectPath)
	r.POST("/api/login", api.Login)
	r.POST("/api/logout", api.Logout)
	r.GET("/api/session", api.SessionStatus)

	edit := r.Group("/api", api.EditModeRequired())
	edit.POST("/cards", api.CreateCard)
	edit.PUT("/cards", api.UpdateCard)
	edit.PUT("/cards/:id", api.UpdateCard)
	edit.DELETE("/cards", api.DeleteCard)
	edit.DELETE("/cards/:id", api.DeleteCard)
	edit.POST("/uploads", api.UploadImage)

	r.NoRoute(api.ResolveDirectLink)

	server := &testServer{api: api, engine: r, html: html, gdb: gdb, bucket: bucket}
	return server, func() {
		sqlDB.Close()
	}
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type cardResponse struct {
	Card  cardView `json:"card"`
	Error string   `json:"error"`
}

type cardListResponse struct {
	Cards []cardView `json:"cards"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	decode(t, w, &payload)
	return payload.Error
}
