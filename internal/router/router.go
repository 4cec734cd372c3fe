package router

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/handler"
	"github.com/hrimajin/internal/logging"
	"github.com/hrimajin/internal/metrics"
	"github.com/hrimajin/internal/middleware"
	"go.uber.org/zap"
)

const sessionName = "hrimajin_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API, log *zap.Logger) *gin.Engine {
	log = logging.OrNop(log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logging.GinLogger(log))
	if cfg.EnableMetrics {
		r.Use(metrics.Middleware())
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.SiteBaseURL, "https://") && !cfg.IsDebug(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	loadTemplates(r, cfg.TemplateDir, log)

	// 卡片图片
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", api.Ping)
	r.GET("/health", api.HealthCheck)
	if cfg.EnableMetrics {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.GET("/", api.ShowHome)
	r.GET("/login", api.ShowLoginPage)
	r.GET("/logout", api.Logout)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/cards", api.ListCards)
		apiGroup.GET("/direct-path/check", api.CheckDirectPath)
		apiGroup.POST("/login", api.Login)
		apiGroup.POST("/logout", api.Logout)
		apiGroup.GET("/session", api.SessionStatus)

		// 需要编辑模式的路由
		edit := apiGroup.Group("")
		edit.Use(api.EditModeRequired())
		{
			edit.POST("/cards", api.CreateCard)
			edit.PUT("/cards", api.UpdateCard)
			edit.PUT("/cards/:id", api.UpdateCard)
			edit.DELETE("/cards", api.DeleteCard)
			edit.DELETE("/cards/:id", api.DeleteCard)
			edit.POST("/uploads", api.UploadImage)
		}
	}

	// 其余单段路径按直达链接解析
	r.NoRoute(api.ResolveDirectLink)

	return r
}

// loadTemplates 加载页面模板；目录为空或没有模板时跳过，便于测试注入渲染器。
func loadTemplates(r *gin.Engine, dir string, log *zap.Logger) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	pattern := filepath.Join(dir, "*.html")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		log.Warn("no html templates found", zap.String("pattern", pattern))
		return
	}

	r.SetFuncMap(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	})
	r.LoadHTMLGlob(pattern)
}
