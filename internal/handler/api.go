package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/directpath"
	"github.com/hrimajin/internal/logging"
	"github.com/hrimajin/internal/middleware"
	"github.com/hrimajin/internal/service"
	"github.com/hrimajin/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cacheChecker is satisfied by caches that can report their own health.
type cacheChecker interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	cacheCheck     cacheChecker
	cards          *service.CardService
	gate           *service.EditGate
	log            *zap.Logger
	maxUploadBytes int64
	requireEdit    bool
	siteName       string
	siteBaseURL    string
}

// NewAPI constructs a handler set with shared services.
// cache may be nil, in which case direct links are resolved straight from the database.
func NewAPI(cfg config.AppConfig, gdb *gorm.DB, bucket storage.Bucket, cache service.LinkCache, log *zap.Logger) *API {
	registerValidators()
	directpath.Reserve(cfg.UploadSegment())

	log = logging.OrNop(log)
	cards := service.NewCardService(gdb, bucket, log)
	if cache != nil {
		cards.WithLinkCache(cache, cfg.DirectLinkCacheTTL)
	}

	api := &API{
		db:             gdb,
		cards:          cards,
		gate:           service.NewEditGate(cfg.AdminPassword, cfg.AdminPasswordHash),
		log:            log.Named("http"),
		maxUploadBytes: cfg.MaxUploadBytes,
		requireEdit:    cfg.RequireEditSession,
		siteName:       "HR Imajin",
		siteBaseURL:    cfg.SiteBaseURL,
	}
	if checker, ok := cache.(cacheChecker); ok {
		api.cacheCheck = checker
	}
	return api
}

// Cards exposes the card service.
func (a *API) Cards() *service.CardService {
	return a.cards
}

// EditModeRequired guards mutating routes behind the edit session.
func (a *API) EditModeRequired() gin.HandlerFunc {
	return middleware.EditModeRequired(a.requireEdit)
}

// canEdit 在关闭会话校验时视为始终可编辑。
func (a *API) canEdit(c *gin.Context) bool {
	return !a.requireEdit || middleware.EditSessionActive(c)
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":    a.siteName,
			"baseUrl": a.siteBaseURL,
		}
	}
	if _, exists := payload["editable"]; !exists {
		payload["editable"] = a.canEdit(c)
	}

	c.HTML(status, template, payload)
}
