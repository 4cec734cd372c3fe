package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseDriver     string
	DatabaseURL        string
	SessionSecret      string
	GinMode            string
	LogLevel           string
	UploadDir          string
	UploadURLPath      string
	PublicBaseURL      string
	SiteBaseURL        string
	TemplateDir        string
	MaxUploadBytes     int64
	AdminPassword      string
	AdminPasswordHash  string
	RequireEditSession bool
	CORSOrigins        []string
	EnableRedis        bool
	RedisAddr          string
	DirectLinkCacheTTL time.Duration
	EnableMetrics      bool
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load 从环境变量读取应用配置，并为缺失项提供默认值。
func Load() AppConfig {
	port := getEnv("PORT", "8080")

	listenAddr := getEnv("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite))
	if driver != DriverPostgres {
		driver = DriverSQLite
	}

	// sqlite 下 DATABASE_URL 为空时回退到 DATABASE_PATH
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" && driver == DriverSQLite {
		databaseURL = getEnv("DATABASE_PATH", "hrimajin.db")
	}

	uploadURLPath := "/" + strings.Trim(getEnv("UPLOAD_URL_PATH", "/uploads"), "/")

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseDriver:     driver,
		DatabaseURL:        databaseURL,
		SessionSecret:      getEnv("SESSION_SECRET", "hrimajin-dev-secret"),
		GinMode:            getEnv("GIN_MODE", "release"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		UploadDir:          getEnv("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:      uploadURLPath,
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		SiteBaseURL:        strings.TrimRight(getEnv("SITE_BASE_URL", "https://hrimajin.id"), "/"),
		TemplateDir:        getEnv("TEMPLATE_DIR", "web/template"),
		MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin123"),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		RequireEditSession: getEnvAsBool("REQUIRE_EDIT_SESSION", true),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		EnableRedis:        getEnvAsBool("ENABLE_REDIS", false),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		DirectLinkCacheTTL: getEnvAsDuration("DIRECT_LINK_CACHE_TTL", 5*time.Minute),
		EnableMetrics:      getEnvAsBool("ENABLE_METRICS", true),
	}
}

// IsDebug 判断是否运行在 gin debug 模式。
func (c AppConfig) IsDebug() bool {
	return c.GinMode == "debug"
}

// UploadSegment 返回上传静态路由的第一段路径，空路径返回空串。
func (c AppConfig) UploadSegment() string {
	segment, _, _ := strings.Cut(strings.Trim(c.UploadURLPath, "/"), "/")
	return segment
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
