// Package middleware 提供路由层共用的 gin 中间件。
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// EditSessionKey 是会话中标记编辑模式的键。
const EditSessionKey = "hr_admin"

// EditModeMessage 是未进入编辑模式时的提示。
const EditModeMessage = "Mode edit belum aktif."

// EditSessionActive 判断当前会话是否处于编辑模式。
func EditSessionActive(c *gin.Context) bool {
	flag, ok := sessions.Default(c).Get(EditSessionKey).(bool)
	return ok && flag
}

// EditModeRequired 在 enforce 为 true 时拒绝未进入编辑模式的请求。
func EditModeRequired(enforce bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enforce && !EditSessionActive(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": EditModeMessage})
			return
		}
		c.Next()
	}
}
