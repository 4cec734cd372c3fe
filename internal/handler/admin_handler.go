package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hrimajin/internal/middleware"
	"github.com/hrimajin/internal/service"
	"go.uber.org/zap"
)

const (
	passwordRequiredMessage = "Password wajib diisi."
	passwordInvalidMessage  = "Password salah."
	sessionSaveMessage      = "Gagal menyimpan sesi."
)

type loginPayload struct {
	Password string `json:"password" form:"password" binding:"required"`
}

// ShowLoginPage 渲染编辑模式登录页
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Masuk Mode Edit",
	})
}

// Login 校验口令并在会话中打开编辑模式，同时支持 JSON 与表单提交
func (a *API) Login(c *gin.Context) {
	isForm := c.ContentType() == binding.MIMEPOSTForm

	var payload loginPayload
	if err := c.ShouldBind(&payload); err != nil {
		a.loginFailed(c, isForm, http.StatusBadRequest, passwordRequiredMessage)
		return
	}

	if err := a.gate.Verify(payload.Password); err != nil {
		status, message := http.StatusUnauthorized, passwordInvalidMessage
		if errors.Is(err, service.ErrEditPasswordRequired) {
			status, message = http.StatusBadRequest, passwordRequiredMessage
		}
		a.log.Info("edit login rejected", zap.String("client_ip", c.ClientIP()))
		a.loginFailed(c, isForm, status, message)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.EditSessionKey, true)
	if err := session.Save(); err != nil {
		a.log.Error("save edit session failed", zap.Error(err))
		a.loginFailed(c, isForm, http.StatusInternalServerError, sessionSaveMessage)
		return
	}

	if isForm {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (a *API) loginFailed(c *gin.Context, isForm bool, status int, message string) {
	if isForm {
		a.renderHTML(c, status, "login.html", gin.H{
			"title": "Masuk Mode Edit",
			"error": message,
		})
		return
	}
	respondError(c, status, message)
}

// Logout 清除编辑模式；GET 请求重定向回首页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.EditSessionKey)
	if err := session.Save(); err != nil {
		a.log.Warn("clear edit session failed", zap.Error(err))
	}

	if c.Request.Method == http.MethodGet {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// SessionStatus 返回当前是否处于编辑模式
func (a *API) SessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": middleware.EditSessionActive(c)})
}
