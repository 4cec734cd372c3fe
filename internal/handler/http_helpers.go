package handler

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hrimajin/internal/service"
)

const cardLinkTag = "cardlink"

var validatorsOnce sync.Once

// registerValidators 向 gin 的 validator 注册自定义标签。
func registerValidators() {
	validatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation(cardLinkTag, func(fl validator.FieldLevel) bool {
			_, err := service.NormalizeLink(fl.Field().String())
			return err == nil
		})
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err, message))
		return false
	}
	return true
}

// bindingMessage 对链接格式错误给出单独提示，其余统一使用 fallback。
func bindingMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == cardLinkTag {
				return linkInvalidMessage
			}
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
