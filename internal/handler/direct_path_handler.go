package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/directpath"
	"github.com/hrimajin/internal/metrics"
	"github.com/hrimajin/internal/service"
	"go.uber.org/zap"
)

// CheckDirectPath reports whether ?path= is free for the card ?id=.
func (a *API) CheckDirectPath(c *gin.Context) {
	result, err := a.cards.CheckDirectPath(c.Request.Context(), c.Query("path"), c.Query("id"))
	if err != nil {
		if result.Reason == directpath.ReasonError {
			c.JSON(http.StatusInternalServerError, gin.H{"available": false, "reason": result.Reason})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"available": false,
			"reason":    result.Reason,
			"error":     directpath.Message(err),
		})
		return
	}

	if result.Available {
		c.JSON(http.StatusOK, gin.H{"available": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": false, "reason": result.Reason})
}

// ResolveDirectLink redirects GET/HEAD /<slug> to the target of the enabled card owning slug.
// It is installed as the NoRoute handler so it never shadows registered routes.
func (a *API) ResolveDirectLink(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		a.notFound(c)
		return
	}

	slug := strings.TrimPrefix(c.Request.URL.Path, "/")
	if slug == "" || strings.Contains(slug, "/") {
		a.notFound(c)
		return
	}

	link, err := a.cards.ResolveDirectLink(c.Request.Context(), slug)
	if err != nil {
		if !errors.Is(err, service.ErrDirectLinkNotFound) {
			a.log.Warn("direct link lookup failed", zap.String("path", slug), zap.Error(err))
		}
		metrics.RecordRedirect(metrics.RedirectMiss)
		a.notFound(c)
		return
	}

	metrics.RecordRedirect(metrics.RedirectHit)
	c.Redirect(http.StatusFound, link)
}

func (a *API) notFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Halaman tidak ditemukan.")
}
