package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShowHome renders the card gallery. Hidden cards are listed only in edit mode.
func (a *API) ShowHome(c *gin.Context) {
	editable := a.canEdit(c)

	cards, err := a.cards.List(c.Request.Context(), editable)
	if err != nil {
		a.renderHTML(c, http.StatusOK, "index.html", gin.H{
			"title":    a.siteName,
			"cards":    []cardView{},
			"editable": editable,
			"error":    "Gagal memuat card.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "index.html", gin.H{
		"title":    a.siteName,
		"cards":    newCardViews(cards),
		"editable": editable,
	})
}
