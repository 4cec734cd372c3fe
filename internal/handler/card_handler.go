package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/directpath"
	"github.com/hrimajin/internal/logging"
	"github.com/hrimajin/internal/service"
	"github.com/hrimajin/internal/storage"
	"go.uber.org/zap"
)

const (
	createRequiredMessage = "Title, link, dan imageDataUrl wajib diisi."
	updateRequiredMessage = "Id, title, dan link wajib diisi."
	deleteRequiredMessage = "Id wajib diisi."
	linkInvalidMessage    = "Link harus berupa URL http(s) atau path yang diawali /."
	imageInvalidMessage   = "Format gambar tidak valid."
	imageTooLargeMessage  = "Ukuran gambar melebihi batas."
	imageUploadMessage    = "Gagal mengunggah gambar."
	pathTakenMessage      = "Path sudah dipakai card lain."
	cardNotFoundMessage   = "Card tidak ditemukan."
)

type createCardPayload struct {
	Title             string `json:"title" binding:"required"`
	Link              string `json:"link" binding:"required,cardlink"`
	ImageDataURL      string `json:"imageDataUrl" binding:"required_without=ImageURL"`
	ImageURL          string `json:"imageUrl" binding:"omitempty,cardlink"`
	Description       string `json:"description"`
	DirectLinkEnabled bool   `json:"directLinkEnabled"`
	DirectPath        string `json:"directPath"`
	Hidden            bool   `json:"hidden"`
}

type updateCardPayload struct {
	ID                string `json:"id"`
	Title             string `json:"title" binding:"required"`
	Link              string `json:"link" binding:"required,cardlink"`
	ImageDataURL      string `json:"imageDataUrl"`
	ImageURL          string `json:"imageUrl" binding:"omitempty,cardlink"`
	Description       string `json:"description"`
	DirectLinkEnabled bool   `json:"directLinkEnabled"`
	DirectPath        string `json:"directPath"`
	Hidden            bool   `json:"hidden"`
}

type deleteCardPayload struct {
	ID string `json:"id"`
}

// ListCards returns cards in creation order. Failures degrade to an empty list.
func (a *API) ListCards(c *gin.Context) {
	includeHidden := c.Query("includeHidden") == "true" && a.canEdit(c)

	cards, err := a.cards.List(c.Request.Context(), includeHidden)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"cards": []cardView{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": newCardViews(cards)})
}

// CreateCard uploads the submitted image and stores a new card.
func (a *API) CreateCard(c *gin.Context) {
	var payload createCardPayload
	if !bindJSON(c, &payload, createRequiredMessage) {
		return
	}

	input := service.CardInput{
		Title:             payload.Title,
		Description:       payload.Description,
		Link:              payload.Link,
		DirectLinkEnabled: payload.DirectLinkEnabled,
		DirectPath:        payload.DirectPath,
		Hidden:            payload.Hidden,
	}
	if payload.ImageDataURL != "" {
		img, ok := a.parseImage(c, payload.ImageDataURL)
		if !ok {
			return
		}
		input.Image = img
	} else {
		input.ImageURL = payload.ImageURL
	}

	card, err := a.cards.Create(c.Request.Context(), input)
	if err != nil {
		a.writeCardError(c, err, createRequiredMessage, "Gagal menyimpan card.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"card": newCardView(card)})
}

// UpdateCard modifies a card; the image is replaced only when a new data URL is sent.
func (a *API) UpdateCard(c *gin.Context) {
	var payload updateCardPayload
	if !bindJSON(c, &payload, updateRequiredMessage) {
		return
	}

	id := firstNonEmpty(c.Param("id"), payload.ID)
	if id == "" {
		respondError(c, http.StatusBadRequest, updateRequiredMessage)
		return
	}

	input := service.CardInput{
		Title:             payload.Title,
		Description:       payload.Description,
		Link:              payload.Link,
		ImageURL:          payload.ImageURL,
		DirectLinkEnabled: payload.DirectLinkEnabled,
		DirectPath:        payload.DirectPath,
		Hidden:            payload.Hidden,
	}
	if storage.IsDataURL(payload.ImageDataURL) {
		img, ok := a.parseImage(c, payload.ImageDataURL)
		if !ok {
			return
		}
		input.Image = img
	}

	card, err := a.cards.Update(c.Request.Context(), id, input)
	if err != nil {
		a.writeCardError(c, err, updateRequiredMessage, "Gagal mengubah card.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": newCardView(card)})
}

// DeleteCard removes a card by path, query or body id.
func (a *API) DeleteCard(c *gin.Context) {
	id := firstNonEmpty(c.Param("id"), c.Query("id"))
	if id == "" && c.Request.ContentLength != 0 {
		var payload deleteCardPayload
		if !bindJSON(c, &payload, deleteRequiredMessage) {
			return
		}
		id = firstNonEmpty(payload.ID)
	}
	if id == "" {
		respondError(c, http.StatusBadRequest, deleteRequiredMessage)
		return
	}

	if err := a.cards.Delete(c.Request.Context(), id); err != nil {
		a.writeCardError(c, err, deleteRequiredMessage, "Gagal menghapus card.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) parseImage(c *gin.Context, dataURL string) (*storage.Image, bool) {
	img, err := storage.ParseDataURL(dataURL, a.maxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrImageTooLarge) {
			respondError(c, http.StatusBadRequest, imageTooLargeMessage)
		} else {
			respondError(c, http.StatusBadRequest, imageInvalidMessage)
		}
		return nil, false
	}
	return img, true
}

func (a *API) writeCardError(c *gin.Context, err error, requiredMessage, fallback string) {
	switch {
	case errors.Is(err, service.ErrCardIDRequired),
		errors.Is(err, service.ErrCardTitleRequired),
		errors.Is(err, service.ErrCardImageRequired):
		respondError(c, http.StatusBadRequest, requiredMessage)
	case errors.Is(err, service.ErrCardLinkInvalid):
		respondError(c, http.StatusBadRequest, linkInvalidMessage)
	case errors.Is(err, directpath.ErrPathRequired),
		errors.Is(err, directpath.ErrPathInvalid),
		errors.Is(err, directpath.ErrPathReserved):
		respondError(c, http.StatusBadRequest, directpath.Message(err))
	case errors.Is(err, service.ErrDirectPathTaken):
		respondError(c, http.StatusConflict, pathTakenMessage)
	case errors.Is(err, service.ErrCardNotFound):
		respondError(c, http.StatusNotFound, cardNotFoundMessage)
	case errors.Is(err, service.ErrImageUpload):
		respondError(c, http.StatusInternalServerError, imageUploadMessage)
	default:
		a.log.Error("card request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(logging.RequestIDKey)),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
