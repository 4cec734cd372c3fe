package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrimajin/internal/storage"
)

// UploadImage 处理 multipart 图片上传，返回公开地址与尺寸
func (a *API) UploadImage(c *gin.Context) {
	// 获取上传的文件
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Gambar tidak ditemukan.")
		return
	}
	if a.maxUploadBytes > 0 && file.Size > a.maxUploadBytes {
		respondError(c, http.StatusBadRequest, imageTooLargeMessage)
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, imageInvalidMessage)
		return
	}
	defer src.Close()

	var reader io.Reader = src
	if a.maxUploadBytes > 0 {
		reader = io.LimitReader(src, a.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		respondError(c, http.StatusBadRequest, imageInvalidMessage)
		return
	}

	// 按内容识别类型，不信任客户端的 Content-Type
	img, err := storage.DecodeImage(data, a.maxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrImageTooLarge) {
			respondError(c, http.StatusBadRequest, imageTooLargeMessage)
		} else {
			respondError(c, http.StatusBadRequest, imageInvalidMessage)
		}
		return
	}

	url, err := a.cards.UploadImage(c.Request.Context(), img)
	if err != nil {
		respondError(c, http.StatusInternalServerError, imageUploadMessage)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    url,
		"width":  img.Width,
		"height": img.Height,
	})
}
