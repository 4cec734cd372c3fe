package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"regexp"
	"strings"

	// 注册图片解码器，供 image.DecodeConfig 使用
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidDataURL   = errors.New("invalid image data url")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds maximum allowed size")
)

var dataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// allowedImageTypes 将 Content-Type 映射为 image 包注册的格式名。
var allowedImageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image 是经过校验的待上传图片。
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// ParseDataURL 解析 base64 data URL，并确认内容确实是受支持的图片。
func ParseDataURL(raw string, maxBytes int64) (*Image, error) {
	match := dataURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return nil, ErrInvalidDataURL
	}

	contentType := strings.ToLower(strings.TrimSpace(match[1]))
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, ErrUnsupportedImage
	}

	encoded := match[2]
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxBytes+2 {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidDataURL
	}

	img, err := inspect(data, maxBytes)
	if err != nil {
		return nil, err
	}
	if allowedImageTypes[contentType] != formatOf(img.ContentType) {
		return nil, ErrUnsupportedImage
	}
	return img, nil
}

// DecodeImage 校验原始字节（如 multipart 上传）并识别其类型。
func DecodeImage(data []byte, maxBytes int64) (*Image, error) {
	return inspect(data, maxBytes)
}

// IsDataURL 判断字符串是否为 data URL。
func IsDataURL(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "data:")
}

// Extension 取 Content-Type 的子类型作为文件扩展名。
func Extension(contentType string) string {
	_, subtype, found := strings.Cut(contentType, "/")
	if !found || strings.TrimSpace(subtype) == "" {
		return "png"
	}
	return strings.TrimSpace(subtype)
}

func inspect(data []byte, maxBytes int64) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrInvalidDataURL
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	contentType := "image/" + format
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, ErrUnsupportedImage
	}

	return &Image{
		Data:        data,
		ContentType: contentType,
		Extension:   Extension(contentType),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

func formatOf(contentType string) string {
	return allowedImageTypes[contentType]
}
