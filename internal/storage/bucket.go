// Package storage 提供卡片图片的对象存储抽象与 data URL 解析。
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CardPrefix 是卡片图片在存储桶中的目录。
const CardPrefix = "cards"

var ErrInvalidObjectPath = errors.New("invalid object path")

// Bucket 描述卡片图片所需的对象存储能力。
type Bucket interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) error
	Remove(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
	// ObjectPath 将公开 URL 还原为对象路径，非本存储桶的 URL 返回 false。
	ObjectPath(publicURL string) (string, bool)
}

// NewObjectPath 生成 cards/<uuid>.<ext> 形式的对象路径。
func NewObjectPath(extension string) string {
	ext := strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s/%s.%s", CardPrefix, uuid.NewString(), ext)
}

// LocalBucket 将对象保存在本地目录，并通过静态路由对外提供。
type LocalBucket struct {
	root      string
	urlPrefix string
}

// NewLocalBucket 创建本地存储桶；baseURL 非空时生成绝对地址。
func NewLocalBucket(root, urlPath, baseURL string) (*LocalBucket, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	prefix := "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	if prefix == "/" {
		prefix = ""
	}
	prefix = strings.TrimRight(strings.TrimSpace(baseURL), "/") + prefix

	return &LocalBucket{root: root, urlPrefix: prefix}, nil
}

// Root 返回存储目录。
func (b *LocalBucket) Root() string {
	return b.root
}

func (b *LocalBucket) Upload(ctx context.Context, objectPath string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := b.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}

func (b *LocalBucket) Remove(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := b.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (b *LocalBucket) PublicURL(objectPath string) string {
	return b.urlPrefix + "/" + strings.TrimLeft(objectPath, "/")
}

func (b *LocalBucket) ObjectPath(publicURL string) (string, bool) {
	trimmed := strings.TrimSpace(publicURL)
	if trimmed == "" || !strings.HasPrefix(trimmed, b.urlPrefix+"/") {
		return "", false
	}
	objectPath := strings.TrimPrefix(trimmed, b.urlPrefix+"/")
	if _, err := b.resolve(objectPath); err != nil {
		return "", false
	}
	return objectPath, true
}

// resolve 将对象路径映射到磁盘路径，并拒绝逃逸出根目录的路径。
func (b *LocalBucket) resolve(objectPath string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(objectPath))
	if cleaned == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidObjectPath
	}

	rootAbs, err := filepath.Abs(b.root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(rootAbs, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
	if !strings.HasPrefix(target, rootAbs+string(filepath.Separator)) {
		return "", ErrInvalidObjectPath
	}
	return target, nil
}

var _ Bucket = (*LocalBucket)(nil)
