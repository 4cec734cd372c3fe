// Package directpath 负责直达链接 slug 的清洗与校验。
package directpath

import (
	"errors"
	"regexp"
	"strings"
	"sync"
)

var (
	ErrPathRequired = errors.New("direct path is required")
	ErrPathInvalid  = errors.New("direct path has invalid characters or length")
	ErrPathReserved = errors.New("direct path is reserved")
)

const (
	ReasonInvalid  = "invalid"
	ReasonReserved = "reserved"
	ReasonTaken    = "taken"
	ReasonError    = "error"
)

var pathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,60}$`)

var reservedMu sync.RWMutex

// reserved 中的路径会与站点路由冲突，统一用小写比较。
var reserved = map[string]struct{}{
	"login":       {},
	"logout":      {},
	"dashboard":   {},
	"api":         {},
	"assets":      {},
	"admin":       {},
	"static":      {},
	"favicon.ico": {},
	"_next":       {},
	"vercel":      {},
	"robots.txt":  {},
	"sitemap.xml": {},
	"health":      {},
	"ping":        {},
	"metrics":     {},
	"uploads":     {},
}

// Sanitize 去除首尾空白以及开头的所有斜杠。
func Sanitize(raw string) string {
	return strings.TrimLeft(strings.TrimSpace(raw), "/")
}

// Reserve adds route segments mounted at runtime, such as the upload prefix.
// Empty segments are ignored.
func Reserve(segments ...string) {
	reservedMu.Lock()
	defer reservedMu.Unlock()
	for _, segment := range segments {
		segment = strings.ToLower(strings.Trim(segment, "/"))
		if segment == "" {
			continue
		}
		reserved[segment] = struct{}{}
	}
}

// IsReserved 判断 slug 是否为系统保留路径（大小写不敏感）。
func IsReserved(slug string) bool {
	reservedMu.RLock()
	defer reservedMu.RUnlock()
	_, ok := reserved[strings.ToLower(slug)]
	return ok
}

// Validate 校验已清洗的 slug。
func Validate(slug string) error {
	if slug == "" {
		return ErrPathRequired
	}
	if !pathPattern.MatchString(slug) {
		return ErrPathInvalid
	}
	if IsReserved(slug) {
		return ErrPathReserved
	}
	return nil
}

// Normalize 清洗并校验原始输入，返回可存储的 slug。
func Normalize(raw string) (string, error) {
	slug := Sanitize(raw)
	if err := Validate(slug); err != nil {
		return "", err
	}
	return slug, nil
}

// Key 返回用于唯一性比较的小写形式。
func Key(slug string) string {
	return strings.ToLower(slug)
}

// Reason 将校验错误映射为可用性检查接口返回的 reason。
func Reason(err error) string {
	if errors.Is(err, ErrPathReserved) {
		return ReasonReserved
	}
	return ReasonInvalid
}

// Message 返回面向用户的提示文案。
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPathRequired):
		return "Path wajib diisi."
	case errors.Is(err, ErrPathInvalid):
		return "Gunakan huruf/angka, - atau _, 2-60 karakter."
	case errors.Is(err, ErrPathReserved):
		return "Path ini ter-reserve sistem."
	default:
		return "Path tidak valid."
	}
}
