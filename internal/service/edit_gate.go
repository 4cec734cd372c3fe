package service

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEditPasswordRequired = errors.New("edit password is required")
	ErrEditPasswordInvalid  = errors.New("edit password is invalid")
)

// EditGate 校验进入编辑模式的口令。配置了 bcrypt 哈希时优先使用哈希。
type EditGate struct {
	password string
	hash     []byte
}

// NewEditGate creates an EditGate from a plain password and an optional bcrypt hash.
func NewEditGate(password, hash string) *EditGate {
	gate := &EditGate{password: password}
	if trimmed := strings.TrimSpace(hash); trimmed != "" {
		gate.hash = []byte(trimmed)
	}
	return gate
}

// Verify 校验口令。
func (g *EditGate) Verify(password string) error {
	if password == "" {
		return ErrEditPasswordRequired
	}

	if len(g.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
			return ErrEditPasswordInvalid
		}
		return nil
	}

	if g.password == "" || subtle.ConstantTimeCompare([]byte(g.password), []byte(password)) != 1 {
		return ErrEditPasswordInvalid
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEditPasswordRequired
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
