package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Card 定义首页导航卡片模型
type Card struct {
	ID                string    `gorm:"primaryKey;size:36"`
	Title             string    `gorm:"not null"`
	Description       string    `gorm:"type:text"`
	Link              string    `gorm:"not null"`
	ImageURL          string    `gorm:"column:image_url"`
	ImageWidth        int       `gorm:"default:0"`
	ImageHeight       int       `gorm:"default:0"`
	DirectPath        *string   `gorm:"size:60;index"`
	DirectLinkEnabled bool      `gorm:"not null;default:false"`
	Hidden            bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
}

// TableName 与托管库中的 cards 表保持一致。
func (Card) TableName() string {
	return "cards"
}

// BeforeCreate 在缺少主键时生成 UUID。
func (c *Card) BeforeCreate(_ *gorm.DB) error {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DirectPathValue 返回直达路径，未设置时为空字符串。
func (c Card) DirectPathValue() string {
	if c.DirectPath == nil {
		return ""
	}
	return *c.DirectPath
}
