package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrimajin/internal/db"
	"go.uber.org/zap"
)

// SeedCard 描述一张初始卡片，可由 YAML 文件提供。
type SeedCard struct {
	Title             string `yaml:"title"`
	Description       string `yaml:"description"`
	Link              string `yaml:"link"`
	ImageURL          string `yaml:"image_url"`
	DirectPath        string `yaml:"direct_path"`
	DirectLinkEnabled bool   `yaml:"direct_link_enabled"`
	Hidden            bool   `yaml:"hidden"`
}

// DefaultSeedCards 返回站点的默认导航卡片。
func DefaultSeedCards() []SeedCard {
	return []SeedCard{
		{
			Title:       "Tentang Kami",
			Description: "Kenali lebih dekat siapa kami dan apa yang kami lakukan untuk membantu Anda.",
			Link:        "/about",
			ImageURL:    "https://images.unsplash.com/photo-1522071820081-009f0129c71c?w=600&h=400&fit=crop",
		},
		{
			Title:       "Layanan",
			Description: "Temukan berbagai layanan berkualitas yang kami tawarkan untuk kebutuhan Anda.",
			Link:        "/services",
			ImageURL:    "https://images.unsplash.com/photo-1551434678-e076c223a692?w=600&h=400&fit=crop",
		},
		{
			Title:       "Portfolio",
			Description: "Lihat karya-karya terbaik kami dan proyek yang telah kami selesaikan.",
			Link:        "/portfolio",
			ImageURL:    "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=600&h=400&fit=crop",
		},
		{
			Title:       "Kontak",
			Description: "Hubungi kami sekarang untuk konsultasi gratis dan penawaran terbaik.",
			Link:        "/contact",
			ImageURL:    "https://images.unsplash.com/photo-1423666639041-f56000c27a9a?w=600&h=400&fit=crop",
		},
	}
}

// Seed 插入尚不存在（按标题判断）的卡片，返回新建数量。
func (s *CardService) Seed(ctx context.Context, cards []SeedCard) (int, error) {
	created := 0
	for _, item := range cards {
		title := plainText(item.Title)
		var count int64
		if err := s.db.WithContext(ctx).Model(&db.Card{}).Where("title = ?", title).Count(&count).Error; err != nil {
			return created, fmt.Errorf("seed lookup %q: %w", title, err)
		}
		if count > 0 {
			s.log.Debug("seed card exists", zap.String("title", title))
			continue
		}

		_, err := s.Create(ctx, CardInput{
			Title:             item.Title,
			Description:       item.Description,
			Link:              item.Link,
			ImageURL:          strings.TrimSpace(item.ImageURL),
			DirectLinkEnabled: item.DirectLinkEnabled,
			DirectPath:        item.DirectPath,
			Hidden:            item.Hidden,
		})
		if err != nil {
			return created, fmt.Errorf("seed card %q: %w", title, err)
		}
		created++
	}
	return created, nil
}
