package handler

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/hrimajin/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// cardView 是卡片对外的 JSON 与模板结构，字段名沿用前端的 camelCase。
type cardView struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Link              string        `json:"link"`
	ImageSrc          string        `json:"imageSrc"`
	Description       string        `json:"description"`
	DescriptionHTML   template.HTML `json:"descriptionHtml"`
	DirectLinkEnabled bool          `json:"directLinkEnabled"`
	DirectPath        *string       `json:"directPath"`
	Hidden            bool          `json:"hidden"`
	ImageWidth        int           `json:"imageWidth,omitempty"`
	ImageHeight       int           `json:"imageHeight,omitempty"`
}

func newCardView(card *db.Card) cardView {
	return cardView{
		ID:                card.ID,
		Title:             card.Title,
		Link:              card.Link,
		ImageSrc:          card.ImageURL,
		Description:       card.Description,
		DescriptionHTML:   renderDescription(card.Description),
		DirectLinkEnabled: card.DirectLinkEnabled,
		DirectPath:        card.DirectPath,
		Hidden:            card.Hidden,
		ImageWidth:        card.ImageWidth,
		ImageHeight:       card.ImageHeight,
	}
}

func newCardViews(cards []db.Card) []cardView {
	views := make([]cardView, 0, len(cards))
	for i := range cards {
		views = append(views, newCardView(&cards[i]))
	}
	return views
}

// renderDescription 将 markdown 描述转换为经过清洗的 HTML。
func renderDescription(markdown string) template.HTML {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
