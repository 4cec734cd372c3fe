package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/hrimajin/internal/db"
	"github.com/hrimajin/internal/directpath"
	"github.com/hrimajin/internal/logging"
	"github.com/hrimajin/internal/storage"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrCardIDRequired     = errors.New("card id is required")
	ErrCardTitleRequired  = errors.New("card title is required")
	ErrCardLinkInvalid    = errors.New("card link is invalid")
	ErrCardImageRequired  = errors.New("card image is required")
	ErrDirectPathTaken    = errors.New("direct path is already taken")
	ErrDirectLinkNotFound = errors.New("direct link not found")
	ErrImageUpload        = errors.New("image upload failed")
)

const directLinkCachePrefix = "directpath:"

var titlePolicy = bluemonday.StrictPolicy()

// LinkCache caches direct link resolutions.
type LinkCache interface {
	Get(key string, dest interface{}) error
	Set(key string, value interface{}, expiration time.Duration) error
	DeletePattern(pattern string) error
}

// CardInput represents fields accepted when creating or updating a card.
// Image carries a freshly decoded upload; ImageURL points at an already hosted image.
type CardInput struct {
	Title             string
	Description       string
	Link              string
	Image             *storage.Image
	ImageURL          string
	DirectLinkEnabled bool
	DirectPath        string
	Hidden            bool
}

// DirectPathAvailability is the outcome of a direct path availability check.
type DirectPathAvailability struct {
	Slug      string
	Available bool
	Reason    string
}

// CardService handles gallery card CRUD and direct link resolution.
type CardService struct {
	db       *gorm.DB
	bucket   storage.Bucket
	cache    LinkCache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewCardService creates a CardService instance.
func NewCardService(gdb *gorm.DB, bucket storage.Bucket, log *zap.Logger) *CardService {
	return &CardService{
		db:     gdb,
		bucket: bucket,
		log:    logging.OrNop(log).Named("cards"),
	}
}

// WithLinkCache enables caching of direct link lookups.
func (s *CardService) WithLinkCache(cache LinkCache, ttl time.Duration) *CardService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// List returns cards in creation order.
func (s *CardService) List(ctx context.Context, includeHidden bool) ([]db.Card, error) {
	query := s.db.WithContext(ctx).Model(&db.Card{})
	if !includeHidden {
		query = query.Where("hidden = ?", false)
	}

	var cards []db.Card
	if err := query.Order("created_at asc").Order("id asc").Find(&cards).Error; err != nil {
		s.log.Error("list cards failed", zap.Error(err))
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// Get fetches a card by id.
func (s *CardService) Get(ctx context.Context, id string) (*db.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCardIDRequired
	}

	var card db.Card
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &card, nil
}

// Create validates the input, uploads the image and inserts a new card.
func (s *CardService) Create(ctx context.Context, input CardInput) (*db.Card, error) {
	fields, err := prepareCardInput(input)
	if err != nil {
		return nil, err
	}
	externalURL := strings.TrimSpace(input.ImageURL)
	if input.Image == nil && externalURL == "" {
		return nil, ErrCardImageRequired
	}

	gdb := s.db.WithContext(ctx)
	if fields.directLinkEnabled {
		if err := ensureDirectPathFree(gdb, *fields.directPath, ""); err != nil {
			return nil, err
		}
	}

	card := db.Card{
		Title:             fields.title,
		Description:       fields.description,
		Link:              fields.link,
		ImageURL:          externalURL,
		DirectPath:        fields.directPath,
		DirectLinkEnabled: fields.directLinkEnabled,
		Hidden:            fields.hidden,
	}

	uploaded := ""
	if input.Image != nil {
		uploaded, err = s.upload(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		card.ImageURL = s.bucket.PublicURL(uploaded)
		card.ImageWidth = input.Image.Width
		card.ImageHeight = input.Image.Height
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if card.DirectLinkEnabled {
			if err := ensureDirectPathFree(tx, *card.DirectPath, ""); err != nil {
				return err
			}
		}
		return tx.Create(&card).Error
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, s.translateWriteError(err, "insert card", &card)
	}

	s.invalidateLinks()
	s.log.Info("card created", zap.String("card_id", card.ID), zap.String("title", card.Title))
	return &card, nil
}

// Update modifies an existing card. The image is replaced only when a new one is given.
func (s *CardService) Update(ctx context.Context, id string, input CardInput) (*db.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCardIDRequired
	}
	fields, err := prepareCardInput(input)
	if err != nil {
		return nil, err
	}

	card, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	gdb := s.db.WithContext(ctx)
	if fields.directLinkEnabled {
		if err := ensureDirectPathFree(gdb, *fields.directPath, card.ID); err != nil {
			return nil, err
		}
	}

	previousImage := card.ImageURL
	uploaded := ""
	switch {
	case input.Image != nil:
		uploaded, err = s.upload(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		card.ImageURL = s.bucket.PublicURL(uploaded)
		card.ImageWidth = input.Image.Width
		card.ImageHeight = input.Image.Height
	case strings.TrimSpace(input.ImageURL) != "" && strings.TrimSpace(input.ImageURL) != card.ImageURL:
		card.ImageURL = strings.TrimSpace(input.ImageURL)
		card.ImageWidth = 0
		card.ImageHeight = 0
	}

	card.Title = fields.title
	card.Description = fields.description
	card.Link = fields.link
	card.DirectPath = fields.directPath
	card.DirectLinkEnabled = fields.directLinkEnabled
	card.Hidden = fields.hidden

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if card.DirectLinkEnabled {
			if err := ensureDirectPathFree(tx, *card.DirectPath, card.ID); err != nil {
				return err
			}
		}
		return tx.Save(card).Error
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, s.translateWriteError(err, "update card", card)
	}

	if card.ImageURL != previousImage {
		s.removeImage(ctx, previousImage)
	}
	s.invalidateLinks()
	s.log.Info("card updated", zap.String("card_id", card.ID))
	return card, nil
}

// Delete removes a card and its uploaded image.
func (s *CardService) Delete(ctx context.Context, id string) error {
	card, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(card).Error; err != nil {
		s.log.Error("delete card failed", zap.String("card_id", card.ID), zap.Error(err))
		return fmt.Errorf("delete card: %w", err)
	}

	s.removeImage(ctx, card.ImageURL)
	s.invalidateLinks()
	s.log.Info("card deleted", zap.String("card_id", card.ID))
	return nil
}

// CheckDirectPath reports whether a direct path may be used by the card excludeID.
// Validation failures return the directpath error alongside Reason invalid or reserved.
func (s *CardService) CheckDirectPath(ctx context.Context, raw, excludeID string) (DirectPathAvailability, error) {
	slug := directpath.Sanitize(raw)
	result := DirectPathAvailability{Slug: slug}
	if err := directpath.Validate(slug); err != nil {
		result.Reason = directpath.Reason(err)
		return result, err
	}

	owner, err := findEnabledByPath(s.db.WithContext(ctx), slug)
	switch {
	case errors.Is(err, ErrDirectLinkNotFound):
		result.Available = true
		return result, nil
	case err != nil:
		s.log.Error("direct path check failed", zap.String("path", slug), zap.Error(err))
		result.Reason = directpath.ReasonError
		return result, fmt.Errorf("check direct path: %w", err)
	}

	if excludeID = strings.TrimSpace(excludeID); excludeID != "" && owner.ID == excludeID {
		result.Available = true
		return result, nil
	}

	result.Reason = directpath.ReasonTaken
	return result, nil
}

// ResolveDirectLink returns the target link of the enabled card owning slug.
func (s *CardService) ResolveDirectLink(ctx context.Context, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || directpath.Validate(slug) != nil {
		return "", ErrDirectLinkNotFound
	}

	key := directLinkCachePrefix + directpath.Key(slug)
	if s.cache != nil {
		var cached string
		if err := s.cache.Get(key, &cached); err == nil && cached != "" {
			return cached, nil
		}
	}

	card, err := findEnabledByPath(s.db.WithContext(ctx), slug)
	if err != nil {
		if !errors.Is(err, ErrDirectLinkNotFound) {
			s.log.Error("resolve direct link failed", zap.String("path", slug), zap.Error(err))
		}
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(key, card.Link, s.cacheTTL); err != nil {
			s.log.Warn("cache direct link failed", zap.String("path", slug), zap.Error(err))
		}
	}
	return card.Link, nil
}

// NormalizeLink accepts absolute http(s) URLs and site-relative paths.
func NormalizeLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", ErrCardLinkInvalid
	}
	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return link, nil
	}

	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return "", ErrCardLinkInvalid
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrCardLinkInvalid
	}
	return link, nil
}

type cardFields struct {
	title             string
	description       string
	link              string
	directPath        *string
	directLinkEnabled bool
	hidden            bool
}

func prepareCardInput(input CardInput) (cardFields, error) {
	fields := cardFields{
		title:       plainText(input.Title),
		description: strings.TrimSpace(input.Description),
		hidden:      input.Hidden,
	}
	if fields.title == "" {
		return fields, ErrCardTitleRequired
	}

	link, err := NormalizeLink(input.Link)
	if err != nil {
		return fields, err
	}
	fields.link = link

	if input.DirectLinkEnabled {
		slug, err := directpath.Normalize(input.DirectPath)
		if err != nil {
			return fields, err
		}
		fields.directPath = &slug
		fields.directLinkEnabled = true
	}
	return fields, nil
}

func plainText(value string) string {
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(strings.TrimSpace(value))))
}

func findEnabledByPath(tx *gorm.DB, slug string) (*db.Card, error) {
	var card db.Card
	err := tx.Where("direct_link_enabled = ? AND LOWER(direct_path) = ?", true, directpath.Key(slug)).
		Order("created_at asc").
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDirectLinkNotFound
		}
		return nil, err
	}
	return &card, nil
}

func ensureDirectPathFree(tx *gorm.DB, slug, excludeID string) error {
	owner, err := findEnabledByPath(tx, slug)
	if errors.Is(err, ErrDirectLinkNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if excludeID != "" && owner.ID == excludeID {
		return nil
	}
	return ErrDirectPathTaken
}

// translateWriteError 仅在卡片启用直达链接时把唯一约束冲突视为 path 被占用。
func (s *CardService) translateWriteError(err error, op string, card *db.Card) error {
	if errors.Is(err, ErrDirectPathTaken) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) && card != nil && card.DirectLinkEnabled {
		return ErrDirectPathTaken
	}
	s.log.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (s *CardService) upload(ctx context.Context, img *storage.Image) (string, error) {
	if s.bucket == nil {
		return "", fmt.Errorf("%w: storage bucket is not configured", ErrImageUpload)
	}
	objectPath := storage.NewObjectPath(img.Extension)
	if err := s.bucket.Upload(ctx, objectPath, img.Data, img.ContentType); err != nil {
		s.log.Error("upload image failed", zap.String("object", objectPath), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	return objectPath, nil
}

// UploadImage stores a standalone image and returns its public URL.
func (s *CardService) UploadImage(ctx context.Context, img *storage.Image) (string, error) {
	objectPath, err := s.upload(ctx, img)
	if err != nil {
		return "", err
	}
	return s.bucket.PublicURL(objectPath), nil
}

func (s *CardService) discard(ctx context.Context, objectPath string) {
	if objectPath == "" || s.bucket == nil {
		return
	}
	if err := s.bucket.Remove(context.WithoutCancel(ctx), objectPath); err != nil {
		s.log.Warn("discard uploaded image failed", zap.String("object", objectPath), zap.Error(err))
	}
}

func (s *CardService) removeImage(ctx context.Context, publicURL string) {
	if s.bucket == nil {
		return
	}
	objectPath, ok := s.bucket.ObjectPath(publicURL)
	if !ok {
		return
	}
	if err := s.bucket.Remove(context.WithoutCancel(ctx), objectPath); err != nil {
		s.log.Warn("remove card image failed", zap.String("object", objectPath), zap.Error(err))
	}
}

func (s *CardService) invalidateLinks() {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(directLinkCachePrefix + "*"); err != nil {
		s.log.Warn("invalidate direct link cache failed", zap.Error(err))
	}
}
