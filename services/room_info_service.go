package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rageroom-backend/models"
	"rageroom-backend/utils"

	"gorm.io/gorm"
)

const (
	DefaultAboutText = "Uma Sala da Raiva (Rage Room) e um ambiente seguro para descarregar o estresse " +
		"quebrando objetos com equipamentos de protecao e acompanhamento."
	DefaultDescription  = "Bem-vindo à Sala da Raiva! Venha liberar sua raiva num ambiente seguro e controlado."
	DefaultPricePerItem = 25.0
	DefaultPricePerDay  = 150.0
)

// RoomInfoPatch carries the fields an admin edit supplies. Nil, empty and zero values
// leave the stored value untouched. PricePerSession is the legacy name of PricePerDay.
type RoomInfoPatch struct {
	Title           *string  `json:"title"`
	AboutText       *string  `json:"about_text"`
	Description     *string  `json:"description"`
	PricePerItem    *float64 `json:"price_per_item"`
	PricePerDay     *float64 `json:"price_per_day"`
	PricePerSession *float64 `json:"price_per_session"`
	ImageURL        *string  `json:"image_url"`
	// ImageData is an uploaded image (base64, optionally a data: URL); it replaces ImageURL.
	ImageData       *string  `json:"image_data"`
}

func (p RoomInfoPatch) dayPrice() (float64, bool) {
	if v, ok := positive(p.PricePerDay); ok {
		return v, true
	}
	return positive(p.PricePerSession)
}

func text(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}

func positive(p *float64) (float64, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

// DefaultRoomInfo is what the public page shows before an admin edits anything.
func DefaultRoomInfo(now time.Time) models.RoomInfo {
	return models.RoomInfo{
		Title:           utils.RoomTitle,
		AboutText:       DefaultAboutText,
		Description:     DefaultDescription,
		PricePerItem:    DefaultPricePerItem,
		PricePerDay:     DefaultPricePerDay,
		PricePerSession: DefaultPricePerDay,
		UpdatedAt:       now,
	}
}

// withFallbacks fills the fields older rows may lack.
func withFallbacks(info models.RoomInfo) models.RoomInfo {
	if info.AboutText == "" {
		info.AboutText = DefaultAboutText
	}
	if info.PricePerItem == 0 {
		info.PricePerItem = DefaultPricePerItem
	}
	switch {
	case info.PricePerDay != 0:
	case info.PricePerSession != 0:
		info.PricePerDay = info.PricePerSession
	default:
		info.PricePerDay = DefaultPricePerDay
	}
	info.PricePerSession = info.PricePerDay
	return info
}

type RoomInfoService struct {
	DB     *gorm.DB
	Cache  RoomInfoCache // optional
	Images *ImageStore   // optional
	Logger *slog.Logger
	now    func() time.Time
}

func NewRoomInfoService(db *gorm.DB, cache RoomInfoCache, images *ImageStore, logger *slog.Logger) *RoomInfoService {
	return &RoomInfoService{DB: db, Cache: cache, Images: images, Logger: logger, now: time.Now}
}

// Get returns the stored descriptor, or the defaults when none has been saved yet.
func (s *RoomInfoService) Get(ctx context.Context) (models.RoomInfo, error) {
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx)
		if err != nil {
			s.Logger.Warn("room info cache read failed", "err", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	var info models.RoomInfo
	if err := s.DB.WithContext(ctx).Order("id ASC").First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultRoomInfo(s.now().UTC()), nil
		}
		return models.RoomInfo{}, fmt.Errorf("failed to load room info: %w", err)
	}
	info = withFallbacks(info)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, info); err != nil {
			s.Logger.Warn("room info cache write failed", "err", err)
		}
	}
	return info, nil
}

// Update applies an admin edit, creating the row from the defaults on first use.
func (s *RoomInfoService) Update(ctx context.Context, actor Actor, p RoomInfoPatch) (models.RoomInfo, error) {
	if !actor.IsAdmin {
		return models.RoomInfo{}, ErrAdminOnlyRoomInfo
	}
	uploaded := ""
	if data, ok := text(p.ImageData); ok {
		if s.Images == nil {
			return models.RoomInfo{}, ErrInvalidImage
		}
		url, err := s.Images.SaveBase64(data, "room")
		if err != nil {
			return models.RoomInfo{}, err
		}
		uploaded = url
		p.ImageURL = &url
	}

	var info models.RoomInfo
	now := s.now().UTC()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).Order("id ASC").First(&info).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			info = DefaultRoomInfo(now)
			applyPatch(&info, p)
			info.UpdatedBy = &actor.UserID
			return tx.Create(&info).Error
		}
		if err != nil {
			return err
		}

		updates := patchColumns(p)
		updates["updated_at"] = now
		updates["updated_by"] = actor.UserID
		if err := tx.Model(&info).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&info, info.ID).Error
	})
	if err != nil {
		if uploaded != "" {
			if rmErr := s.Images.Remove(uploaded); rmErr != nil {
				s.Logger.Warn("failed to remove orphaned room image", "path", uploaded, "err", rmErr)
			}
		}
		return models.RoomInfo{}, fmt.Errorf("failed to save room info: %w", err)
	}

	info = withFallbacks(info)
	s.refreshCache(ctx, info)
	s.Logger.Info("room info updated", "admin_id", actor.UserID)
	return info, nil
}

// refreshCache stores the row just written. A concurrent Get that read the previous row
// cannot overwrite it afterwards because the cache keeps the newest UpdatedAt.
func (s *RoomInfoService) refreshCache(ctx context.Context, info models.RoomInfo) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, info); err != nil {
		s.Logger.Warn("room info cache write failed", "err", err)
		if err := s.Cache.Invalidate(ctx); err != nil {
			s.Logger.Warn("room info cache invalidation failed", "err", err)
		}
	}
}

func applyPatch(info *models.RoomInfo, p RoomInfoPatch) {
	if v, ok := text(p.Title); ok {
		info.Title = v
	}
	if v, ok := text(p.AboutText); ok {
		info.AboutText = v
	}
	if v, ok := text(p.Description); ok {
		info.Description = v
	}
	if v, ok := positive(p.PricePerItem); ok {
		info.PricePerItem = v
	}
	if v, ok := p.dayPrice(); ok {
		info.PricePerDay = v
		info.PricePerSession = v
	}
	if v, ok := text(p.ImageURL); ok {
		info.ImageURL = &v
	}
}

func patchColumns(p RoomInfoPatch) map[string]any {
	cols := map[string]any{}
	if v, ok := text(p.Title); ok {
		cols["title"] = v
	}
	if v, ok := text(p.AboutText); ok {
		cols["about_text"] = v
	}
	if v, ok := text(p.Description); ok {
		cols["description"] = v
	}
	if v, ok := positive(p.PricePerItem); ok {
		cols["price_per_item"] = v
	}
	if v, ok := p.dayPrice(); ok {
		cols["price_per_day"] = v
		cols["price_per_session"] = v
	}
	if v, ok := text(p.ImageURL); ok {
		cols["image_url"] = v
	}
	return cols
}
