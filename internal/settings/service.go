package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	pkgredis "github.com/medbasket/medbasket-backend/pkg/redis"
)

const (
	KeyShippingThreshold = "shipping_threshold"
	KeyShippingCharge    = "shipping_charge"
	KeyCODFee            = "cod_fee"

	cacheKey = "pricing"
	cacheTTL = 5 * time.Minute
)

// Pricing holds the store-level charges applied while totalling an order.
type Pricing struct {
	ShippingThreshold decimal.Decimal `json:"shipping_threshold"`
	ShippingCharge    decimal.Decimal `json:"shipping_charge"`
	CODFee            decimal.Decimal `json:"cod_fee"`
}

// defaultPricing matches the seeded settings rows. Used when a row is absent
// so checkout keeps working on a fresh database.
func defaultPricing() Pricing {
	return Pricing{
		ShippingThreshold: decimal.NewFromInt(500),
		ShippingCharge:    decimal.NewFromInt(50),
		CODFee:            decimal.NewFromInt(30),
	}
}

type settingsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SettingsKey(name string) string
}

// Service reads and updates store settings with a short redis cache in front.
type Service interface {
	GetPricing(ctx context.Context) (Pricing, error)
	UpdateSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]models.Setting, error)
}

type service struct {
	repo   Repository
	cache  settingsCache
	logger *logger.Logger
}

// NewService builds a settings service with the required dependencies.
func NewService(repo Repository, cache settingsCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("settings cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logger: logg}, nil
}

func (s *service) GetPricing(ctx context.Context) (Pricing, error) {
	key := s.cache.SettingsKey(cacheKey)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached Pricing
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
	} else if !errors.Is(err, pkgredis.Nil) {
		s.logger.Warn(s.logger.WithField(ctx, "cache_key", key), "settings cache read failed")
	}

	pricing := defaultPricing()

	if v, err := s.decimalSetting(ctx, KeyShippingThreshold); err != nil {
		return Pricing{}, err
	} else if v != nil {
		pricing.ShippingThreshold = *v
	}
	if v, err := s.decimalSetting(ctx, KeyShippingCharge); err != nil {
		return Pricing{}, err
	} else if v != nil {
		pricing.ShippingCharge = *v
	}
	if v, err := s.decimalSetting(ctx, KeyCODFee); err != nil {
		return Pricing{}, err
	} else if v != nil {
		pricing.CODFee = *v
	}

	if payload, err := json.Marshal(pricing); err == nil {
		if err := s.cache.Set(ctx, key, payload, cacheTTL); err != nil {
			s.logger.Warn(s.logger.WithField(ctx, "cache_key", key), "settings cache write failed")
		}
	}

	return pricing, nil
}

// decimalSetting returns nil when the row does not exist.
func (s *service) decimalSetting(ctx context.Context, key string) (*decimal.Decimal, error) {
	setting, err := s.repo.Find(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load setting %q: %w", key, err)
	}

	value, err := decimal.NewFromString(setting.Value)
	if err != nil {
		return nil, fmt.Errorf("setting %q has non-numeric value %q: %w", key, setting.Value, err)
	}
	return &value, nil
}

func (s *service) UpdateSetting(ctx context.Context, key, value string) error {
	if err := s.repo.Upsert(ctx, &models.Setting{Key: key, Value: value}); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	if err := s.cache.Del(ctx, s.cache.SettingsKey(cacheKey)); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "setting_key", key), "settings cache invalidation failed")
	}
	return nil
}

func (s *service) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.repo.List(ctx)
}
