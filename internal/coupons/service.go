package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/pkg/config"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// Service resolves coupon codes and applies them to cart totals.
type Service interface {
	Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*Evaluation, error)
	FindActive(ctx context.Context, code string) (*models.Coupon, error)
}

type service struct {
	repo   Repository
	cfg    config.CouponConfig
	logger *logger.Logger
}

// NewService builds a coupon service with the required dependencies.
func NewService(repo Repository, cfg config.CouponConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cfg: cfg, logger: logg}, nil
}

// FindActive looks up a coupon by code and rejects inactive rows.
func (s *service) FindActive(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find coupon")
	}
	if coupon.Status != enums.CouponStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "coupon is no longer active")
	}
	return coupon, nil
}

// Apply resolves the code and runs the evaluator against the cart total.
func (s *service) Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*Evaluation, error) {
	coupon, err := s.FindActive(ctx, code)
	if err != nil {
		return nil, err
	}

	eval, err := Evaluate(coupon, cartTotal, EvaluateOptions{CapPercentage: s.cfg.CapPercentage})
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"coupon_code": coupon.Code,
		"discount":    eval.Discount.String(),
	})
	s.logger.Info(logCtx, "coupon applied")
	return eval, nil
}
