package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/internal/customers"
	pkgauth "github.com/medbasket/medbasket-backend/pkg/auth"
	"github.com/medbasket/medbasket-backend/pkg/config"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	pkgredis "github.com/medbasket/medbasket-backend/pkg/redis"
)

// Service implements phone-number login: an OTP is sent over WhatsApp and a
// successful verification mints a JWT, creating the customer row on first login.
type Service interface {
	RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResponse, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error)
}

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	OTPKey(phone string) string
	OTPAttemptsKey(phone string) string
}

type otpSender interface {
	Send(ctx context.Context, mobile, message string) error
}

type service struct {
	customers customers.Repository
	store     otpStore
	sender    otpSender
	otpCfg    config.AuthOTPConfig
	jwtCfg    config.JWTConfig
	logger    *logger.Logger
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	CustomerRepo customers.Repository
	Store        otpStore
	Sender       otpSender
	OTPConfig    config.AuthOTPConfig
	JWTConfig    config.JWTConfig
	Logger       *logger.Logger
}

// NewService constructs the OTP login service.
func NewService(params ServiceParams) (Service, error) {
	if params.CustomerRepo == nil {
		return nil, fmt.Errorf("customer repository is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("otp sender is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		customers: params.CustomerRepo,
		store:     params.Store,
		sender:    params.Sender,
		otpCfg:    params.OTPConfig,
		jwtCfg:    params.JWTConfig,
		logger:    params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResponse, error) {
	phone := normalizePhone(req.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}

	allowed, _, err := s.store.FixedWindowAllow(ctx, "otp:"+phone, int64(s.otpCfg.PerPhoneLimit), s.otpCfg.RequestWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "otp rate limit check")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many OTP requests, try again later")
	}

	code := s.otpCfg.DevFixedCode
	if code == "" {
		code, err = generateCode(s.otpCfg.Digits)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
		}
	}

	if err := s.store.Set(ctx, s.store.OTPKey(phone), code, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	msg := fmt.Sprintf("%s is your MedBasket login code. It expires in %d minutes.", code, int(s.otpCfg.TTL.Minutes()))
	if err := s.sender.Send(ctx, phone, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp")
	}

	s.logger.Info(s.logger.WithField(ctx, "phone_suffix", phoneSuffix(phone)), "otp sent")

	return &RequestOTPResponse{
		Sent:    true,
		Message: "OTP sent",
	}, nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	phone := normalizePhone(req.Phone)
	code := strings.TrimSpace(req.Code)
	if phone == "" || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and code are required")
	}

	attempts, err := s.store.IncrWithTTL(ctx, s.store.OTPAttemptsKey(phone), s.otpCfg.TTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "otp attempt tracking")
	}
	if int(attempts) > s.otpCfg.VerifyMaxTries {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, request a new OTP")
	}

	stored, err := s.store.Get(ctx, s.store.OTPKey(phone))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "OTP expired or not requested")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if stored != code {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect OTP")
	}

	// single use
	if err := s.store.Del(ctx, s.store.OTPKey(phone), s.store.OTPAttemptsKey(phone)); err != nil {
		s.logger.Warn(ctx, "otp cleanup failed")
	}

	customer, created, err := s.findOrCreateCustomer(ctx, phone, req.Name)
	if err != nil {
		return nil, err
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		CustomerID: customer.ID,
		Phone:      customer.Phone,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	logCtx := s.logger.WithCustomerID(ctx, fmt.Sprintf("%d", customer.ID))
	s.logger.Info(logCtx, "customer logged in")

	return &VerifyOTPResponse{
		Token:       token,
		CustomerID:  customer.ID,
		Name:        customer.Name,
		NewCustomer: created,
	}, nil
}

func (s *service) findOrCreateCustomer(ctx context.Context, phone, name string) (*models.Customer, bool, error) {
	customer, err := s.customers.FindByPhone(ctx, phone)
	if err == nil {
		return customer, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find customer")
	}

	created, err := s.customers.Create(ctx, &models.Customer{
		Name:  strings.TrimSpace(name),
		Phone: phone,
	})
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return created, true, nil
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return ""
	}
	// keep the last 10 digits, dropping any country prefix
	return digits[len(digits)-10:]
}

func phoneSuffix(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}

func generateCode(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
