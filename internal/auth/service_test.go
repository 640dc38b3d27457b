package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medbasket/medbasket-backend/internal/customers"
	pkgauth "github.com/medbasket/medbasket-backend/pkg/auth"
	"github.com/medbasket/medbasket-backend/pkg/config"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	pkgredis "github.com/medbasket/medbasket-backend/pkg/redis"
)

type stubCustomerRepo struct {
	nextID  int64
	byPhone map[string]*models.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{nextID: 1, byPhone: map[string]*models.Customer{}}
}

func (s *stubCustomerRepo) WithTx(tx *gorm.DB) customers.Repository { return s }

func (s *stubCustomerRepo) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	c.ID = s.nextID
	s.nextID++
	s.byPhone[c.Phone] = c
	return c, nil
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	for _, c := range s.byPhone {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	if c, ok := s.byPhone[phone]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	return nil
}

type stubOTPStore struct {
	values      map[string]string
	counters    map[string]int64
	denyWindow  bool
	windowCalls int
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{values: map[string]string{}, counters: map[string]int64{}}
}

func (s *stubOTPStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubOTPStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", pkgredis.Nil
}

func (s *stubOTPStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
		delete(s.counters, k)
	}
	return nil
}

func (s *stubOTPStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.counters[key]++
	return s.counters[key], nil
}

func (s *stubOTPStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.windowCalls++
	if s.denyWindow {
		return false, limit + 1, nil
	}
	return true, 1, nil
}

func (s *stubOTPStore) OTPKey(phone string) string         { return "mb:otp:" + phone }
func (s *stubOTPStore) OTPAttemptsKey(phone string) string { return "mb:otp_attempts:" + phone }

type stubOTPSender struct {
	sent []string
	err  error
}

func (s *stubOTPSender) Send(ctx context.Context, mobile, message string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, mobile+": "+message)
	return nil
}

func testOTPConfig() config.AuthOTPConfig {
	return config.AuthOTPConfig{
		TTL:            5 * time.Minute,
		Digits:         6,
		RequestWindow:  10 * time.Minute,
		PerPhoneLimit:  3,
		DevFixedCode:   "123456",
		VerifyMaxTries: 5,
	}
}

func newAuthService(t *testing.T, repo customers.Repository, store otpStore, sender otpSender) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		CustomerRepo: repo,
		Store:        store,
		Sender:       sender,
		OTPConfig:    testOTPConfig(),
		JWTConfig:    config.JWTConfig{Secret: "test-secret", Issuer: "medbasket", ExpirationMinutes: 60},
		Logger:       logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return svc
}

func TestRequestOTPStoresAndSends(t *testing.T) {
	store := newStubOTPStore()
	sender := &stubOTPSender{}
	svc := newAuthService(t, newStubCustomerRepo(), store, sender)

	resp, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Phone: "+91 98765 43210"})
	require.NoError(t, err)
	assert.True(t, resp.Sent)

	assert.Equal(t, "123456", store.values["mb:otp:9876543210"], "country code is stripped before keying")
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "9876543210")
}

func TestRequestOTPRateLimited(t *testing.T) {
	store := newStubOTPStore()
	store.denyWindow = true
	svc := newAuthService(t, newStubCustomerRepo(), store, &stubOTPSender{})

	_, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Phone: "9876543210"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRateLimit))
}

func TestVerifyOTPCreatesCustomerAndMintsToken(t *testing.T) {
	repo := newStubCustomerRepo()
	store := newStubOTPStore()
	store.values["mb:otp:9876543210"] = "123456"
	svc := newAuthService(t, repo, store, &stubOTPSender{})

	resp, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Phone: "9876543210",
		Code:  "123456",
		Name:  "Asha",
	})
	require.NoError(t, err)
	assert.True(t, resp.NewCustomer)
	assert.Equal(t, "Asha", resp.Name)

	claims, err := pkgauth.ParseAccessToken(config.JWTConfig{Secret: "test-secret", Issuer: "medbasket", ExpirationMinutes: 60}, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.CustomerID, claims.CustomerID)
	assert.Equal(t, "9876543210", claims.Phone)

	_, ok := store.values["mb:otp:9876543210"]
	assert.False(t, ok, "OTP is single use")
}

func TestVerifyOTPExistingCustomer(t *testing.T) {
	repo := newStubCustomerRepo()
	_, err := repo.Create(context.Background(), &models.Customer{Name: "Ravi", Phone: "9876543210"})
	require.NoError(t, err)

	store := newStubOTPStore()
	store.values["mb:otp:9876543210"] = "123456"
	svc := newAuthService(t, repo, store, &stubOTPSender{})

	resp, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Phone: "9876543210", Code: "123456"})
	require.NoError(t, err)
	assert.False(t, resp.NewCustomer)
	assert.Equal(t, "Ravi", resp.Name)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	store := newStubOTPStore()
	store.values["mb:otp:9876543210"] = "123456"
	svc := newAuthService(t, newStubCustomerRepo(), store, &stubOTPSender{})

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Phone: "9876543210", Code: "999999"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestVerifyOTPExpired(t *testing.T) {
	svc := newAuthService(t, newStubCustomerRepo(), newStubOTPStore(), &stubOTPSender{})

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Phone: "9876543210", Code: "123456"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestVerifyOTPTooManyAttempts(t *testing.T) {
	store := newStubOTPStore()
	store.values["mb:otp:9876543210"] = "123456"
	store.counters["mb:otp_attempts:9876543210"] = 5
	svc := newAuthService(t, newStubCustomerRepo(), store, &stubOTPSender{})

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Phone: "9876543210", Code: "123456"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRateLimit))
}
