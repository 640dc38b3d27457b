package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	addresssvc "github.com/medbasket/medbasket-backend/internal/address"
	authsvc "github.com/medbasket/medbasket-backend/internal/auth"
	couponsvc "github.com/medbasket/medbasket-backend/internal/coupons"
	ordersvc "github.com/medbasket/medbasket-backend/internal/orders"
	paymentsvc "github.com/medbasket/medbasket-backend/internal/payments"
	rxsvc "github.com/medbasket/medbasket-backend/internal/prescriptions"
	settingssvc "github.com/medbasket/medbasket-backend/internal/settings"
	pkgauth "github.com/medbasket/medbasket-backend/pkg/auth"
	"github.com/medbasket/medbasket-backend/pkg/config"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

type stubAuthService struct{}

func (stubAuthService) RequestOTP(context.Context, authsvc.RequestOTPRequest) (*authsvc.RequestOTPResponse, error) {
	return &authsvc.RequestOTPResponse{Sent: true, Message: "code sent"}, nil
}

func (stubAuthService) VerifyOTP(context.Context, authsvc.VerifyOTPRequest) (*authsvc.VerifyOTPResponse, error) {
	return &authsvc.VerifyOTPResponse{Token: "token", CustomerID: 1}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(context.Context, int64, ordersvc.CreateOrderRequest) (*ordersvc.CreateOrderResult, error) {
	return &ordersvc.CreateOrderResult{OrderPlaced: true, OrderID: 1}, nil
}

func (stubOrdersService) Reorder(context.Context, int64, int64, ordersvc.ReorderRequest) (*ordersvc.CreateOrderResult, error) {
	return &ordersvc.CreateOrderResult{OrderPlaced: true, OrderID: 2}, nil
}

func (stubOrdersService) List(context.Context, int64, int, string) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{}, nil
}

func (stubOrdersService) Get(context.Context, int64, int64) (*models.Order, error) {
	return &models.Order{ID: 1}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Verify(context.Context, paymentsvc.VerifyRequest) (*paymentsvc.VerifyResult, error) {
	return &paymentsvc.VerifyResult{Success: true, Redirect: paymentsvc.RedirectSuccess}, nil
}

type stubCouponsService struct{}

func (stubCouponsService) Apply(context.Context, string, decimal.Decimal) (*couponsvc.Evaluation, error) {
	return &couponsvc.Evaluation{}, nil
}

func (stubCouponsService) FindActive(context.Context, string) (*models.Coupon, error) {
	return nil, nil
}

type stubPrescriptionsService struct{}

func (stubPrescriptionsService) Upload(context.Context, int64, string, []rxsvc.File) (*rxsvc.UploadResult, error) {
	return &rxsvc.UploadResult{}, nil
}

func (stubPrescriptionsService) Get(context.Context, int64, uuid.UUID) (*models.Prescription, error) {
	return &models.Prescription{}, nil
}

func (stubPrescriptionsService) List(context.Context, int64) ([]models.Prescription, error) {
	return nil, nil
}

type stubAddressService struct{}

func (stubAddressService) Create(context.Context, int64, addresssvc.CreateInput) (*models.Address, error) {
	return &models.Address{}, nil
}

func (stubAddressService) List(context.Context, int64) ([]models.Address, error) {
	return nil, nil
}

func (stubAddressService) Get(context.Context, int64, int64) (*models.Address, error) {
	return &models.Address{}, nil
}

func (stubAddressService) Update(context.Context, int64, int64, addresssvc.UpdateInput) (*models.Address, error) {
	return &models.Address{}, nil
}

func (stubAddressService) Delete(context.Context, int64, int64) error {
	return nil
}

type stubSettingsService struct{}

func (stubSettingsService) GetPricing(context.Context) (settingssvc.Pricing, error) {
	return settingssvc.Pricing{}, nil
}

func (stubSettingsService) UpdateSetting(context.Context, string, string) error {
	return nil
}

func (stubSettingsService) ListSettings(context.Context) ([]models.Setting, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "medbasket",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:        testConfig(),
		Logger:        logger.New(logger.Options{ServiceName: "router-test"}),
		Auth:          stubAuthService{},
		Orders:        stubOrdersService{},
		Payments:      stubPaymentsService{},
		Coupons:       stubCouponsService{},
		Prescriptions: stubPrescriptionsService{},
		Addresses:     stubAddressService{},
		Settings:      stubSettingsService{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-MedBasket-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	handler := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/make-a-order"},
		{http.MethodPost, "/api/v1/verify-payment"},
		{http.MethodPost, "/api/v1/repeat_order/1"},
		{http.MethodPost, "/api/v1/apply-coupon_code"},
		{http.MethodPost, "/api/v1/upload"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/addresses"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestRouterAuthedRequestReachesHandler(t *testing.T) {
	handler := newTestRouter(t)

	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		CustomerID: 7,
		Phone:      "9876543210",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterRequestOTPIsPublic(t *testing.T) {
	handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/request-otp", strings.NewReader(`{"phone":"9876543210"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
