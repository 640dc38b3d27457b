package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medbasket/medbasket-backend/api/controllers"
	"github.com/medbasket/medbasket-backend/api/middleware"
	addresssvc "github.com/medbasket/medbasket-backend/internal/address"
	authsvc "github.com/medbasket/medbasket-backend/internal/auth"
	couponsvc "github.com/medbasket/medbasket-backend/internal/coupons"
	ordersvc "github.com/medbasket/medbasket-backend/internal/orders"
	paymentsvc "github.com/medbasket/medbasket-backend/internal/payments"
	rxsvc "github.com/medbasket/medbasket-backend/internal/prescriptions"
	settingssvc "github.com/medbasket/medbasket-backend/internal/settings"
	"github.com/medbasket/medbasket-backend/pkg/config"
	"github.com/medbasket/medbasket-backend/pkg/db"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Registry      *prometheus.Registry
	Auth          authsvc.Service
	Orders        ordersvc.Service
	Payments      paymentsvc.Service
	Coupons       couponsvc.Service
	Prescriptions rxsvc.Service
	Addresses     addresssvc.Service
	Settings      settingssvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthOTP.RequestWindow,
		cfg.AuthOTP.PerIPLimit,
		cfg.AuthOTP.PerPhoneLimit,
	)
	otpLimiter := middleware.AuthRateLimit(otpPolicy, nil, logg)
	if p.Redis != nil {
		otpLimiter = middleware.AuthRateLimit(otpPolicy, p.Redis, logg)
	}

	var redisP redis.Pinger
	if p.Redis != nil {
		redisP = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisP))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(otpLimiter).Post("/request-otp", controllers.AuthRequestOTP(p.Auth, logg))
		r.Post("/verify-otp", controllers.AuthVerifyOTP(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/make-a-order", controllers.OrderCreate(p.Orders, logg))
		r.Post("/repeat_order/{orderId}", controllers.OrderRepeat(p.Orders, logg))
		r.Post("/verify-payment", controllers.PaymentVerify(p.Payments, logg))
		r.Post("/apply-coupon_code", controllers.CouponApply(p.Coupons, logg))
		r.Post("/upload", controllers.PrescriptionUpload(p.Prescriptions, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
		})

		r.Route("/prescriptions", func(r chi.Router) {
			r.Get("/", controllers.PrescriptionList(p.Prescriptions, logg))
			r.Get("/{prescriptionId}", controllers.PrescriptionDetail(p.Prescriptions, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(p.Addresses, logg))
			r.Post("/", controllers.AddressCreate(p.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(p.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(p.Addresses, logg))
		})

		r.Get("/settings/pricing", controllers.SettingsPricing(p.Settings, logg))
	})

	return r
}
