package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/medbasket/medbasket-backend/api/routes"
	addresssvc "github.com/medbasket/medbasket-backend/internal/address"
	authsvc "github.com/medbasket/medbasket-backend/internal/auth"
	couponsvc "github.com/medbasket/medbasket-backend/internal/coupons"
	"github.com/medbasket/medbasket-backend/internal/customers"
	"github.com/medbasket/medbasket-backend/internal/notifications"
	ordersvc "github.com/medbasket/medbasket-backend/internal/orders"
	paymentsvc "github.com/medbasket/medbasket-backend/internal/payments"
	rxsvc "github.com/medbasket/medbasket-backend/internal/prescriptions"
	settingssvc "github.com/medbasket/medbasket-backend/internal/settings"
	"github.com/medbasket/medbasket-backend/pkg/cloudinary"
	"github.com/medbasket/medbasket-backend/pkg/config"
	"github.com/medbasket/medbasket-backend/pkg/db"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/mail"
	"github.com/medbasket/medbasket-backend/pkg/metrics"
	"github.com/medbasket/medbasket-backend/pkg/migrate"
	"github.com/medbasket/medbasket-backend/pkg/razorpay"
	"github.com/medbasket/medbasket-backend/pkg/redis"
	"github.com/medbasket/medbasket-backend/pkg/whatsapp"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	razorpayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap razorpay", err)
		os.Exit(1)
	}
	cloudinaryClient, err := cloudinary.NewClient(cfg.Cloudinary, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloudinary", err)
		os.Exit(1)
	}
	mailClient, err := mail.NewClient(cfg.Resend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mail client", err)
		os.Exit(1)
	}
	whatsappClient, err := whatsapp.NewClient(cfg.WhatsApp, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap whatsapp client", err)
		os.Exit(1)
	}

	customerRepo := customers.NewRepository(dbClient.DB())

	notifier, err := notifications.NewService(whatsappClient, mailClient, orderMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		CustomerRepo: customerRepo,
		Store:        redisClient,
		Sender:       whatsappClient,
		OTPConfig:    cfg.AuthOTP,
		JWTConfig:    cfg.JWT,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	settingsService, err := settingssvc.NewService(settingssvc.NewRepository(dbClient.DB()), redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	couponService, err := couponsvc.NewService(couponsvc.NewRepository(dbClient.DB()), cfg.Coupon, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	ordersRepo := ordersvc.NewRepository(dbClient.DB())

	ordersService, err := ordersvc.NewService(ordersvc.ServiceParams{
		Repo:      ordersRepo,
		Tx:        dbClient,
		Coupons:   couponService,
		Pricing:   settingsService,
		Gateway:   razorpayClient,
		Notifier:  notifier,
		Customers: customerRepo,
		Metrics:   orderMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := paymentsvc.NewService(paymentsvc.ServiceParams{
		Repo:      ordersRepo,
		Tx:        dbClient,
		Verifier:  razorpayClient,
		Notifier:  notifier,
		Customers: customerRepo,
		Metrics:   orderMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	prescriptionsService, err := rxsvc.NewService(rxsvc.NewRepository(dbClient.DB()), cloudinaryClient, notifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create prescriptions service", err)
		os.Exit(1)
	}

	addressService, err := addresssvc.NewService(addresssvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Registry:      registry,
			Auth:          authService,
			Orders:        ordersService,
			Payments:      paymentsService,
			Coupons:       couponService,
			Prescriptions: prescriptionsService,
			Addresses:     addressService,
			Settings:      settingsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
