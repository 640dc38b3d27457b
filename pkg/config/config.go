package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	AuthOTP    AuthOTPConfig
	Razorpay   RazorpayConfig
	Cloudinary CloudinaryConfig
	Resend     ResendConfig
	WhatsApp   WhatsAppConfig
	Coupon     CouponConfig
	Cron       CronConfig
	Flags      FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env         string   `envconfig:"MEDBASKET_APP_ENV" required:"true"`
	Port        string   `envconfig:"MEDBASKET_APP_PORT" default:"8080"`
	LogLevel    string   `envconfig:"MEDBASKET_LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"MEDBASKET_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MEDBASKET_DB_DSN"`

	Host     string `envconfig:"MEDBASKET_DB_HOST"`
	Port     int    `envconfig:"MEDBASKET_DB_PORT" default:"5432"`
	User     string `envconfig:"MEDBASKET_DB_USER"`
	Password string `envconfig:"MEDBASKET_DB_PASSWORD"`
	Name     string `envconfig:"MEDBASKET_DB_NAME"`
	SSLMode  string `envconfig:"MEDBASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDBASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDBASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDBASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDBASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDBASKET_REDIS_URL"`
	Address      string        `envconfig:"MEDBASKET_REDIS_ADDR"`
	Password     string        `envconfig:"MEDBASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDBASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDBASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDBASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDBASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDBASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDBASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDBASKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDBASKET_JWT_ISSUER" default:"medbasket"`
	ExpirationMinutes int    `envconfig:"MEDBASKET_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type AuthOTPConfig struct {
	TTL             time.Duration `envconfig:"MEDBASKET_OTP_TTL" default:"5m"`
	Digits          int           `envconfig:"MEDBASKET_OTP_DIGITS" default:"6"`
	RequestWindow   time.Duration `envconfig:"MEDBASKET_OTP_RATE_WINDOW" default:"10m"`
	PerPhoneLimit   int           `envconfig:"MEDBASKET_OTP_PER_PHONE_LIMIT" default:"3"`
	PerIPLimit      int           `envconfig:"MEDBASKET_OTP_PER_IP_LIMIT" default:"20"`
	DevFixedCode    string        `envconfig:"MEDBASKET_OTP_DEV_FIXED_CODE"`
	TemplateName    string        `envconfig:"MEDBASKET_OTP_TEMPLATE" default:"login_otp"`
	VerifyMaxTries  int           `envconfig:"MEDBASKET_OTP_VERIFY_MAX_TRIES" default:"5"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"MEDBASKET_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"MEDBASKET_RAZORPAY_KEY_SECRET" required:"true"`
	Currency  string `envconfig:"MEDBASKET_RAZORPAY_CURRENCY" default:"INR"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"MEDBASKET_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"MEDBASKET_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"MEDBASKET_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"MEDBASKET_CLOUDINARY_FOLDER" default:"prescriptions"`
}

type ResendConfig struct {
	APIKey      string `envconfig:"MEDBASKET_RESEND_API_KEY"`
	DefaultFrom string `envconfig:"MEDBASKET_RESEND_FROM_EMAIL" default:"orders@medbasket.in"`
}

type WhatsAppConfig struct {
	BaseURL   string        `envconfig:"MEDBASKET_WHATSAPP_BASE_URL"`
	AuthKey   string        `envconfig:"MEDBASKET_WHATSAPP_AUTH_KEY"`
	SenderID  string        `envconfig:"MEDBASKET_WHATSAPP_SENDER_ID" default:"MEDBKT"`
	Timeout   time.Duration `envconfig:"MEDBASKET_WHATSAPP_TIMEOUT" default:"10s"`
	CountryCC string        `envconfig:"MEDBASKET_WHATSAPP_COUNTRY_CODE" default:"91"`
}

type CouponConfig struct {
	// CapPercentage applies max_discount to percentage coupons as well.
	// Off by default to match the storefront's historical behavior.
	CapPercentage bool `envconfig:"MEDBASKET_COUPON_CAP_PERCENTAGE" default:"false"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"MEDBASKET_CRON_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"MEDBASKET_CRON_LOCK_TTL" default:"55m"`
	PendingOrderTTL time.Duration `envconfig:"MEDBASKET_PENDING_ORDER_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEDBASKET_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
