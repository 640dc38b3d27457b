package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "MEDBASKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "MEDBASKET_APP_ENV"
	EnvPort       = "MEDBASKET_APP_PORT"
	EnvDBDSN      = "MEDBASKET_DB_DSN"
	EnvDBHost     = "MEDBASKET_DB_HOST"
	EnvDBUser     = "MEDBASKET_DB_USER"
	EnvDBName     = "MEDBASKET_DB_NAME"
	EnvRedisURL   = "MEDBASKET_REDIS_URL"
	EnvJWTSecret  = "MEDBASKET_JWT_SECRET"
	EnvRzpKeyID   = "MEDBASKET_RAZORPAY_KEY_ID"
	EnvRzpSecret  = "MEDBASKET_RAZORPAY_KEY_SECRET"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
