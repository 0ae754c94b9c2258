package config

const (
	EnvPrefix = "SURPLUS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "SURPLUS_APP_ENV"
	EnvPort     = "SURPLUS_APP_PORT"
	EnvLogLevel = "SURPLUS_LOG_LEVEL"

	EnvDBDSN      = "SURPLUS_DB_DSN"
	EnvDBHost     = "SURPLUS_DB_HOST"
	EnvDBPort     = "SURPLUS_DB_PORT"
	EnvDBUser     = "SURPLUS_DB_USER"
	EnvDBPassword = "SURPLUS_DB_PASSWORD"
	EnvDBName     = "SURPLUS_DB_NAME"
	EnvUseSQLite  = "SURPLUS_USE_SQLITE"

	EnvRedisURL  = "SURPLUS_REDIS_URL"
	EnvJWTSecret = "SURPLUS_JWT_SECRET"

	EnvGCPProjectID            = "SURPLUS_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "SURPLUS_PUBSUB_NOTIFICATION_TOPIC"

	EnvOrdersPendingTTL = "SURPLUS_ORDERS_PENDING_TTL"
	EnvOrdersPaymentTTL = "SURPLUS_ORDERS_PAYMENT_TTL"
	EnvCronInterval     = "SURPLUS_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
