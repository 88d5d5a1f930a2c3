package config

const (
	EnvPrefix = "BACKOFFICE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv              = "BACKOFFICE_APP_ENV"
	EnvPort                = "BACKOFFICE_APP_PORT"
	EnvLogLevel            = "BACKOFFICE_LOG_LEVEL"
	EnvDefaultReorderPoint = "BACKOFFICE_DEFAULT_REORDER_POINT"

	EnvDBDSN    = "BACKOFFICE_DB_DSN"
	EnvDBDriver = "BACKOFFICE_DB_DRIVER"
	EnvDBHost   = "BACKOFFICE_DB_HOST"
	EnvDBUser   = "BACKOFFICE_DB_USER"
	EnvDBName   = "BACKOFFICE_DB_NAME"

	EnvRedisURL = "BACKOFFICE_REDIS_URL"

	EnvIdempotencySaleTTL = "BACKOFFICE_IDEMPOTENCY_SALE_TTL"
	EnvMetricsEnabled     = "BACKOFFICE_METRICS_ENABLED"
)
