package config

const EnvPrefix = "COMMERCIFY"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv         = "COMMERCIFY_APP_ENV"
	EnvAppPort        = "COMMERCIFY_APP_PORT"
	EnvCatalogBaseURL = "COMMERCIFY_CATALOG_BASE_URL"
	EnvOrdersBaseURL  = "COMMERCIFY_ORDERS_BASE_URL"
	EnvFeedTransport  = "COMMERCIFY_FEED_TRANSPORT"
	EnvFeedURL        = "COMMERCIFY_FEED_URL"
	EnvRedisURL       = "COMMERCIFY_REDIS_URL"
	EnvDBPath         = "COMMERCIFY_DB_PATH"
	EnvUseSQLite      = "COMMERCIFY_USE_SQLITE"
)
