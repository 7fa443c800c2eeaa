package config

const (
	EnvPrefix = "FUELSTATION"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "FUELSTATION_APP_ENV"
	EnvPort     = "FUELSTATION_APP_PORT"
	EnvLogLevel = "FUELSTATION_LOG_LEVEL"

	EnvDBDSN    = "FUELSTATION_DB_DSN"
	EnvDBDriver = "FUELSTATION_DB_DRIVER"
	EnvDBHost   = "FUELSTATION_DB_HOST"
	EnvDBUser   = "FUELSTATION_DB_USER"
	EnvDBName   = "FUELSTATION_DB_NAME"

	EnvRedisURL  = "FUELSTATION_REDIS_URL"
	EnvJWTSecret = "FUELSTATION_JWT_SECRET"
	EnvJWTIssuer = "FUELSTATION_JWT_ISSUER"

	EnvPubSubReconciliationTopic = "FUELSTATION_PUBSUB_RECONCILIATION_TOPIC"
	EnvPubSubTopicOverrides      = "FUELSTATION_PUBSUB_TOPIC_OVERRIDES"
	EnvStationTimeZone           = "FUELSTATION_RECONCILIATION_TIME_ZONE"
	EnvPendingOverdueDays        = "FUELSTATION_RECONCILIATION_PENDING_OVERDUE_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
