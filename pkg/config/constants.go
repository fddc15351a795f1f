package config

const (
	EnvPrefix = "VENDORKYC"

	EnvAppEnv   = "VENDORKYC_APP_ENV"
	EnvPort     = "VENDORKYC_APP_PORT"
	EnvLogLevel = "VENDORKYC_LOG_LEVEL"

	EnvDBDSN    = "VENDORKYC_DB_DSN"
	EnvDBDriver = "VENDORKYC_DB_DRIVER"
	EnvDBHost   = "VENDORKYC_DB_HOST"
	EnvDBUser   = "VENDORKYC_DB_USER"
	EnvDBName   = "VENDORKYC_DB_NAME"

	EnvRedisURL = "VENDORKYC_REDIS_URL"

	EnvJWTSecret  = "VENDORKYC_JWT_SECRET"
	EnvJWTIssuer  = "VENDORKYC_JWT_ISSUER"
	EnvJWTExpMins = "VENDORKYC_JWT_EXPIRATION_MINUTES"

	EnvAdminEmail    = "VENDORKYC_ADMIN_EMAIL"
	EnvAdminPassword = "VENDORKYC_ADMIN_PASSWORD"

	EnvUseSQLite = "VENDORKYC_USE_SQLITE"

	EnvGCPProjectID      = "VENDORKYC_GCP_PROJECT_ID"
	EnvStorageBackend    = "VENDORKYC_STORAGE_BACKEND"
	EnvStorageLocalDir   = "VENDORKYC_STORAGE_LOCAL_DIR"
	EnvGCSBucket         = "VENDORKYC_GCS_BUCKET_NAME"
	EnvMaxUploadMB       = "VENDORKYC_MAX_UPLOAD_MB"
	EnvPubSubVendorTopic = "VENDORKYC_PUBSUB_VENDOR_EVENTS_TOPIC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
