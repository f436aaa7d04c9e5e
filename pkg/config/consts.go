package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "vendora"

const (
	AppEnvDev     = "development"
	AppEnvStaging = "staging"
	AppEnvProd    = "production"
)

// Environment variable names, kept as constants so tests and ops tooling
// reference the same spellings as the struct tags.
const (
	EnvAppEnv       = "VENDORA_APP_ENV"
	EnvPort         = "VENDORA_APP_PORT"
	EnvLogLevel     = "VENDORA_LOG_LEVEL"
	EnvDBDSN        = "VENDORA_DB_DSN"
	EnvDBHost       = "VENDORA_DB_HOST"
	EnvDBUser       = "VENDORA_DB_USER"
	EnvDBName       = "VENDORA_DB_NAME"
	EnvRedisURL     = "VENDORA_REDIS_URL"
	EnvJWTSecret    = "VENDORA_JWT_SECRET"
	EnvJWTIssuer    = "VENDORA_JWT_ISSUER"
	EnvJWTExpMins   = "VENDORA_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID = "VENDORA_GCP_PROJECT_ID"
	EnvDomainTopic  = "VENDORA_PUBSUB_DOMAIN_TOPIC"
	EnvDomainSub    = "VENDORA_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
