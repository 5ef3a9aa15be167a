package config

// EnvPrefix scopes every variable consumed by envconfig.
const EnvPrefix = "TOMMIES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "TOMMIES_APP_ENV"
	EnvPort                   = "TOMMIES_APP_PORT"
	EnvDBDSN                  = "TOMMIES_DB_DSN"
	EnvDBHost                 = "TOMMIES_DB_HOST"
	EnvDBUser                 = "TOMMIES_DB_USER"
	EnvDBName                 = "TOMMIES_DB_NAME"
	EnvRedisURL               = "TOMMIES_REDIS_URL"
	EnvJWTSecret              = "TOMMIES_JWT_SECRET"
	EnvJWTIssuer              = "TOMMIES_JWT_ISSUER"
	EnvJWTExpMins             = "TOMMIES_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "TOMMIES_REFRESH_TOKEN_TTL_MINUTES"
	EnvFlwSecretKey           = "TOMMIES_FLW_SECRET_KEY"
	EnvFlwRedirectURL         = "TOMMIES_FLW_REDIRECT_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
