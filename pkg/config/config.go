package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
	Flutterwave   FlutterwaveConfig
	SMTP          SMTPConfig
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
	Env          string `envconfig:"TOMMIES_APP_ENV" required:"true"`
	Port         string `envconfig:"TOMMIES_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"TOMMIES_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"TOMMIES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOMMIES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TOMMIES_DB_DSN"`
	Driver string `envconfig:"TOMMIES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TOMMIES_DB_HOST"`
	LegacyPort     int    `envconfig:"TOMMIES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TOMMIES_DB_USER"`
	LegacyPassword string `envconfig:"TOMMIES_DB_PASSWORD"`
	LegacyName     string `envconfig:"TOMMIES_DB_NAME"`
	LegacySSLMode  string `envconfig:"TOMMIES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TOMMIES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TOMMIES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TOMMIES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOMMIES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TOMMIES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TOMMIES_REDIS_ADDR"`
	Password     string        `envconfig:"TOMMIES_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOMMIES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOMMIES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOMMIES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOMMIES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOMMIES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOMMIES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TOMMIES_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TOMMIES_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TOMMIES_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TOMMIES_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TOMMIES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TOMMIES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TOMMIES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TOMMIES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TOMMIES_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TOMMIES_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TOMMIES_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TOMMIES_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TOMMIES_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TOMMIES_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TOMMIES_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TOMMIES_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"TOMMIES_CART_TTL" default:"24h"`
}

type FlutterwaveConfig struct {
	BaseURL     string        `envconfig:"TOMMIES_FLW_BASE_URL" default:"https://api.flutterwave.com/v3"`
	SecretKey   string        `envconfig:"TOMMIES_FLW_SECRET_KEY" required:"true"`
	Currency    string        `envconfig:"TOMMIES_FLW_CURRENCY" default:"NGN"`
	RedirectURL string        `envconfig:"TOMMIES_FLW_REDIRECT_URL" required:"true"`
	Timeout     time.Duration `envconfig:"TOMMIES_FLW_TIMEOUT" default:"15s"`
}

type SMTPConfig struct {
	Host     string `envconfig:"TOMMIES_SMTP_HOST"`
	Port     int    `envconfig:"TOMMIES_SMTP_PORT" default:"587"`
	Username string `envconfig:"TOMMIES_SMTP_USERNAME"`
	Password string `envconfig:"TOMMIES_SMTP_PASSWORD"`
	From     string `envconfig:"TOMMIES_SMTP_FROM"`
}

// Enabled reports whether enough coordinates exist to submit mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
