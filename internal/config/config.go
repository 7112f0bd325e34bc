package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Review   ReviewConfig   `yaml:"review"`
	Cases    CasesConfig    `yaml:"cases"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"        env:"AUTH_JWT_SECRET"        env-required:"true"`
	JWTIssuer       string        `yaml:"jwt_issuer"        env:"AUTH_JWT_ISSUER"        env-default:"ihsan"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"  env:"AUTH_ACCESS_TOKEN_TTL"  env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"AUTH_REFRESH_TOKEN_TTL" env-default:"720h"`
	BcryptCost      int           `yaml:"bcrypt_cost"       env:"AUTH_BCRYPT_COST"       env-default:"10"`
}

// StorageConfig holds S3 evidence storage settings.
type StorageConfig struct {
	Region string `yaml:"region" env:"STORAGE_REGION" env-default:"eu-central-1"`
	Bucket string `yaml:"bucket" env:"STORAGE_BUCKET" env-required:"true"`
	// Endpoint overrides the S3 endpoint for local development (MinIO).
	Endpoint     string `yaml:"endpoint"       env:"STORAGE_ENDPOINT"`
	KeyPrefix    string `yaml:"key_prefix"     env:"STORAGE_KEY_PREFIX"    env-default:"evidence"`
	MaxSizeBytes int64  `yaml:"max_size_bytes" env:"STORAGE_MAX_SIZE"      env-default:"10485760"`
	// OrphanRetention is how long an evidence object may stay unreferenced
	// before cleanup-evidence removes it.
	OrphanRetention time.Duration `yaml:"orphan_retention" env:"STORAGE_ORPHAN_RETENTION" env-default:"72h"`
}

// ReviewConfig holds contribution review settings.
type ReviewConfig struct {
	// SearchDebounce is the quiet period before a typed search is issued.
	SearchDebounce time.Duration `yaml:"search_debounce" env:"REVIEW_SEARCH_DEBOUNCE" env-default:"300ms"`
	PageLimit      int           `yaml:"page_limit"      env:"REVIEW_PAGE_LIMIT"      env-default:"20"`
	MaxPageLimit   int           `yaml:"max_page_limit"  env:"REVIEW_MAX_PAGE_LIMIT"  env-default:"100"`
}

// CasesConfig holds charity-case settings.
type CasesConfig struct {
	// DraftRetention is how long an untouched draft case survives before
	// cleanup removes it.
	DraftRetention          time.Duration `yaml:"draft_retention"            env:"CASES_DRAFT_RETENTION"            env-default:"168h"`
	HardDeleteRetentionDays int           `yaml:"hard_delete_retention_days" env:"CASES_HARD_DELETE_RETENTION_DAYS" env-default:"30"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
