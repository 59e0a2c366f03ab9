package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	TMDb         TMDbConfig
	Storage      StorageConfig
	Image        ImageConfig
	Backup       BackupConfig
	Housekeeping HousekeepingConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	CORSOrigins []string

	// TrustedProxies may set X-Forwarded-For and X-Real-IP.
	TrustedProxies []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// DSN returns a postgres:// URL understood by pgx and goose. Credentials are
// escaped, so passwords may contain spaces, quotes or '@'.
func (c DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return dsn.String()
}

type JWTConfig struct {
	Secret       string
	ExpiryHours  int
	CookieName   string
	SecureCookie bool
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type TMDbConfig struct {
	APIKey            string
	BaseURL           string
	ImageBaseURL      string
	Language          string
	Timeout           time.Duration
	RequestsPerSecond float64
	CastLimit         int
}

type StorageConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	PublicURL      string
	ForcePathStyle bool
	DisableTLS     bool
}

type ImageConfig struct {
	PosterMaxWidth   int
	BackdropMaxWidth int
	ProfileMaxWidth  int
	Quality          int
	MaxUploadMB      int
}

type BackupConfig struct {
	Dir        string
	MinCount   int
	MaxCount   int
	MaxAgeDays int
}

type HousekeepingConfig struct {
	OperationLogRetentionDays int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "watch-list")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24*7)
	viper.SetDefault("JWT_COOKIE_NAME", "token")
	viper.SetDefault("JWT_SECURE_COOKIE", false)
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/original")
	viper.SetDefault("TMDB_LANGUAGE", "en-US")
	viper.SetDefault("TMDB_TIMEOUT", "15s")
	viper.SetDefault("TMDB_RPS", 20)
	viper.SetDefault("TMDB_CAST_LIMIT", 15)
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_FORCE_PATH_STYLE", true)
	viper.SetDefault("STORAGE_DISABLE_TLS", false)
	viper.SetDefault("IMAGE_POSTER_MAX_WIDTH", 780)
	viper.SetDefault("IMAGE_BACKDROP_MAX_WIDTH", 1280)
	viper.SetDefault("IMAGE_PROFILE_MAX_WIDTH", 632)
	viper.SetDefault("IMAGE_QUALITY", 82)
	viper.SetDefault("IMAGE_MAX_UPLOAD_MB", 10)
	viper.SetDefault("BACKUP_DIR", "backups/")
	viper.SetDefault("BACKUP_MIN_COUNT", 3)
	viper.SetDefault("BACKUP_MAX_COUNT", 30)
	viper.SetDefault("BACKUP_MAX_AGE_DAYS", 90)
	viper.SetDefault("OPLOG_RETENTION_DAYS", 365)

	// .env is optional, containers pass everything through the environment
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			CORSOrigins: splitList(viper.GetString("CORS_ORIGINS")),

			TrustedProxies: splitList(viper.GetString("TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			ExpiryHours:  viper.GetInt("JWT_EXPIRY_HOURS"),
			CookieName:   viper.GetString("JWT_COOKIE_NAME"),
			SecureCookie: viper.GetBool("JWT_SECURE_COOKIE"),
		},
		TMDb: TMDbConfig{
			APIKey:            viper.GetString("TMDB_API_KEY"),
			BaseURL:           strings.TrimRight(viper.GetString("TMDB_BASE_URL"), "/"),
			ImageBaseURL:      strings.TrimRight(viper.GetString("TMDB_IMAGE_BASE_URL"), "/"),
			Language:          viper.GetString("TMDB_LANGUAGE"),
			Timeout:           viper.GetDuration("TMDB_TIMEOUT"),
			RequestsPerSecond: viper.GetFloat64("TMDB_RPS"),
			CastLimit:         viper.GetInt("TMDB_CAST_LIMIT"),
		},
		Storage: StorageConfig{
			Endpoint:       viper.GetString("STORAGE_ENDPOINT"),
			Region:         viper.GetString("STORAGE_REGION"),
			Bucket:         viper.GetString("STORAGE_BUCKET"),
			AccessKey:      viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:      viper.GetString("STORAGE_SECRET_KEY"),
			PublicURL:      strings.TrimRight(viper.GetString("STORAGE_PUBLIC_URL"), "/"),
			ForcePathStyle: viper.GetBool("STORAGE_FORCE_PATH_STYLE"),
			DisableTLS:     viper.GetBool("STORAGE_DISABLE_TLS"),
		},
		Image: ImageConfig{
			PosterMaxWidth:   viper.GetInt("IMAGE_POSTER_MAX_WIDTH"),
			BackdropMaxWidth: viper.GetInt("IMAGE_BACKDROP_MAX_WIDTH"),
			ProfileMaxWidth:  viper.GetInt("IMAGE_PROFILE_MAX_WIDTH"),
			Quality:          viper.GetInt("IMAGE_QUALITY"),
			MaxUploadMB:      viper.GetInt("IMAGE_MAX_UPLOAD_MB"),
		},
		Backup: BackupConfig{
			Dir:        viper.GetString("BACKUP_DIR"),
			MinCount:   viper.GetInt("BACKUP_MIN_COUNT"),
			MaxCount:   viper.GetInt("BACKUP_MAX_COUNT"),
			MaxAgeDays: viper.GetInt("BACKUP_MAX_AGE_DAYS"),
		},
		Housekeeping: HousekeepingConfig{
			OperationLogRetentionDays: viper.GetInt("OPLOG_RETENTION_DAYS"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings every entrypoint needs.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.Database.Name == "" || c.Database.User == "" {
		return errors.New("DB_NAME and DB_USER are required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if _, err := ParseTrustedProxies(c.App.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("IMAGE_QUALITY must be between 1 and 100, got %d", c.Image.Quality)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
