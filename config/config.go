package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"projecthub/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type Config struct {
	Environment    string        `json:"environment"`
	ServerPort     string        `json:"server_port"`
	SecretKey      string        `json:"-"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	DBHost         string        `json:"db_host"`
	DBPort         string        `json:"db_port"`
	DBUser         string        `json:"db_user"`
	DBPassword     string        `json:"-"`
	DBName         string        `json:"db_name"`
	DBSSLMode      string        `json:"db_ssl_mode"`
	DBMaxIdleConns int           `json:"db_max_idle_conns"`
	DBMaxOpenConns int           `json:"db_max_open_conns"`
	UploadDir      string        `json:"upload_dir"`
	CORSOrigins    string        `json:"cors_origins"`
	SentryDSN      string        `json:"-"`
	SuperAdminPass string        `json:"-"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		SecretKey:      getEnv("SECRET_KEY", ""),
		AccessTokenTTL: time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24)) * time.Minute,
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "projecthub"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		SuperAdminPass: getEnv("SUPERADMIN_PASSWORD", ""),
	}

	// Validate required configurations
	if AppConfig.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.Environment == "production" && AppConfig.SuperAdminPass == "" {
		return fmt.Errorf("SUPERADMIN_PASSWORD is required in production")
	}

	if AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         AppConfig.SentryDSN,
			Environment: AppConfig.Environment,
		}); err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Successfully connected to the database")
	log.Println("Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Sentry enabled: %t", AppConfig.SentryDSN != "")
}

// MigrateDB runs schema migration and seeds the bootstrap admin. Exported so
// the test harness can migrate its in-memory database the same way.
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Professor{},
		&models.Admin{},
		&models.Project{},
		&models.ProjectResource{},
		&models.Milestone{},
		&models.MilestoneSubmission{},
		&models.SubmissionDocument{},
		&models.ProjectTeam{},
		&models.TeamMember{},
		&models.TeamApplication{},
		&models.StudentTeamApplication{},
	); err != nil {
		return err
	}

	if AppConfig.SuperAdminPass != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(AppConfig.SuperAdminPass), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		return models.CreateSuperAdmin(db, string(hash))
	}
	return nil
}
