package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	APIPort       string
	PublicBaseURL string
	LogLevel      string
	JWTKey        []byte
	JWTExp        time.Duration

	StorageDriver string // postgres | memory
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string

	SessionDriver string // redis | memory
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MaxUploadBytes int64
	DefaultPct     int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:        getEnv("API_PORT", "8080"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTKey:         []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:         time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		StorageDriver:  getEnv("STORAGE_DRIVER", DriverPostgres),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "billed"),
		DBPassword:     getEnv("DB_PASSWORD", "billed"),
		DBName:         getEnv("DB_NAME", "billed"),
		DBSslMode:      getEnv("DB_SSLMODE", "disable"),
		SessionDriver:  getEnv("SESSION_DRIVER", DriverRedis),
		SessionTTL:     time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5<<20)),
		DefaultPct:     getEnvAsInt("DEFAULT_PCT", 20),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
