package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	BaseURL     string // Public URL prefix for generated file links
	FSPath      string // Physical directory for finalized uploads
	FSURL       string // URL path prefix for static file access
	FSStaging   string // Write-ahead staging directory for in-flight uploads
	PDFFontPath string // Optional UTF-8 TTF for PDF exports (Persian text)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "3007"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "innoclub"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "innoclub"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3007"),
		FSPath:      getEnv("FS_PATH", "./uploads"),
		FSURL:       getEnv("FS_URL", "/fs/uploads"),
		FSStaging:   getEnv("FS_STAGING_PATH", "./uploads/.staging"),
		PDFFontPath: getEnv("PDF_FONT_PATH", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
