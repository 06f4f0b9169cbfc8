package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RoomCodeMaxAttempts int
	MaxQuestionsPerRoom int
	MaxDurationMinutes  int

	SandboxURL            string
	SandboxTimeoutSeconds int

	BroadcastChannelPrefix string
	ProfileQueueName       string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		JWTKey:        []byte(getEnv("JWT_SECRET", "defaultsecret")),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "code_arena_db"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RoomCodeMaxAttempts: getEnvAsInt("ROOM_CODE_MAX_ATTEMPTS", 10),
		MaxQuestionsPerRoom: getEnvAsInt("MAX_QUESTIONS_PER_ROOM", 20),
		MaxDurationMinutes:  getEnvAsInt("MAX_DURATION_MINUTES", 180),

		SandboxURL:            getEnv("SANDBOX_URL", "https://emkc.org/api/v2/piston/execute"),
		SandboxTimeoutSeconds: getEnvAsInt("SANDBOX_TIMEOUT_SECONDS", 30),

		BroadcastChannelPrefix: getEnv("BROADCAST_CHANNEL_PREFIX", "room:"),
		ProfileQueueName:       getEnv("PROFILE_QUEUE_NAME", "profile_outcomes_queue"),
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
