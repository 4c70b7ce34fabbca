package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string

	// SendLimitPerMinute caps how many messages one caller may send
	// per minute; SendBurst is the burst capacity.
	SendLimitPerMinute int
	SendBurst          int
}

func Load() *Config {
	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "renthub"),
		DBPassword:         getEnv("DB_PASSWORD", "renthub_dev_password"),
		DBName:             getEnv("DB_NAME", "renthub"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-me"),
		SendLimitPerMinute: getEnvInt("SEND_LIMIT_PER_MINUTE", 60),
		SendBurst:          getEnvInt("SEND_BURST", 10),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}

	return n
}
