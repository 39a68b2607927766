package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSlotCatalog — канонические слоты на случай, если SLOT_CATALOG не задан.
const DefaultSlotCatalog = "09:00-11:00,11:00-13:00,14:00-16:00,16:00-18:00,18:00-20:00"

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL           string
	ServerPort            int
	SlotCatalog           string
	GenerationHorizonDays int
	SweepInterval         time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	catalog := os.Getenv("SLOT_CATALOG")
	if catalog == "" {
		catalog = DefaultSlotCatalog
	}

	horizon, err := intFromEnv("GENERATION_HORIZON_DAYS", 30)
	if err != nil {
		return nil, err
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("GENERATION_HORIZON_DAYS must be positive, got %d", horizon)
	}

	sweepMinutes, err := intFromEnv("SWEEP_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	if sweepMinutes <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be positive, got %d", sweepMinutes)
	}

	cfg := &Config{
		DatabaseURL:           dbURL,
		ServerPort:            port,
		SlotCatalog:           catalog,
		GenerationHorizonDays: horizon,
		SweepInterval:         time.Duration(sweepMinutes) * time.Minute,
	}

	return cfg, nil
}

func intFromEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
