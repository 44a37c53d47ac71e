package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Matching MatchingConfig
	Caravan  CaravanConfig
}

type AppConfig struct {
	Environment  string
	LogFilePath  string
	ReceiptTopic string
}

type CatalogConfig struct {
	Path string
}

type MatchingConfig struct {
	ScoreCutoff  int // minimum fuzzy score (0-100) to keep a candidate
	SoftLimit    int // max candidates per stop, extended through ties
	VariantLimit int // cap on duplicate-pruned graph variants
}

type CaravanConfig struct {
	MaxGuests int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "app.log.csv"),
			ReceiptTopic: getEnv("RECEIPT_TOPIC_NAME", "CARAVAN_RECEIPTS"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("PLACES_FILE_PATH", "places.json"),
		},
		Matching: MatchingConfig{
			ScoreCutoff:  getEnvAsInt("MATCH_SCORE_CUTOFF", 60),
			SoftLimit:    getEnvAsInt("MATCH_SOFT_LIMIT", 3),
			VariantLimit: getEnvAsInt("MATCH_VARIANT_LIMIT", 200),
		},
		Caravan: CaravanConfig{
			MaxGuests: getEnvAsInt("CARAVAN_MAX_GUESTS", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
