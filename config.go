package main

import (
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/wordslide/apps/go-server/internal/game"
)

// config is everything main reads from the environment (.env included).
type config struct {
	Port       string
	LogLevel   string
	LogFormat  string // "json" | "console"
	DBPath     string // "" keeps progress in memory and disables accounts
	WordsFile  string
	WordsURL   string
	DailyURL   string
	DailySalt  string
	AdminToken string
	SessionTTL time.Duration
	Rules      game.Rules
}

func loadConfig() config {
	rules := game.DefaultRules()
	rules.Reward = envInt("GAME_REWARD", rules.Reward)
	rules.Lives = envInt("GAME_LIVES", rules.Lives)
	rules.WordCount = envInt("GAME_WORD_COUNT", rules.WordCount)
	rules.WordLength = envInt("GAME_WORD_LENGTH", rules.WordLength)

	return config{
		Port:       getEnv("PORT", "5175"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),
		DBPath:     os.Getenv("DB_PATH"),
		WordsFile:  os.Getenv("WORDS_FILE"),
		WordsURL:   os.Getenv("WORDS_URL"),
		DailyURL:   os.Getenv("DAILY_URL"),
		DailySalt:  getEnv("DAILY_SALT", "local_dev_salt"),
		AdminToken: os.Getenv("DAILY_ADMIN_TOKEN"),
		SessionTTL: time.Duration(envInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		Rules:      rules,
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as a non-negative integer, falling back to def.
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n < 0 {
		return def
	}
	return n
}
