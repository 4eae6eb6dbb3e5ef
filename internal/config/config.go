package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	WordAPIURL       string
	DictionaryAPIURL string
	WordTimeout      time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ExportEnabled bool
	ExportFile    string

	StartDelay    time.Duration
	TurnDelay     time.Duration
	GameOverDelay time.Duration

	RateLimit float64
	RateBurst int
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	c.WordAPIURL = getenv("WORD_API_URL", "https://random-word-api.vercel.app")
	c.DictionaryAPIURL = getenv("DICTIONARY_API_URL", "https://api.dictionaryapi.dev")
	c.WordTimeout = getduration("WORD_TIMEOUT", 4*time.Second)
	c.RedisAddr = os.Getenv("REDIS_ADDR")
	c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	c.RedisDB = getint("REDIS_DB", 0)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./wordturn-results.txt")
	c.StartDelay = getduration("START_DELAY", 1500*time.Millisecond)
	c.TurnDelay = getduration("TURN_DELAY", 350*time.Millisecond)
	c.GameOverDelay = getduration("GAME_OVER_DELAY", 6*time.Second)
	c.RateLimit = getfloat("RATE_LIMIT", 5)
	c.RateBurst = getint("RATE_BURST", 10)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func getfloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

// getduration accepts Go duration strings ("350ms", "6s").
func getduration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d < 0 {
		return def
	}
	return d
}
