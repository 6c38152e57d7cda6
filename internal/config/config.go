package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds runtime settings loaded from the environment.
type Config struct {
	Addr        string
	DatabaseDSN string
	Debug       bool

	LLSSBaseURL string
	LLSSToken   string

	LichessBaseURL string

	DisplayWidth    int
	DisplayHeight   int
	DisplayBitDepth int
}

// Load reads .env (if present) and builds the configuration from
// environment variables, falling back to development defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:            getenv("CHESSINK_ADDR", ":8000"),
		DatabaseDSN:     getenv("CHESSINK_DATABASE_DSN", "host=localhost user=chessink password=chessink dbname=chessink port=5432 sslmode=disable"),
		Debug:           getbool("CHESSINK_DEBUG", false),
		LLSSBaseURL:     getenv("CHESSINK_LLSS_BASE_URL", "http://localhost:9000/api"),
		LLSSToken:       os.Getenv("CHESSINK_LLSS_TOKEN"),
		LichessBaseURL:  getenv("CHESSINK_LICHESS_BASE_URL", "https://lichess.org"),
		DisplayWidth:    getint("CHESSINK_DISPLAY_WIDTH", 800),
		DisplayHeight:   getint("CHESSINK_DISPLAY_HEIGHT", 480),
		DisplayBitDepth: getint("CHESSINK_DISPLAY_BIT_DEPTH", 1),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
