package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/nutrition-tracker/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Details:\n")
	fmt.Printf("  - Database URL: %s\n", maskToken(cfg.DatabaseURL))
	fmt.Printf("  - Reference timezone: %s\n", cfg.ReferenceTimezone)
	fmt.Printf("  - HTTP address: %s\n", cfg.HTTP.Addr)
	fmt.Printf("  - User id header: %s\n", cfg.HTTP.UserIDHeader)
	fmt.Printf("  - Future allowance: %s\n", cfg.FutureAllowance)
	fmt.Printf("  - Food CSV: %s\n", cfg.FoodCSVPath)
	fmt.Printf("  - Sync token: %s\n", maskToken(cfg.SyncToken))
	fmt.Printf("  - Redis: %s\n", orUnset(cfg.Redis.Addr))
	fmt.Printf("  - Telegram token: %s\n", maskToken(cfg.Telegram.Token))
	fmt.Printf("  - Gemini API key: %s\n", maskToken(cfg.Gemini.APIKey))
	fmt.Printf("  - DB pool: open=%d idle=%d lifetime=%s\n", cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime)
	fmt.Printf("  - Log level: %s\n", cfg.Logger.Level)
	fmt.Printf("  - Log output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log format: %s\n", cfg.Logger.Format)

	presence := cfg.EnvPresence()
	names := make([]string, 0, len(presence))
	for name := range presence {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("🌱 Environment:\n")
	for _, name := range names {
		mark := "unset"
		if presence[name] {
			mark = "set"
		}
		fmt.Printf("  - %s: %s\n", name, mark)
	}
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orUnset(v string) string {
	if v == "" {
		return "<not set>"
	}
	return v
}
