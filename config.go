package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config — все настройки бота из окружения (.env поддерживается).
type Config struct {
	// Telegram
	BotToken   string
	WebhookURL string // если пусто — long polling
	Port       string

	// Хранилище
	DataFile     string
	ScheduleFile string
	NotesDir     string

	// Стартовый список админов, используется только при создании data-файла
	AdminIDs []int64

	// Необязательные интеграции
	DatabaseURL    string        // журнал команд в Postgres
	SchedulePage   string        // страница с изображениями расписания
	ScrapeInterval time.Duration // пауза между проверками страницы
}

// LoadConfig читает .env (если есть) и переменные окружения.
func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		WebhookURL:     getenvOrDefault("WEBHOOK_URL", os.Getenv("RENDER_EXTERNAL_URL")),
		Port:           getenvOrDefault("PORT", "8080"),
		DataFile:       getenvOrDefault("DATA_FILE", "data.json"),
		ScheduleFile:   getenvOrDefault("SCHEDULE_FILE", "schedule.jpg"),
		NotesDir:       getenvOrDefault("NOTES_DIR", "notes"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SchedulePage:   os.Getenv("SCHEDULE_PAGE_URL"),
		ScrapeInterval: getenvDuration("SCHEDULE_SCRAPE_INTERVAL", 30*time.Minute),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("переменная BOT_TOKEN не задана")
	}

	ids, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("переменная ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = ids

	return cfg, nil
}

// parseAdminIDs разбирает список вида "1091754600,1267500760".
func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный айди %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getenvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
