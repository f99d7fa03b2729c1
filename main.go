package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const webhookPath = "/webhook"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	store, err := OpenStore(cfg.DataFile, cfg.AdminIDs)
	if err != nil {
		log.Fatalf("Ошибка при открытии хранилища: %v", err)
	}

	audit, err := OpenAudit(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка при подключении журнала команд: %v", err)
	}
	if audit != nil {
		defer audit.Close()
		log.Println("Журнал команд в Postgres включён")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Ошибка при создании бота: %v", err)
	}
	log.Printf("Авторизован как: %s", api.Self.UserName)

	bot := NewBot(api, store, audit, cfg)

	// Автообновление расписания со страницы учебного заведения
	if cfg.SchedulePage != "" {
		watcher := NewWatcher(cfg.SchedulePage, cfg.ScrapeInterval, cfg.ScheduleFile, store)
		go watcher.Run()
		log.Printf("Вотчер расписания запущен: %s, интервал %s", cfg.SchedulePage, cfg.ScrapeInterval)
	}

	if cfg.WebhookURL != "" {
		runWebhook(api, bot, cfg)
	} else {
		runPolling(api, bot)
	}
}

// runPolling получает обновления long polling-ом.
func runPolling(api *tgbotapi.BotAPI, bot *Bot) {
	// Снимаем вебхук, если он остался от прежнего режима
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("Ошибка при снятии вебхука: %v", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	log.Println("Бот запущен (long polling)...")
	for update := range api.GetUpdatesChan(u) {
		go bot.HandleUpdate(update)
	}
}

// runWebhook регистрирует вебхук и слушает его по HTTP.
func runWebhook(api *tgbotapi.BotAPI, bot *Bot, cfg *Config) {
	wh, err := tgbotapi.NewWebhook(cfg.WebhookURL + webhookPath)
	if err != nil {
		log.Fatalf("Ошибка при создании вебхука: %v", err)
	}
	if _, err := api.Request(wh); err != nil {
		log.Fatalf("Ошибка при установке вебхука: %v", err)
	}
	log.Printf("Вебхук установлен на: %s%s", cfg.WebhookURL, webhookPath)

	http.HandleFunc(webhookPath, func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			log.Printf("Ошибка декодирования обновления: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		go bot.HandleUpdate(update)
		w.WriteHeader(http.StatusOK)
	})
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Бот запущен и слушает вебхуки на " + webhookPath))
	})

	log.Printf("HTTP-сервер запущен на порту %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, nil))
}
