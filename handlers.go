package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Привет! Я бот для расписания, домашки и конспектов.

Для всех пользователей:
📌 /schedule - показать расписание
📌 /homework - показать всю домашку
📌 /check_deadlines - показать дедлайны на завтра
📌 /notes - показать конспекты

Для администраторов:
🛠 /set_schedule - загрузить новое расписание (отправь фото после команды)
🛠 /add_homework - добавить домашку пошагово
🛠 /del_homework <номер> - удалить домашку по номеру
🛠 /add_note - добавить конспект (отправь PDF или фото после команды)
🛠 /add_admin <айди> - добавить админа
🛠 /del_admin <айди> - удалить админа
🛠 /admins - показать список админов`

// Подписи кнопок стартовой клавиатуры.
const (
	buttonSchedule  = "📅 Расписание"
	buttonHomework  = "📚 Домашка"
	buttonDeadlines = "⏰ Дедлайны"
	buttonNotes     = "📎 Конспекты"
)

// Bot связывает транспорт Telegram с ядром: хранилищем, диалогами
// добавления домашки и ожиданиями файлов.
type Bot struct {
	api   *tgbotapi.BotAPI
	store *Store
	conv  *Conversations
	files *PendingFiles
	audit *Audit
	cfg   *Config
}

func NewBot(api *tgbotapi.BotAPI, store *Store, audit *Audit, cfg *Config) *Bot {
	return &Bot{
		api:   api,
		store: store,
		conv:  NewConversations(store),
		files: NewPendingFiles(),
		audit: audit,
		cfg:   cfg,
	}
}

// HandleUpdate обрабатывает одно обновление от Telegram. Команды идут в
// диспетчер, файлы — в обработчик ожиданий, остальной текст — в активный
// диалог добавления домашки, если он есть.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	m := update.Message
	if m == nil || m.From == nil {
		return
	}
	userID := m.From.ID
	chatID := m.Chat.ID

	switch {
	case m.IsCommand():
		cmd := m.Command()
		err := b.dispatchCommand(cmd, m)
		b.audit.LogCommand(userID, cmd, err)
	case len(m.Photo) > 0 || m.Document != nil:
		b.onFile(m)
	case m.Text != "" && b.conv.Active(userID):
		b.onConversationText(chatID, userID, m.Text)
	case m.Text != "":
		b.onButton(m)
	}
}

func (b *Bot) dispatchCommand(cmd string, m *tgbotapi.Message) error {
	userID := m.From.ID
	chatID := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())

	switch cmd {
	case "start":
		b.sendStart(chatID)
		return nil
	case "schedule":
		b.sendSchedule(chatID)
		return nil
	case "homework":
		b.sendHomework(chatID)
		return nil
	case "check_deadlines":
		b.sendDeadlines(chatID)
		return nil
	case "notes":
		b.sendNotes(chatID)
		return nil
	case "add_homework":
		return b.cmdAddHomework(chatID, userID)
	case "cancel":
		b.conv.Cancel(userID)
		b.sendText(chatID, "Добавление домашки отменено.")
		return nil
	case "del_homework":
		return b.cmdDelHomework(chatID, userID, args)
	case "set_schedule":
		return b.cmdSetSchedule(chatID, userID)
	case "add_note":
		return b.cmdAddNote(chatID, userID)
	case "add_admin":
		return b.cmdAddAdmin(chatID, userID, args)
	case "del_admin":
		return b.cmdDelAdmin(chatID, userID, args)
	case "admins":
		return b.cmdAdmins(chatID, userID)
	default:
		return nil
	}
}

// onButton обрабатывает нажатия кнопок стартовой клавиатуры. Кнопки
// дублируют команды чтения и доступны всем.
func (b *Bot) onButton(m *tgbotapi.Message) {
	switch m.Text {
	case buttonSchedule:
		b.sendSchedule(m.Chat.ID)
	case buttonHomework:
		b.sendHomework(m.Chat.ID)
	case buttonDeadlines:
		b.sendDeadlines(m.Chat.ID)
	case buttonNotes:
		b.sendNotes(m.Chat.ID)
	}
}

func (b *Bot) sendStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSchedule),
			tgbotapi.NewKeyboardButton(buttonHomework),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonDeadlines),
			tgbotapi.NewKeyboardButton(buttonNotes),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Ошибка при отправке стартового сообщения в чат %d: %v", chatID, err)
	}
}

func (b *Bot) sendSchedule(chatID int64) {
	path, ok := b.store.Schedule()
	if !ok {
		b.sendText(chatID, "📅 Расписание пока не загружено.")
		return
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Файл расписания %s недоступен: %v", path, err)
		b.sendText(chatID, "📅 Расписание пока не загружено.")
		return
	}
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	msg.Caption = "📅 Расписание на ближайшую неделю"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Ошибка при отправке расписания в чат %d: %v", chatID, err)
		b.sendText(chatID, "❌ Ошибка при отправке фото расписания.")
	}
}

func (b *Bot) sendHomework(chatID int64) {
	lines := b.store.ListHomework()
	if len(lines) == 0 {
		b.sendText(chatID, "📚 Домашка пока отсутствует.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📚 Домашнее задание:\n\n")
	lastSubject := ""
	for _, line := range lines {
		if line.Subject != lastSubject {
			if lastSubject != "" {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "📝 %s:\n", line.Subject)
			lastSubject = line.Subject
		}
		fmt.Fprintf(&sb, "  %d. %s (дедлайн: %s)\n", line.Number, line.Task, line.Deadline)
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) sendDeadlines(chatID int64) {
	due := b.store.DueTomorrow(time.Now())
	if len(due) == 0 {
		b.sendText(chatID, "✅ Нет дедлайнов на завтра.")
		return
	}
	var sb strings.Builder
	for _, d := range due {
		fmt.Fprintf(&sb, "⚠ Завтра дедлайн по %s: %s (%s)\n", d.Subject, d.Task, d.Deadline)
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) sendNotes(chatID int64) {
	notes := b.store.Notes()
	if len(notes) == 0 {
		b.sendText(chatID, "📎 Конспекты пока отсутствуют.")
		return
	}
	for _, path := range notes {
		if _, err := os.Stat(path); err != nil {
			log.Printf("Конспект %s недоступен: %v", path, err)
			continue
		}
		ext := strings.ToLower(filepath.Ext(path))
		var msg tgbotapi.Chattable
		switch ext {
		case ".jpg", ".jpeg", ".png":
			msg = tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		case ".pdf":
			msg = tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
		default:
			continue
		}
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Ошибка при отправке конспекта %s в чат %d: %v", path, chatID, err)
			b.sendText(chatID, fmt.Sprintf("❌ Не удалось отправить %s", filepath.Base(path)))
		}
	}
}

func (b *Bot) cmdAddHomework(chatID, userID int64) error {
	if err := b.conv.Start(userID); err != nil {
		b.sendText(chatID, "⛔ Только администратор может добавлять домашку.")
		return err
	}
	b.sendText(chatID, "Введите название предмета:")
	return nil
}

func (b *Bot) onConversationText(chatID, userID int64, text string) {
	outcome, committed, err := b.conv.Step(userID, text)
	switch {
	case errors.Is(err, ErrNoSession):
		return
	case errors.Is(err, ErrInvalidDeadline):
		b.sendText(chatID, "❌ Неверный формат. Введите дату как ДД.MM")
		return
	case errors.Is(err, ErrInvalidInput):
		switch outcome {
		case OutcomeAskSubject:
			b.sendText(chatID, "Название предмета не может быть пустым. Введите название предмета:")
		default:
			b.sendText(chatID, "Текст задания не может быть пустым. Введите текст задания:")
		}
		return
	case err != nil:
		log.Printf("Ошибка при добавлении домашки пользователем %d: %v", userID, err)
		b.sendText(chatID, "❌ Не удалось сохранить домашку, попробуйте ещё раз.")
		return
	}

	switch outcome {
	case OutcomeAskTask:
		b.sendText(chatID, "Введите текст задания:")
	case OutcomeAskDeadline:
		b.sendText(chatID, "Введите дедлайн в формате ДД.MM:")
	case OutcomeCommitted:
		b.sendText(chatID, fmt.Sprintf("✅ Домашка добавлена: %s - %s (дедлайн: %s)", committed.Subject, committed.Task, committed.Deadline))
	}
}

func (b *Bot) cmdDelHomework(chatID, userID int64, args string) error {
	if !b.store.IsAdmin(userID) {
		b.sendText(chatID, "⛔ Только администратор может удалять домашку.")
		return ErrNotAuthorized
	}
	number, err := strconv.Atoi(args)
	if err != nil {
		b.sendText(chatID, "❌ Используй: /del_homework <номер>")
		return ErrInvalidInput
	}
	removed, err := b.store.RemoveHomework(number)
	if errors.Is(err, ErrNotFound) {
		b.sendText(chatID, "❌ Домашка с таким номером не найдена.")
		return err
	}
	if err != nil {
		log.Printf("Ошибка при удалении домашки №%d: %v", number, err)
		b.sendText(chatID, "❌ Не удалось сохранить изменения.")
		return err
	}
	b.sendText(chatID, fmt.Sprintf("✅ Удалена домашка: %s по %s", removed.Task, removed.Subject))
	return nil
}

func (b *Bot) cmdSetSchedule(chatID, userID int64) error {
	if !b.store.IsAdmin(userID) {
		b.sendText(chatID, "⛔ Только администратор может изменить расписание.")
		return ErrNotAuthorized
	}
	b.files.Expect(userID, kindSchedule)
	b.sendText(chatID, "📷 Отправь фото расписания после этой команды.")
	return nil
}

func (b *Bot) cmdAddNote(chatID, userID int64) error {
	if !b.store.IsAdmin(userID) {
		b.sendText(chatID, "⛔ Только администратор может добавлять конспекты.")
		return ErrNotAuthorized
	}
	b.files.Expect(userID, kindNote)
	b.sendText(chatID, "📎 Отправь PDF или изображение конспекта после этой команды.")
	return nil
}

func (b *Bot) cmdAddAdmin(chatID, userID int64, args string) error {
	target, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendText(chatID, "❌ Используй: /add_admin <айди пользователя>")
		return ErrInvalidInput
	}
	switch err := b.store.AddAdmin(userID, target); {
	case errors.Is(err, ErrNotAuthorized):
		b.sendText(chatID, "⛔ Только администратор может управлять админами.")
		return err
	case errors.Is(err, ErrAlreadyAdmin):
		b.sendText(chatID, "❌ Этот пользователь уже админ.")
		return err
	case err != nil:
		log.Printf("Ошибка при добавлении админа %d: %v", target, err)
		b.sendText(chatID, "❌ Не удалось сохранить изменения.")
		return err
	}
	b.sendText(chatID, fmt.Sprintf("✅ Пользователь %d добавлен в админы.", target))
	return nil
}

func (b *Bot) cmdDelAdmin(chatID, userID int64, args string) error {
	target, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendText(chatID, "❌ Используй: /del_admin <айди пользователя>")
		return ErrInvalidInput
	}
	switch err := b.store.RemoveAdmin(userID, target); {
	case errors.Is(err, ErrNotAuthorized):
		b.sendText(chatID, "⛔ Только администратор может управлять админами.")
		return err
	case errors.Is(err, ErrNotAdmin):
		b.sendText(chatID, "❌ Этот пользователь не является админом.")
		return err
	case errors.Is(err, ErrSelfRemoval):
		b.sendText(chatID, "❌ Нельзя удалить себя из админов.")
		return err
	case err != nil:
		log.Printf("Ошибка при удалении админа %d: %v", target, err)
		b.sendText(chatID, "❌ Не удалось сохранить изменения.")
		return err
	}
	b.sendText(chatID, fmt.Sprintf("✅ Пользователь %d удален из админов.", target))
	return nil
}

func (b *Bot) cmdAdmins(chatID, userID int64) error {
	if !b.store.IsAdmin(userID) {
		b.sendText(chatID, "⛔ Только администратор может смотреть список админов.")
		return ErrNotAuthorized
	}
	var sb strings.Builder
	sb.WriteString("🛠 Админы:\n")
	for _, id := range b.store.Admins() {
		fmt.Fprintf(&sb, "  %d\n", id)
	}
	b.sendText(chatID, sb.String())
	return nil
}

// onFile принимает фото или документ от пользователя, у которого есть
// активное ожидание файла. Файлы без ожидания игнорируются. Ожидание
// снимается сразу, поэтому и после ошибки загрузки команду надо выдать
// заново.
func (b *Bot) onFile(m *tgbotapi.Message) {
	userID := m.From.ID
	chatID := m.Chat.ID

	kind, ok := b.files.Take(userID)
	if !ok {
		return
	}

	switch kind {
	case kindSchedule:
		if len(m.Photo) == 0 {
			b.sendText(chatID, "❌ Расписание принимается только фотографией.")
			return
		}
		// Самый большой вариант фото — последний в списке
		fileID := m.Photo[len(m.Photo)-1].FileID
		if err := b.downloadFile(fileID, b.cfg.ScheduleFile); err != nil {
			log.Printf("Ошибка при сохранении фото расписания: %v", err)
			b.sendText(chatID, fmt.Sprintf("❌ Ошибка при сохранении фото: %v", err))
			return
		}
		if err := b.store.SetSchedule(b.cfg.ScheduleFile); err != nil {
			log.Printf("Ошибка при сохранении расписания: %v", err)
			b.sendText(chatID, "❌ Не удалось сохранить изменения.")
			return
		}
		b.sendText(chatID, "✅ Расписание обновлено!")

	case kindNote:
		var fileID, path string
		switch {
		case len(m.Photo) > 0:
			fileID = m.Photo[len(m.Photo)-1].FileID
			path = filepath.Join(b.cfg.NotesDir, fmt.Sprintf("note_%d.jpg", time.Now().Unix()))
		case m.Document != nil:
			fileID = m.Document.FileID
			path = filepath.Join(b.cfg.NotesDir, filepath.Base(m.Document.FileName))
		default:
			b.sendText(chatID, "❌ Конспект принимается фотографией или PDF.")
			return
		}
		if err := b.downloadFile(fileID, path); err != nil {
			log.Printf("Ошибка при сохранении конспекта: %v", err)
			b.sendText(chatID, fmt.Sprintf("❌ Ошибка при сохранении файла: %v", err))
			return
		}
		if err := b.store.AddNote(path); err != nil {
			log.Printf("Ошибка при сохранении конспекта: %v", err)
			b.sendText(chatID, "❌ Не удалось сохранить изменения.")
			return
		}
		b.sendText(chatID, fmt.Sprintf("✅ Конспект %s добавлен!", filepath.Base(path)))
	}
}

// downloadFile скачивает файл Bot API по его fileID в dest.
func (b *Bot) downloadFile(fileID, dest string) error {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("получение ссылки на файл: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("загрузка файла: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("загрузка файла: статус %d", resp.StatusCode)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("создание файла %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("запись файла %s: %w", dest, err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Ошибка при отправке сообщения в чат %d: %v", chatID, err)
	}
}
