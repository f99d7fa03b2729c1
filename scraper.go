package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
)

// Имена файлов расписания на сайте содержат дату: DD.MM[.YYYY]_...jpg.
// Год в имени игнорируется, подставляется текущий.
var scheduleImageRe = regexp.MustCompile(`/(\d{1,2})\.(\d{1,2})(?:\.\d{4})?[^/]*\.jpe?g$`)

// Watcher периодически проверяет страницу учебного заведения и сам
// обновляет фото расписания, когда там появляется изображение с более
// свежей датой. Ручная загрузка через /set_schedule при этом продолжает
// работать: вотчер просто перезапишет слот при следующей находке.
type Watcher struct {
	pageURL  string
	interval time.Duration
	dest     string
	store    *Store

	lastURL string
}

func NewWatcher(pageURL string, interval time.Duration, dest string, store *Store) *Watcher {
	return &Watcher{pageURL: pageURL, interval: interval, dest: dest, store: store}
}

// Run крутит цикл проверки до конца жизни процесса.
func (w *Watcher) Run() {
	for {
		if err := w.scan(); err != nil {
			log.Printf("Ошибка при проверке страницы расписания: %v", err)
		}
		time.Sleep(w.interval)
	}
}

// scan обходит страницу, выбирает изображение с самой поздней датой и,
// если оно новое, скачивает его в слот расписания.
func (w *Watcher) scan() error {
	log.Printf("Проверяем страницу расписания: %s", w.pageURL)

	var bestURL string
	var bestDate time.Time

	c := colly.NewCollector()
	c.OnHTML("img[src]", func(e *colly.HTMLElement) {
		src := e.Attr("src")
		matches := scheduleImageRe.FindStringSubmatch(src)
		if len(matches) != 3 {
			return
		}
		day, errD := strconv.Atoi(matches[1])
		month, errM := strconv.Atoi(matches[2])
		if errD != nil || errM != nil {
			return
		}
		now := time.Now()
		imageDate := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, time.Local)
		if imageDate.Month() != time.Month(month) || imageDate.Day() != day {
			log.Printf("Некорректная дата в имени файла: %s", src)
			return
		}
		full := e.Request.AbsoluteURL(src)
		if bestURL == "" || imageDate.After(bestDate) {
			bestURL = full
			bestDate = imageDate
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Ошибка при запросе %s: %v", r.Request.URL, err)
	})

	if err := c.Visit(w.pageURL); err != nil {
		return fmt.Errorf("посещение страницы: %w", err)
	}
	if bestURL == "" {
		log.Println("Изображений расписания на странице не найдено")
		return nil
	}
	if bestURL == w.lastURL {
		return nil
	}

	if err := w.download(bestURL); err != nil {
		return err
	}
	if err := w.store.SetSchedule(w.dest); err != nil {
		return err
	}
	w.lastURL = bestURL
	log.Printf("Расписание обновлено со страницы: %s (дата: %s)", bestURL, bestDate.Format("2006-01-02"))
	return nil
}

func (w *Watcher) download(rawURL string) error {
	resp, err := http.Get(rawURL)
	if err != nil {
		return fmt.Errorf("загрузка %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("загрузка %s: статус %d", rawURL, resp.StatusCode)
	}
	if dir := filepath.Dir(w.dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}
	out, err := os.Create(w.dest)
	if err != nil {
		return fmt.Errorf("создание файла %s: %w", w.dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("запись файла %s: %w", w.dest, err)
	}
	return nil
}
