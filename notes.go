package main

import "sync"

// SetSchedule перезаписывает ссылку на фото расписания. История не
// хранится: прежний путь просто затирается.
func (s *Store) SetSchedule(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SchedulePhoto = path
	return s.save()
}

// Schedule возвращает путь к текущему фото расписания, если оно загружено.
func (s *Store) Schedule() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.SchedulePhoto, s.doc.SchedulePhoto != ""
}

// AddNote дописывает конспект в конец списка. Операции удаления нет.
func (s *Store) AddNote(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Notes = append(s.doc.Notes, path)
	return s.save()
}

// Notes возвращает копию списка конспектов в порядке добавления.
func (s *Store) Notes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.doc.Notes))
	copy(out, s.doc.Notes)
	return out
}

// Назначение следующего файла от пользователя: расписание или конспект.
type fileKind int

const (
	kindSchedule fileKind = iota
	kindNote
)

// PendingFiles помнит, чего бот ждёт от каждого пользователя после
// /set_schedule или /add_note. У пользователя может быть только одно
// ожидание: повторная команда заменяет прежнее. Флаг живёт до первого
// входящего файла и в документ не сохраняется.
type PendingFiles struct {
	mu      sync.Mutex
	intents map[int64]fileKind
}

func NewPendingFiles() *PendingFiles {
	return &PendingFiles{intents: make(map[int64]fileKind)}
}

// Expect отмечает, что следующий файл от userID надо принять как kind.
func (p *PendingFiles) Expect(userID int64, kind fileKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents[userID] = kind
}

// Take забирает и снимает ожидание. Флаг снимается до обработки файла,
// поэтому и неудачная загрузка его не оставляет.
func (p *PendingFiles) Take(userID int64) (fileKind, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kind, ok := p.intents[userID]
	if ok {
		delete(p.intents, userID)
	}
	return kind, ok
}
