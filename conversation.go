package main

import (
	"strings"
	"sync"
	"time"
)

// Шаги пошагового добавления домашки: предмет → задание → дедлайн.
type convState int

const (
	stateSubject convState = iota
	stateTask
	stateDeadline
)

// draft — незакоммиченная домашка одного пользователя. Живёт только в
// памяти: перезапуск процесса теряет начатые диалоги, но не данные.
type draft struct {
	state   convState
	subject string
	task    string
}

// StepOutcome говорит диспетчеру, что спросить у пользователя дальше.
type StepOutcome int

const (
	OutcomeAskSubject StepOutcome = iota
	OutcomeAskTask
	OutcomeAskDeadline
	OutcomeCommitted
)

// Committed — данные домашки, записанной в каталог на последнем шаге.
type Committed struct {
	Subject  string
	Task     string
	Deadline string
}

// Conversations ведёт диалоги добавления домашки, по одному на
// пользователя. Мьютекс делает создание, шаг и отмену атомарными
// относительно повторных сообщений того же пользователя.
type Conversations struct {
	mu     sync.Mutex
	drafts map[int64]*draft
	store  *Store
	now    func() time.Time
}

func NewConversations(store *Store) *Conversations {
	return &Conversations{
		drafts: make(map[int64]*draft),
		store:  store,
		now:    time.Now,
	}
}

// Start открывает диалог для userID. Не-админу диалог не открывается.
// Повторный /add_homework при активном диалоге сбрасывает черновик и
// начинает с предмета заново — так же ведёт себя повторная команда входа
// у исходного бота.
func (c *Conversations) Start(userID int64) error {
	if !c.store.IsAdmin(userID) {
		return ErrNotAuthorized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[userID] = &draft{state: stateSubject}
	return nil
}

// Active сообщает, ждёт ли бот от пользователя следующий шаг диалога.
func (c *Conversations) Active(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.drafts[userID]
	return ok
}

// Step скармливает диалогу очередное текстовое сообщение.
//
// Пустой текст и нечитаемый дедлайн не съедают сессию: диалог остаётся в
// том же состоянии, а вызывающий получает ErrInvalidInput или
// ErrInvalidDeadline и должен переспросить. Успешный дедлайн коммитит
// запись в каталог и закрывает диалог.
func (c *Conversations) Step(userID int64, text string) (StepOutcome, *Committed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.drafts[userID]
	if !ok {
		return 0, nil, ErrNoSession
	}

	text = strings.TrimSpace(text)
	switch d.state {
	case stateSubject:
		if text == "" {
			return OutcomeAskSubject, nil, ErrInvalidInput
		}
		d.subject = text
		d.state = stateTask
		return OutcomeAskTask, nil, nil

	case stateTask:
		if text == "" {
			return OutcomeAskTask, nil, ErrInvalidInput
		}
		d.task = text
		d.state = stateDeadline
		return OutcomeAskDeadline, nil, nil

	default: // stateDeadline
		if _, err := ParseDeadline(text, c.now().Year()); err != nil {
			return OutcomeAskDeadline, nil, ErrInvalidDeadline
		}
		delete(c.drafts, userID)
		if err := c.store.AddHomework(d.subject, d.task, text); err != nil {
			return OutcomeCommitted, nil, err
		}
		return OutcomeCommitted, &Committed{Subject: d.subject, Task: d.task, Deadline: text}, nil
	}
}

// Cancel закрывает диалог пользователя, если он был.
func (c *Conversations) Cancel(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.drafts[userID]; !ok {
		return false
	}
	delete(c.drafts, userID)
	return true
}
