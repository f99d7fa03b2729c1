package main

import (
	"errors"
	"testing"
)

func TestConversation_NonAdminDenied(t *testing.T) {
	s := newTestStore(t)
	c := NewConversations(s)

	if err := c.Start(99); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("ожидалась ErrNotAuthorized, получено %v", err)
	}
	if c.Active(99) {
		t.Error("диалог не должен был открыться")
	}
	if _, _, err := c.Step(99, "Физика"); !errors.Is(err, ErrNoSession) {
		t.Errorf("ожидалась ErrNoSession, получено %v", err)
	}
}

func TestConversation_FullFlow(t *testing.T) {
	s := newTestStore(t)
	c := NewConversations(s)

	if err := c.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.Active(1) {
		t.Fatal("диалог должен быть активен")
	}

	outcome, _, err := c.Step(1, "Физика")
	if err != nil || outcome != OutcomeAskTask {
		t.Fatalf("шаг предмета: outcome=%v err=%v", outcome, err)
	}
	outcome, _, err = c.Step(1, "параграф 12, задачи 1-5")
	if err != nil || outcome != OutcomeAskDeadline {
		t.Fatalf("шаг задания: outcome=%v err=%v", outcome, err)
	}

	// Невалидная дата не съедает сессию и не трогает каталог
	outcome, _, err = c.Step(1, "31.02")
	if !errors.Is(err, ErrInvalidDeadline) || outcome != OutcomeAskDeadline {
		t.Fatalf("невалидный дедлайн: outcome=%v err=%v", outcome, err)
	}
	if !c.Active(1) {
		t.Fatal("диалог должен остаться активным после невалидной даты")
	}
	if len(s.ListHomework()) != 0 {
		t.Fatal("каталог не должен измениться после невалидной даты")
	}

	// Валидная дата коммитит ровно одну запись и закрывает диалог
	outcome, committed, err := c.Step(1, "15.06")
	if err != nil || outcome != OutcomeCommitted {
		t.Fatalf("коммит: outcome=%v err=%v", outcome, err)
	}
	if committed == nil || committed.Subject != "Физика" || committed.Task != "параграф 12, задачи 1-5" || committed.Deadline != "15.06" {
		t.Errorf("неожиданные данные коммита: %+v", committed)
	}
	if c.Active(1) {
		t.Error("диалог должен закрыться после коммита")
	}

	lines := s.ListHomework()
	if len(lines) != 1 {
		t.Fatalf("ожидалась одна запись, получено %d", len(lines))
	}
	if lines[0].Subject != "Физика" || lines[0].Deadline != "15.06" {
		t.Errorf("в каталоге не то, что коммитили: %+v", lines[0])
	}
}

func TestConversation_EmptyTextReprompts(t *testing.T) {
	s := newTestStore(t)
	c := NewConversations(s)
	c.Start(1)

	outcome, _, err := c.Step(1, "   ")
	if !errors.Is(err, ErrInvalidInput) || outcome != OutcomeAskSubject {
		t.Fatalf("пустой предмет: outcome=%v err=%v", outcome, err)
	}
	if _, _, err := c.Step(1, "Физика"); err != nil {
		t.Fatalf("валидный предмет после переспроса: %v", err)
	}
	outcome, _, err = c.Step(1, "")
	if !errors.Is(err, ErrInvalidInput) || outcome != OutcomeAskTask {
		t.Fatalf("пустое задание: outcome=%v err=%v", outcome, err)
	}
}

func TestConversation_Cancel(t *testing.T) {
	s := newTestStore(t)
	c := NewConversations(s)
	c.Start(1)
	c.Step(1, "Физика")

	if !c.Cancel(1) {
		t.Fatal("Cancel должен вернуть true для активного диалога")
	}
	if c.Active(1) {
		t.Error("диалог должен закрыться после отмены")
	}
	if c.Cancel(1) {
		t.Error("повторный Cancel должен вернуть false")
	}
	if len(s.ListHomework()) != 0 {
		t.Error("отменённый диалог не должен был ничего записать")
	}
}

// Повторный /add_homework при активном диалоге сбрасывает черновик и
// начинает заново с предмета.
func TestConversation_RestartResetsDraft(t *testing.T) {
	s := newTestStore(t)
	c := NewConversations(s)

	c.Start(1)
	c.Step(1, "Физика")
	c.Step(1, "старое задание")

	if err := c.Start(1); err != nil {
		t.Fatalf("повторный Start: %v", err)
	}
	c.Step(1, "Алгебра")
	c.Step(1, "новое задание")
	_, committed, err := c.Step(1, "15.06")
	if err != nil {
		t.Fatalf("коммит: %v", err)
	}
	if committed.Subject != "Алгебра" || committed.Task != "новое задание" {
		t.Errorf("черновик не сбросился: %+v", committed)
	}
}

// Диалоги разных пользователей независимы.
func TestConversation_PerUserIsolation(t *testing.T) {
	s := newTestStore(t)
	c := NewConversations(s)

	c.Start(1)
	c.Start(2)
	c.Step(1, "Физика")
	c.Step(2, "История")

	if c.Cancel(1); c.Active(1) {
		t.Error("диалог пользователя 1 должен закрыться")
	}
	if !c.Active(2) {
		t.Error("диалог пользователя 2 должен остаться активным")
	}
}
