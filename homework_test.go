package main

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestAddHomework_ListIncludesEntry(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddHomework("Физика", "параграф 12", "15.06"); err != nil {
		t.Fatalf("AddHomework: %v", err)
	}

	lines := s.ListHomework()
	if len(lines) != 1 {
		t.Fatalf("ожидалась одна запись, получено %d", len(lines))
	}
	want := HomeworkLine{Number: 1, Subject: "Физика", Task: "параграф 12", Deadline: "15.06"}
	if lines[0] != want {
		t.Errorf("ожидалось %+v, получено %+v", want, lines[0])
	}
}

func TestAddHomework_EmptyInput(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddHomework("", "задание", "15.06"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("пустой предмет: ожидалась ErrInvalidInput, получено %v", err)
	}
	if err := s.AddHomework("Физика", "   ", "15.06"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("пустое задание: ожидалась ErrInvalidInput, получено %v", err)
	}
	if lines := s.ListHomework(); len(lines) != 0 {
		t.Errorf("каталог должен остаться пустым, получено %v", lines)
	}
}

func TestListHomework_ContiguousNumbering(t *testing.T) {
	s := newTestStore(t)
	entries := []struct{ subject, task string }{
		{"Физика", "п.12"},
		{"Алгебра", "№ 301"},
		{"Физика", "п.13"},
		{"История", "конспект"},
		{"Алгебра", "№ 302"},
	}
	for _, e := range entries {
		if err := s.AddHomework(e.subject, e.task, "15.06"); err != nil {
			t.Fatalf("AddHomework: %v", err)
		}
	}

	lines := s.ListHomework()
	if len(lines) != len(entries) {
		t.Fatalf("ожидалось %d строк, получено %d", len(entries), len(lines))
	}
	for i, line := range lines {
		if line.Number != i+1 {
			t.Errorf("позиция %d: ожидался номер %d, получен %d", i, i+1, line.Number)
		}
	}
	// Предметы идут в порядке первого появления, задания внутри — в
	// порядке добавления
	wantSubjects := []string{"Физика", "Физика", "Алгебра", "Алгебра", "История"}
	for i, want := range wantSubjects {
		if lines[i].Subject != want {
			t.Errorf("позиция %d: ожидался предмет %q, получен %q", i, want, lines[i].Subject)
		}
	}
}

func TestListHomework_Idempotent(t *testing.T) {
	s := newTestStore(t)
	s.AddHomework("Физика", "п.12", "15.06")
	s.AddHomework("Алгебра", "№ 301", "16.06")

	first := s.ListHomework()
	second := s.ListHomework()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("повторный список отличается: %v vs %v", first, second)
	}
}

func TestRemoveHomework(t *testing.T) {
	s := newTestStore(t)
	s.AddHomework("Физика", "п.12", "15.06")
	s.AddHomework("Физика", "п.13", "16.06")
	s.AddHomework("Алгебра", "№ 301", "17.06")

	removed, err := s.RemoveHomework(2)
	if err != nil {
		t.Fatalf("RemoveHomework: %v", err)
	}
	if removed.Task != "п.13" || removed.Subject != "Физика" {
		t.Errorf("удалена не та запись: %+v", removed)
	}

	lines := s.ListHomework()
	if len(lines) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(lines))
	}
	for _, line := range lines {
		if line.Task == "п.13" {
			t.Error("удалённая запись осталась в списке")
		}
	}
	// Нумерация пересчитана: бывший третий номер стал вторым
	if lines[1].Task != "№ 301" || lines[1].Number != 2 {
		t.Errorf("ожидался '№ 301' под номером 2, получено %+v", lines[1])
	}
}

func TestRemoveHomework_PrunesEmptySubject(t *testing.T) {
	s := newTestStore(t)
	s.AddHomework("Физика", "п.12", "15.06")
	s.AddHomework("Алгебра", "№ 301", "16.06")

	if _, err := s.RemoveHomework(1); err != nil {
		t.Fatalf("RemoveHomework: %v", err)
	}
	for _, line := range s.ListHomework() {
		if line.Subject == "Физика" {
			t.Error("предмет без заданий должен был исчезнуть")
		}
	}
}

func TestRemoveHomework_NotFound(t *testing.T) {
	s := newTestStore(t)
	s.AddHomework("Физика", "п.12", "15.06")

	for _, n := range []int{0, -1, 2, 100} {
		if _, err := s.RemoveHomework(n); !errors.Is(err, ErrNotFound) {
			t.Errorf("номер %d: ожидалась ErrNotFound, получено %v", n, err)
		}
	}
	if len(s.ListHomework()) != 1 {
		t.Error("каталог не должен был измениться")
	}
}

// Параллельные удаления сериализуются: каждая запись удаляется не более
// одного раза, итоговый размер каталога равен исходному минус число
// успешных удалений.
func TestRemoveHomework_Concurrent(t *testing.T) {
	s := newTestStore(t)
	const total = 20
	for i := 0; i < total; i++ {
		if err := s.AddHomework("Физика", "задание", "15.06"); err != nil {
			t.Fatalf("AddHomework: %v", err)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < total*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.RemoveHomework(1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != total {
		t.Errorf("ожидалось %d успешных удалений, получено %d", total, succeeded)
	}
	if left := len(s.ListHomework()); left != 0 {
		t.Errorf("каталог должен опустеть, осталось %d", left)
	}
}
