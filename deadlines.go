package main

import (
	"fmt"
	"strings"
	"time"
)

// Дедлайны вводятся без года как "ДД.ММ" (допускаются и одиночные цифры,
// как "5.9"). Год всегда подставляется текущий — запись, сделанная в
// декабре, в январе следующего года в проверку уже не попадёт. Это
// осознанное упрощение, унаследованное от исходного формата данных.
const deadlineLayout = "2.1.2006"

// ParseDeadline проверяет текст дедлайна по календарю указанного года.
// "31.02" или "15.13" — ошибка, "15.06" — 15 июня этого года.
func ParseDeadline(text string, year int) (time.Time, error) {
	text = strings.TrimSpace(text)
	t, err := time.Parse(deadlineLayout, fmt.Sprintf("%s.%d", text, year))
	if err != nil {
		return time.Time{}, ErrInvalidDeadline
	}
	return t, nil
}

// DeadlineLine — задание, у которого завтра дедлайн.
type DeadlineLine struct {
	Subject  string
	Task     string
	Deadline string
}

// DueTomorrow обходит домашку в порядке каталога и возвращает задания,
// дедлайн которых наступает ровно через один день после today. Записи с
// нечитаемым дедлайном молча пропускаются: просроченный формат не должен
// ломать ежедневную проверку. Пустой результат — нормальный ответ
// "дедлайнов нет", а не ошибка.
func (s *Store) DueTomorrow(today time.Time) []DeadlineLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tomorrow := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).AddDate(0, 0, 1)

	var due []DeadlineLine
	for _, block := range s.doc.Homeworks {
		for _, item := range block.Items {
			d, err := ParseDeadline(item.Deadline, today.Year())
			if err != nil {
				continue
			}
			if d.Month() == tomorrow.Month() && d.Day() == tomorrow.Day() && d.Year() == tomorrow.Year() {
				due = append(due, DeadlineLine{Subject: block.Name, Task: item.Task, Deadline: item.Deadline})
			}
		}
	}
	return due
}
