package main

import "strings"

// HomeworkLine — строка сквозного списка домашки. Number — производный
// номер для показа и удаления; он пересчитывается на каждый запрос и
// нигде не хранится.
type HomeworkLine struct {
	Number   int
	Subject  string
	Task     string
	Deadline string
}

// AddHomework добавляет задание в конец списка предмета, создавая предмет
// при необходимости, и сохраняет документ.
func (s *Store) AddHomework(subject, task, deadline string) error {
	subject = strings.TrimSpace(subject)
	task = strings.TrimSpace(task)
	if subject == "" || task == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry := HomeworkEntry{Task: task, Deadline: deadline}
	for i := range s.doc.Homeworks {
		if s.doc.Homeworks[i].Name == subject {
			s.doc.Homeworks[i].Items = append(s.doc.Homeworks[i].Items, entry)
			return s.save()
		}
	}
	s.doc.Homeworks = append(s.doc.Homeworks, SubjectBlock{Name: subject, Items: []HomeworkEntry{entry}})
	return s.save()
}

// ListHomework возвращает всю домашку со сквозной нумерацией: предметы в
// порядке добавления, задания внутри предмета — тоже, номера с единицы
// без пропусков.
func (s *Store) ListHomework() []HomeworkLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return flattenHomeworks(s.doc.Homeworks)
}

// RemoveHomework удаляет задание по его сквозному номеру. Нумерация
// пересчитывается заново под write-lock, поэтому номер действителен
// только внутри этого вызова; параллельные удаления сериализуются тем же
// локом. Предмет, оставшийся без заданий, убирается из документа.
func (s *Store) RemoveHomework(number int) (HomeworkLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 1
	for bi := range s.doc.Homeworks {
		block := &s.doc.Homeworks[bi]
		for ii := range block.Items {
			if n != number {
				n++
				continue
			}
			removed := HomeworkLine{
				Number:   number,
				Subject:  block.Name,
				Task:     block.Items[ii].Task,
				Deadline: block.Items[ii].Deadline,
			}
			block.Items = append(block.Items[:ii], block.Items[ii+1:]...)
			if len(block.Items) == 0 {
				s.doc.Homeworks = append(s.doc.Homeworks[:bi], s.doc.Homeworks[bi+1:]...)
			}
			if err := s.save(); err != nil {
				return HomeworkLine{}, err
			}
			return removed, nil
		}
	}
	return HomeworkLine{}, ErrNotFound
}

func flattenHomeworks(blocks []SubjectBlock) []HomeworkLine {
	var lines []HomeworkLine
	n := 1
	for _, block := range blocks {
		for _, item := range block.Items {
			lines = append(lines, HomeworkLine{
				Number:   n,
				Subject:  block.Name,
				Task:     item.Task,
				Deadline: item.Deadline,
			})
			n++
		}
	}
	return lines
}
