package main

import "errors"

// Ошибки операций ядра. Обработчики переводят их в ответы пользователю
// через errors.Is, поэтому каждая категория — отдельное sentinel-значение.
var (
	ErrNotAuthorized   = errors.New("недостаточно прав")
	ErrInvalidInput    = errors.New("некорректный ввод")
	ErrNotFound        = errors.New("не найдено")
	ErrAlreadyAdmin    = errors.New("пользователь уже админ")
	ErrNotAdmin        = errors.New("пользователь не является админом")
	ErrSelfRemoval     = errors.New("нельзя удалить себя из админов")
	ErrInvalidDeadline = errors.New("неверный формат дедлайна")
	ErrNoSession       = errors.New("нет активного диалога")
)
