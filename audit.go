package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit пишет журнал обработанных команд в Postgres. Журнал необязателен:
// без DATABASE_URL все методы работают на nil-получателе и ничего не
// делают. Записи best-effort — недоступная база не должна мешать боту
// отвечать.
type Audit struct {
	pool *pgxpool.Pool
}

// OpenAudit подключается к базе и создаёт таблицу журнала. Пустой url
// выключает журнал.
func OpenAudit(ctx context.Context, url string) (*Audit, error) {
	if url == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("подключение к базе: %w", err)
	}
	a := &Audit{pool: pool}
	if err := a.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *Audit) ensureTable(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS bot_log (
        id SERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL,
        command TEXT NOT NULL,
        status TEXT NOT NULL CHECK (status IN ('ok', 'error')),
        error_message TEXT,
        created_at TIMESTAMPTZ DEFAULT now()
    );
    CREATE INDEX IF NOT EXISTS idx_bot_log_user ON bot_log(user_id, created_at);
    `)
	if err != nil {
		return fmt.Errorf("создание таблицы bot_log: %w", err)
	}
	return nil
}

// LogCommand записывает результат одной команды.
func (a *Audit) LogCommand(userID int64, command string, opErr error) {
	if a == nil {
		return
	}
	ctx := context.Background()
	if opErr == nil {
		_, err := a.pool.Exec(ctx, `INSERT INTO bot_log (user_id, command, status) VALUES ($1, $2, 'ok')`, userID, command)
		if err != nil {
			log.Printf("Ошибка записи в bot_log: %v", err)
		}
		return
	}
	_, err := a.pool.Exec(ctx, `INSERT INTO bot_log (user_id, command, status, error_message) VALUES ($1, $2, 'error', $3)`, userID, command, opErr.Error())
	if err != nil {
		log.Printf("Ошибка записи в bot_log: %v", err)
	}
}

// Close освобождает пул соединений.
func (a *Audit) Close() {
	if a != nil {
		a.pool.Close()
	}
}
