package credential

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"OrderDeskPlatform/internal/domain"
)

// RowQuerier подмножество *pgxpool.Pool, нужное хранилищу
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore реестр клиентов в таблице PostgreSQL
type PostgresStore struct {
	db    RowQuerier
	query string
}

// NewPostgresStore создает хранилище. Имена таблицы и колонки экранируются
// как идентификаторы, идентификатор клиента передается параметром.
func NewPostgresStore(db RowQuerier, table, column string) *PostgresStore {
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE UPPER(TRIM(%s)) = $1)",
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{column}.Sanitize(),
	)
	return &PostgresStore{db: db, query: query}
}

// Exists проверяет наличие клиента в таблице
func (s *PostgresStore) Exists(ctx context.Context, customerID domain.CustomerID) (bool, error) {
	if customerID.IsZero() {
		return false, nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, s.query, customerID.Key()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check customer: %w", err)
	}
	return exists, nil
}
