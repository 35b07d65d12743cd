package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// withTx открывает транзакцию, выполняет fn и коммитит при успехе.
// При ошибке или панике транзакция откатывается, паника пробрасывается дальше
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(tx)
	return err
}

// queryPaged выполняет списочный запрос с учетом соглашения limit = 0 -
// "без пагинации": LIMIT добавляется к запросу только при положительном limit
func queryPaged(ctx context.Context, pool *pgxpool.Pool, query string, args []interface{}, limit, offset int) (pgx.Rows, error) {
	n := len(args)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", n+1)
		args = append(args, offset)
	}
	return pool.Query(ctx, query, args...)
}
