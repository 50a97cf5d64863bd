package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// psql builds Postgres ($n) placeholder queries.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres error codes we translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02" // e.g. malformed uuid
)

// mapError translates driver errors into domain errors, keeping the original in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, constraintMessage(pqErr))
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidArgument, constraintMessage(pqErr))
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidArgument, constraintMessage(pqErr))
		case pgInvalidTextRep:
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidArgument)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func constraintMessage(e *pq.Error) string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Constraint != "" {
		return "violates " + e.Constraint
	}
	return e.Message
}

// ilike returns an OR of case-insensitive substring matches of term over columns.
func ilike(term string, columns ...string) sq.Or {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.ILike{c: pattern})
	}
	return or
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// count runs SELECT COUNT(*) over the same FROM/WHERE as b.
func count(ctx context.Context, db dbtx, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+query+") AS c", args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// reorder writes sort_order = index for each id in table, inside one transaction.
// Every id must exist, otherwise nothing is written.
func reorder(ctx context.Context, db *sql.DB, table string, ids []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for i, id := range ids {
		query, args, err := psql.Update(table).
			Set("sort_order", i).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapError("reorder "+table, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("reorder %s: id %s: %w", table, id, domain.ErrNotFound)
		}
	}
	return tx.Commit()
}

// affected returns ErrNotFound when an UPDATE/DELETE touched no row.
func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
