package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError("op", nil))
	assert.True(t, errors.Is(mapError("op", sql.ErrNoRows), domain.ErrNotFound))
	assert.True(t, errors.Is(mapError("op", &pq.Error{Code: "23505", Detail: "Key (name)=(x) already exists."}), domain.ErrConflict))
	assert.True(t, errors.Is(mapError("op", &pq.Error{Code: "23503"}), domain.ErrInvalidArgument))
	assert.True(t, errors.Is(mapError("op", &pq.Error{Code: "22P02"}), domain.ErrInvalidArgument))

	other := errors.New("boom")
	err := mapError("op", other)
	assert.True(t, errors.Is(err, other))
	assert.Equal(t, "op: boom", err.Error())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}

func TestReorder_RollsBackOnUnknownID(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE brands SET sort_order = \$1 WHERE id = \$2`).
		WithArgs(0, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE brands SET sort_order = \$1 WHERE id = \$2`).
		WithArgs(1, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := reorder(context.Background(), db, "brands", []string{"b1", "missing"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorder_Commits(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE menu_groups SET sort_order`).WithArgs(0, "g2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE menu_groups SET sort_order`).WithArgs(1, "g1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, reorder(context.Background(), db, "menu_groups", []string{"g2", "g1"}))
	require.NoError(t, mock.ExpectationsWereMet())
}
