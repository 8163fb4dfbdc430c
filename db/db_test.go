package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

type rowsResult int64

func (r rowsResult) LastInsertId() (int64, error) { return 0, nil }
func (r rowsResult) RowsAffected() (int64, error) { return int64(r), nil }

func TestMapErr(t *testing.T) {
	require.NoError(t, mapErr(nil))
	require.ErrorIs(t, mapErr(sql.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, mapErr(fmt.Errorf("scan: %w", sql.ErrNoRows)), ErrNotFound)

	dup := mapErr(&pq.Error{Code: "23505", Constraint: "vendors_email_key"})
	require.ErrorIs(t, dup, ErrDuplicate)
	require.Contains(t, dup.Error(), "vendors_email_key")

	fk := &pq.Error{Code: "23503"}
	require.Equal(t, error(fk), mapErr(fk))
}

func TestExpectRows(t *testing.T) {
	require.NoError(t, expectRows(rowsResult(1), nil))
	require.ErrorIs(t, expectRows(rowsResult(0), nil), ErrNotFound)

	boom := errors.New("connection reset")
	require.ErrorIs(t, expectRows(nil, boom), boom)
}
