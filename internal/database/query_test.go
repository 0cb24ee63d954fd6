package database

import (
	"testing"

	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilderPostgres(t *testing.T) {
	sql, args, err := Select("users", DialectPostgres).
		Columns("id", "name").
		Where("active", "=", true).
		Where("age", ">=", 18).
		OrderBy("created_at", Desc).
		Limit(20).
		Offset(40).
		Build()

	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "name" FROM "users" WHERE "active" = $1 AND "age" >= $2 ORDER BY "created_at" DESC LIMIT $3 OFFSET $4`,
		sql)
	assert.Equal(t, []any{true, 18, 20, 40}, args)
}

func TestSelectBuilderMySQL(t *testing.T) {
	sql, args, err := Select("orders", DialectMySQL).
		Where("status", "=", "paid").
		Limit(5).
		Build()

	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "orders" WHERE "status" = ? LIMIT ?`, sql)
	assert.Equal(t, []any{"paid", 5}, args)
}

func TestSelectBuilderDefaults(t *testing.T) {
	sql, args, err := Select("events", DialectPostgres).Build()

	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "events"`, sql)
	assert.Empty(t, args)
}

func TestSelectBuilderRejectsUnknownOperator(t *testing.T) {
	_, _, err := Select("users", DialectPostgres).
		Where("name", "; DROP TABLE users; --", "x").
		Build()

	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestSelectBuilderQuotesIdentifiers(t *testing.T) {
	sql, _, err := Select(`us"ers`, DialectPostgres).
		Columns("order").
		Build()

	require.NoError(t, err)
	assert.Equal(t, `SELECT "order" FROM "us""ers"`, sql)
}
