package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitPostgresNoDSN(t *testing.T) {
	pool, err := InitPostgres(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, pool, "no dsn means no pool")
}

func TestInitPostgresInvalidDSN(t *testing.T) {
	pool, err := InitPostgres(context.Background(), "postgres://user:pass@%zz/db")
	assert.Error(t, err)
	assert.Nil(t, pool)
}
