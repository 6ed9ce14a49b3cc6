package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasnasmay/altess-final-sub004/src/db/dbtest"
)

func TestDB(t *testing.T) {
	gormDB, _ := dbtest.NewMockDB(t)
	NewDB(gormDB)
	t.Cleanup(func() { NewDB(nil) })

	assert.Same(t, gormDB, GetDb())
	assert.Equal(t, "postgres", GetDb().Name())
}

func TestConfigurePool(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "7")
	gormDB, _ := dbtest.NewMockDB(t)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)

	ConfigurePool(sqlDB)
	assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
}
