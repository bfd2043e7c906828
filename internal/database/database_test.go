package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestConnect_SQLiteMemory(t *testing.T) {
	db, err := Connect("file:database_test?mode=memory&cache=shared", nil)
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u@h/db"))
	assert.True(t, IsPostgres("postgresql://u@h/db"))
	assert.False(t, IsPostgres("favorites.db"))
}

func TestConnect_GormLogsGoThroughZapWithoutNotFoundNoise(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := Connect("file:database_logger_test?mode=memory&cache=shared", zap.New(core))
	require.NoError(t, err)

	type place struct {
		ID   int64
		Name string
	}
	require.NoError(t, db.AutoMigrate(&place{}))
	before := logs.FilterLoggerName("gorm").Len()

	var p place
	err = db.First(&p, 42).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, before, logs.FilterLoggerName("gorm").Len())

	var n int
	err = db.Raw("SELECT count(*) FROM missing_table").Scan(&n).Error
	require.Error(t, err)
	assert.Equal(t, before+1, logs.FilterLoggerName("gorm").Len())
}
