package repositories

import (
	"database/sql/driver"
	"testing"

	"linkpage/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return database.NewWithGorm(gdb), mock
}

// jsonArg matches any argument and records JSON payloads passed to the driver.
type jsonArg struct {
	captured *[]string
}

func (a jsonArg) Match(v driver.Value) bool {
	switch value := v.(type) {
	case string:
		*a.captured = append(*a.captured, value)
	case []byte:
		*a.captured = append(*a.captured, string(value))
	}
	return true
}
