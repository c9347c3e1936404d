package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createTrackingSQL = regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")
	checkVersionSQL   = regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")
	recordVersionSQL  = regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"002_variants.up.sql":   {Data: []byte("CREATE TABLE sylius_product_variant (id BIGINT)")},
		"001_products.up.sql":   {Data: []byte("CREATE TABLE sylius_product (id BIGINT)")},
		"001_products.down.sql": {Data: []byte("DROP TABLE sylius_product")},
		"README.md":             {Data: []byte("not a migration")},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestMigrationVersions_SortedUpOnly(t *testing.T) {
	versions, err := migrationVersions(testMigrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_products.up.sql", "002_variants.up.sql"}, versions)
}

func TestRunMigrations_AppliesPending(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(createTrackingSQL).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	mock.ExpectQuery(checkVersionSQL).WithArgs("001_products.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(checkVersionSQL).WithArgs("002_variants.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE sylius_product_variant")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(recordVersionSQL).WithArgs("002_variants.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := RunMigrations(context.Background(), mock, testMigrations(), quietLogger())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SQLErrorRollsBackWithoutRetry(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(createTrackingSQL).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(checkVersionSQL).WithArgs("001_products.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE sylius_product")).
		WillReturnError(errors.New("syntax error at or near TABLE"))
	mock.ExpectRollback()

	err := RunMigrations(context.Background(), mock, testMigrations(), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 001_products.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_TrackingTableError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(createTrackingSQL).WillReturnError(errors.New("permission denied for schema public"))

	err := RunMigrations(context.Background(), mock, testMigrations(), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create schema_migrations table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_CommitError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(createTrackingSQL).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(checkVersionSQL).WithArgs("001_products.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE sylius_product")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(recordVersionSQL).WithArgs("001_products.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
	mock.ExpectRollback()

	err := RunMigrations(context.Background(), mock, testMigrations(), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit migration 001_products.up.sql")
}
