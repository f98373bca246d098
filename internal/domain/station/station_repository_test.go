package station

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

func newMockedRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewStationRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil))), mockPool
}

func TestListStationsUnassignedOnly(t *testing.T) {
	repo, mockPool := newMockedRepo(t)

	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT id, code, assigned FROM stations")).
		WithArgs(false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code", "assigned"}).
			AddRow("id1", "LAX0001", false).
			AddRow("id2", "LAX0002", false))

	stations, err := repo.ListStations(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "LAX0001", stations[0].Code)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetStationRejectsMalformedID(t *testing.T) {
	repo, _ := newMockedRepo(t)

	_, err := repo.GetStation(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestCreateStationNormalizesCode(t *testing.T) {
	repo, mockPool := newMockedRepo(t)

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO stations")).
		WithArgs("LAX0001").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("id1"))

	st, err := repo.CreateStation(context.Background(), "  lax0001 ")
	require.NoError(t, err)
	assert.Equal(t, "LAX0001", st.Code)
	assert.False(t, st.Assigned)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCreateStationDuplicateCode(t *testing.T) {
	repo, mockPool := newMockedRepo(t)

	// ON CONFLICT DO NOTHING yields no row for a duplicate.
	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO stations")).
		WithArgs("LAX0001").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.CreateStation(context.Background(), "LAX0001")
	assert.ErrorIs(t, err, types.ErrConflict)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCreateStationBlankCode(t *testing.T) {
	repo, _ := newMockedRepo(t)

	_, err := repo.CreateStation(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestSetAssignedTxMissingStation(t *testing.T) {
	repo, mockPool := newMockedRepo(t)

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta("UPDATE stations")).
		WithArgs(true, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockPool.ExpectRollback()

	tx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	err = repo.SetAssignedTx(context.Background(), tx, "ghost", true)
	assert.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, tx.Rollback(context.Background()))
	require.NoError(t, mockPool.ExpectationsWereMet())
}
