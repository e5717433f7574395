package consumer

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolverWithMock(t *testing.T) (*PostgresResolver, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresResolver{db: mock}, mock
}

func TestResolveBuildingTokenShortCandidate(t *testing.T) {
	resolver, mock := newResolverWithMock(t)

	// A candidate shorter than the 8-character cap still matches a longer
	// canonical token: the canonical side is cut to the candidate's length.
	mock.ExpectQuery(`LOWER\(LEFT\(token, length\(\$1\)\)\) = \$1 ORDER BY token`).
		WithArgs("bt-12").
		WillReturnRows(pgxmock.NewRows([]string{"token"}).AddRow("BT-12-A7X9"))

	token, ok, err := resolver.ResolveBuildingToken(context.Background(), "BT-12")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BT-12-A7X9", token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveEnumeratorTruncatesLongCandidate(t *testing.T) {
	resolver, mock := newResolverWithMock(t)

	mock.ExpectQuery(`SELECT id FROM enumerators`).
		WithArgs("enum-kat").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("enum-kathmandu-021"))

	id, ok, err := resolver.ResolveEnumerator(context.Background(), "ENUM-KATHMANDU-021-EXTRA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "enum-kathmandu-021", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveByPrefixMultiMatchKeepsFirst(t *testing.T) {
	resolver, mock := newResolverWithMock(t)

	// Rows arrive ordered; the first canonical id wins the tie.
	mock.ExpectQuery(`SELECT token FROM building_tokens`).
		WithArgs("bt-00045").
		WillReturnRows(pgxmock.NewRows([]string{"token"}).
			AddRow("BT-000451-ward1").
			AddRow("BT-000451-ward3"))

	token, ok, err := resolver.ResolveBuildingToken(context.Background(), "BT-000451-WARDX")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BT-000451-ward1", token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveByPrefixMiss(t *testing.T) {
	resolver, mock := newResolverWithMock(t)

	mock.ExpectQuery(`SELECT token FROM building_tokens`).
		WithArgs("bt-nope").
		WillReturnRows(pgxmock.NewRows([]string{"token"}))

	_, ok, err := resolver.ResolveBuildingToken(context.Background(), "BT-NOPE")
	require.NoError(t, err)
	assert.False(t, ok)

	// Blank candidates never reach the registry.
	_, ok, err = resolver.ResolveBuildingToken(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func beginMockTx(t *testing.T) (pgxmock.PgxPoolIface, context.Context, func() error) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectBegin()
	return mock, context.Background(), mock.ExpectationsWereMet
}

func TestStartAreaSurveyTransitions(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	mock.ExpectQuery(`SELECT status FROM survey_areas WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(AreaStatusNewlyAssigned))
	mock.ExpectQuery(`SELECT assigned_area_id FROM enumerators`).
		WithArgs("enum-kathmandu-021").
		WillReturnRows(pgxmock.NewRows([]string{"assigned_area_id"}).AddRow(int64(42)))
	mock.ExpectExec(`UPDATE survey_areas SET status = \$1 WHERE id = \$2`).
		WithArgs(AreaStatusOngoingSurvey, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, startAreaSurvey(ctx, tx, 42, "enum-kathmandu-021"))
	assert.NoError(t, done())
}

func TestStartAreaSurveySkipsWhenNotNewlyAssigned(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	// Status already advanced: no enumerator read, no update.
	mock.ExpectQuery(`SELECT status FROM survey_areas`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(AreaStatusOngoingSurvey))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, startAreaSurvey(ctx, tx, 42, "enum-kathmandu-021"))
	assert.NoError(t, done())
}

func TestStartAreaSurveySkipsWrongEnumerator(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	// The resolved enumerator is assigned elsewhere: the area stays put.
	mock.ExpectQuery(`SELECT status FROM survey_areas`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(AreaStatusNewlyAssigned))
	mock.ExpectQuery(`SELECT assigned_area_id FROM enumerators`).
		WithArgs("enum-elsewhere").
		WillReturnRows(pgxmock.NewRows([]string{"assigned_area_id"}).AddRow(int64(99)))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, startAreaSurvey(ctx, tx, 42, "enum-elsewhere"))
	assert.NoError(t, done())
}

func TestStartAreaSurveySkipsUnassignedEnumerator(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	mock.ExpectQuery(`SELECT status FROM survey_areas`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(AreaStatusNewlyAssigned))
	mock.ExpectQuery(`SELECT assigned_area_id FROM enumerators`).
		WithArgs("enum-floating").
		WillReturnRows(pgxmock.NewRows([]string{"assigned_area_id"}).AddRow(nil))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, startAreaSurvey(ctx, tx, 42, "enum-floating"))
	assert.NoError(t, done())
}

func TestStartAreaSurveyMissingArea(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	mock.ExpectQuery(`SELECT status FROM survey_areas`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, startAreaSurvey(ctx, tx, 7, "enum-any"))
	assert.NoError(t, done())
}

func TestAllocateTokenGuard(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	// The status guard is in the statement itself; a token already
	// allocated matches zero rows and the call stays a no-op.
	mock.ExpectExec(`UPDATE building_tokens SET status = 'allocated'.*WHERE token = \$1 AND status = 'unallocated'`).
		WithArgs("BT-12-A7X9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, AllocateToken(ctx, tx, "BT-12-A7X9"))
	assert.NoError(t, done())
}

func TestAllocateTokenError(t *testing.T) {
	mock, ctx, done := beginMockTx(t)

	mock.ExpectExec(`UPDATE building_tokens`).
		WithArgs("BT-12-A7X9").
		WillReturnError(fmt.Errorf("connection reset"))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	err = AllocateToken(ctx, tx, "BT-12-A7X9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, done())
}
