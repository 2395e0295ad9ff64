package watchstatus

import (
	"context"
	"errors"
	"testing"

	"Bingearr/models"
	"Bingearr/shared/errs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngine(db), mock
}

func TestDerive(t *testing.T) {
	_, ok := Derive(nil)
	assert.False(t, ok, "no children leaves the parent untouched")

	got, ok := Derive([]models.WatchStatus{models.Watched})
	assert.True(t, ok)
	assert.Equal(t, models.Watched, got)

	got, ok = Derive([]models.WatchStatus{models.NotWatched})
	assert.True(t, ok)
	assert.Equal(t, models.NotWatched, got)

	got, ok = Derive([]models.WatchStatus{models.Watched, models.NotWatched})
	assert.True(t, ok)
	assert.Equal(t, models.Watching, got, "mixed children mean partial progress")
}

func TestSetEpisodeStatusRollsUpSeasonAndShow(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE episode_watch_status").
		WithArgs(models.Watched, 10, 5001).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT season_id, show_id FROM episodes").
		WithArgs(5001).
		WillReturnRows(sqlmock.NewRows([]string{"season_id", "show_id"}).AddRow(50, 1))

	// Season rollup: the last unwatched episode just flipped, every episode
	// is WATCHED now, so the season becomes WATCHED.
	mock.ExpectQuery("SELECT DISTINCT ews.status").
		WithArgs(10, 50).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("WATCHED"))
	mock.ExpectExec("UPDATE season_watch_status").
		WithArgs(models.Watched, 10, 50).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Show rollup: another season is still in progress, so the show lands
	// on WATCHING.
	mock.ExpectQuery("SELECT DISTINCT sws.status").
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("WATCHED").AddRow("WATCHING"))
	mock.ExpectExec("UPDATE show_watch_status").
		WithArgs(models.Watching, 10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := e.SetEpisodeStatus(context.Background(), 10, 5001, models.Watched)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetEpisodeStatusNotFavorited(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE episode_watch_status").
		WithArgs(models.Watched, 10, 5001).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := e.SetEpisodeStatus(context.Background(), 10, 5001, models.Watched)

	assert.True(t, errors.Is(err, errs.ErrNotFavorited))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetShowStatusRecursiveRollsOutInOneTx(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE show_watch_status").
		WithArgs(models.Watched, 10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE season_watch_status sws").
		WithArgs(models.Watched, 1, 10).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE episode_watch_status ews").
		WithArgs(models.Watched, 1, 10).
		WillReturnResult(sqlmock.NewResult(0, 24))
	mock.ExpectCommit()

	err := e.SetShowStatus(context.Background(), 10, 1, models.Watched, true)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetShowStatusNonRecursiveLeavesChildren(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE show_watch_status").
		WithArgs(models.Watching, 10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := e.SetShowStatus(context.Background(), 10, 1, models.Watching, false)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSeasonStatusRecursive(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE season_watch_status").
		WithArgs(models.Watched, 10, 50).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE episode_watch_status ews").
		WithArgs(models.Watched, 50, 10).
		WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectQuery("SELECT show_id FROM seasons").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"show_id"}).AddRow(1))
	mock.ExpectQuery("SELECT DISTINCT sws.status").
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("WATCHED"))
	mock.ExpectExec("UPDATE show_watch_status").
		WithArgs(models.Watched, 10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := e.SetSeasonStatus(context.Background(), 10, 50, models.Watched, true)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupSeasonWithNoChildrenIsNoOp(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT ews.status").
		WithArgs(10, 50).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	// No UPDATE expected.
	mock.ExpectCommit()

	err := e.RollupSeason(context.Background(), 10, 50)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMovieStatus(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectExec("UPDATE movie_watch_status").
		WithArgs(models.Watched, 10, 300).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, e.SetMovieStatus(context.Background(), 10, 300, models.Watched))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMovieStatusNotFavorited(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectExec("UPDATE movie_watch_status").
		WithArgs(models.Watched, 10, 300).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := e.SetMovieStatus(context.Background(), 10, 300, models.Watched)
	assert.True(t, errors.Is(err, errs.ErrNotFavorited))
}

func TestDowngradeForNewEpisodes(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE season_watch_status").
		WithArgs(models.Watching, 50, models.Watched).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE show_watch_status").
		WithArgs(models.Watching, 1, models.Watched).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := e.DowngradeForNewEpisodes(context.Background(), 50, 1)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceErrorRollsBack(t *testing.T) {
	e, mock := newEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE show_watch_status").
		WithArgs(models.Watched, 10, 1).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := e.SetShowStatus(context.Background(), 10, 1, models.Watched, false)

	var pe *errs.PersistenceError
	assert.True(t, errors.As(err, &pe))
	require.NoError(t, mock.ExpectationsWereMet())
}
