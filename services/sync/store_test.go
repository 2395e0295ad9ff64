package sync

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"Bingearr/models"
	"Bingearr/shared/errs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestUpsertEpisodesCountsNewAndFavorsProfiles(t *testing.T) {
	s, mock := newStore(t)
	episodes := []models.Episode{
		{TMDBID: 5001, EpisodeNumber: 1, SeasonNumber: 2, Title: "Known"},
		{TMDBID: 5002, EpisodeNumber: 2, SeasonNumber: 2, Title: "Fresh"},
	}

	mock.ExpectBegin()
	// Episode 5001 already exists.
	mock.ExpectQuery("SELECT id FROM episodes WHERE tmdb_id").
		WithArgs(5001).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(700))
	mock.ExpectExec("INSERT INTO episodes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Episode 5002 is brand new.
	mock.ExpectQuery("SELECT id FROM episodes WHERE tmdb_id").
		WithArgs(5002).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO episodes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Status rows for both favoriting profiles, in the same transaction.
	mock.ExpectExec("INSERT INTO episode_watch_status").
		WithArgs(10, models.NotWatched, 50).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO episode_watch_status").
		WithArgs(11, models.NotWatched, 50).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	created, err := s.UpsertEpisodes(context.Background(), 50, 1, episodes, []int{10, 11})

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEpisodesRollsBackOnFailure(t *testing.T) {
	s, mock := newStore(t)
	episodes := []models.Episode{
		{TMDBID: 5001, EpisodeNumber: 1},
		{TMDBID: 5002, EpisodeNumber: 2},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM episodes WHERE tmdb_id").
		WithArgs(5001).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO episodes").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.UpsertEpisodes(context.Background(), 50, 1, episodes, nil)

	var pe *errs.PersistenceError
	assert.True(t, errors.As(err, &pe))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertShowWritesReferencesInOneTx(t *testing.T) {
	s, mock := newStore(t)
	show := &models.Show{TMDBID: 900, Title: "Tx", GenreIDs: []int{18}, ServiceIDs: []int{8}}
	genres := []models.Genre{{ID: 18, Name: "Drama"}}
	services := []models.StreamingService{{ID: 8, Name: "Netflix"}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO genres").
		WithArgs(18, "Drama").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO streaming_services").
		WithArgs(8, "Netflix", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO shows").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM show_genres").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO show_genres").
		WithArgs(1, 18).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM show_services").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO show_services").
		WithArgs(1, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.UpsertShow(context.Background(), show, genres, services)

	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertShowTwiceIsIdempotent(t *testing.T) {
	s, mock := newStore(t)
	show := &models.Show{TMDBID: 900, Title: "Same"}

	// Both rounds run the identical single conflict-upsert statement and
	// land on the same row; there is no second insert path.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO shows \(tmdb_id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec("DELETE FROM show_genres").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM show_services").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	first, err := s.UpsertShow(context.Background(), show, nil, nil)
	require.NoError(t, err)
	second, err := s.UpsertShow(context.Background(), show, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSeasonUpdatesNumberOnConflict(t *testing.T) {
	s, mock := newStore(t)
	season := &models.Season{ShowID: 1, TMDBID: 4000, Name: "Part Two", SeasonNumber: 2}

	// An upstream renumbering must land in the stored row; only the ids and
	// the show_id pointer stay fixed on conflict.
	mock.ExpectQuery(`(?s)INSERT INTO seasons.*season_number = EXCLUDED\.season_number`).
		WithArgs(1, 4000, "Part Two", "", 2, 0, "", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(50))

	id, err := s.UpsertSeason(context.Background(), season)

	require.NoError(t, err)
	assert.Equal(t, 50, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnfavoriteShowRemovesHierarchyRows(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM show_watch_status").
		WithArgs(10, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM season_watch_status sws").
		WithArgs(1, 10).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM episode_watch_status ews").
		WithArgs(1, 10).
		WillReturnResult(sqlmock.NewResult(0, 24))
	mock.ExpectCommit()

	require.NoError(t, s.UnfavoriteShow(context.Background(), 10, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnfavoriteShowNotFavorited(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM show_watch_status").
		WithArgs(10, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.UnfavoriteShow(context.Background(), 10, 1)

	assert.True(t, errors.Is(err, errs.ErrNotFavorited))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnfavoriteMovieNotFavorited(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectExec("DELETE FROM movie_watch_status").
		WithArgs(10, 300).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UnfavoriteMovie(context.Background(), 10, 300)
	assert.True(t, errors.Is(err, errs.ErrNotFavorited))
}
