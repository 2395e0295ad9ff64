package sync

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"Bingearr/models"
	"Bingearr/shared/errs"
)

// Store is the Postgres persistence layer for catalog content. All multi-row
// writes run inside a transaction; tmdb_id is the conflict key everywhere and
// hierarchy pointers are never rewritten on conflict.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Persistence(op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("Rollback failed", "op", op, "error", rbErr)
		}
		if errors.Is(err, errs.ErrNotFavorited) {
			return err
		}
		return errs.Persistence(op, err)
	}
	return errs.Persistence(op, tx.Commit())
}

func upsertGenresTx(ctx context.Context, tx *sql.Tx, genres []models.Genre) error {
	for _, g := range genres {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO genres (id, name) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			g.ID, g.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

func upsertServicesTx(ctx context.Context, tx *sql.Tx, services []models.StreamingService) error {
	for _, sv := range services {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO streaming_services (id, name, logo_path) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, logo_path = EXCLUDED.logo_path`,
			sv.ID, sv.Name, sv.LogoPath)
		if err != nil {
			return err
		}
	}
	return nil
}

func rebuildJoinTx(ctx context.Context, tx *sql.Tx, table, ownerCol, refCol string, ownerID int, refIDs []int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+ownerCol+` = $1`, ownerID); err != nil {
		return err
	}
	for _, id := range refIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerCol+`, `+refCol+`) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			ownerID, id)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpsertShow writes the show row plus its genre and streaming-service
// references in one transaction and returns the internal show id.
func (s *Store) UpsertShow(ctx context.Context, show *models.Show, genres []models.Genre, services []models.StreamingService) (int, error) {
	op := "store: upsert show"
	var id int
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		if err := upsertGenresTx(ctx, tx, genres); err != nil {
			return err
		}
		if err := upsertServicesTx(ctx, tx, services); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO shows (tmdb_id, title, overview, release_date, poster_path, backdrop_path,
				user_rating, content_rating, season_count, episode_count, in_production,
				last_air_date, next_air_date, network, status, show_type, raw_metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			 ON CONFLICT (tmdb_id) DO UPDATE SET
				title = EXCLUDED.title,
				overview = EXCLUDED.overview,
				release_date = EXCLUDED.release_date,
				poster_path = EXCLUDED.poster_path,
				backdrop_path = EXCLUDED.backdrop_path,
				user_rating = EXCLUDED.user_rating,
				content_rating = EXCLUDED.content_rating,
				season_count = EXCLUDED.season_count,
				episode_count = EXCLUDED.episode_count,
				in_production = EXCLUDED.in_production,
				last_air_date = EXCLUDED.last_air_date,
				next_air_date = EXCLUDED.next_air_date,
				network = EXCLUDED.network,
				status = EXCLUDED.status,
				show_type = EXCLUDED.show_type,
				raw_metadata = EXCLUDED.raw_metadata,
				updated_at = CURRENT_TIMESTAMP
			 RETURNING id`,
			show.TMDBID, show.Title, show.Overview, show.ReleaseDate, show.PosterPath,
			show.BackdropPath, show.UserRating, show.ContentRating, show.SeasonCount,
			show.EpisodeCount, show.InProduction, show.LastAirDate, show.NextAirDate,
			show.Network, show.Status, show.ShowType, show.RawMetadata).Scan(&id)
		if err != nil {
			return err
		}
		if err := rebuildJoinTx(ctx, tx, "show_genres", "show_id", "genre_id", id, show.GenreIDs); err != nil {
			return err
		}
		return rebuildJoinTx(ctx, tx, "show_services", "show_id", "service_id", id, show.ServiceIDs)
	})
	return id, err
}

// UpsertSeason writes one season row. The show_id pointer is set on insert
// only; conflicts never re-parent a season.
func (s *Store) UpsertSeason(ctx context.Context, season *models.Season) (int, error) {
	op := "store: upsert season"
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO seasons (show_id, tmdb_id, name, overview, season_number, episode_count, poster_path, air_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (tmdb_id) DO UPDATE SET
			name = EXCLUDED.name,
			overview = EXCLUDED.overview,
			season_number = EXCLUDED.season_number,
			episode_count = EXCLUDED.episode_count,
			poster_path = EXCLUDED.poster_path,
			air_date = EXCLUDED.air_date,
			updated_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		season.ShowID, season.TMDBID, season.Name, season.Overview,
		season.SeasonNumber, season.EpisodeCount, season.PosterPath, season.AirDate).Scan(&id)
	if err != nil {
		return 0, errs.Persistence(op, err)
	}
	return id, nil
}

// UpsertEpisodes writes a season's episode list in one transaction and
// creates NOT_WATCHED status rows for the given profiles, so a partially
// written list can never be observed. Returns how many episodes were new.
func (s *Store) UpsertEpisodes(ctx context.Context, seasonID, showID int, episodes []models.Episode, profileIDs []int) (int, error) {
	op := "store: upsert episodes"
	var created int
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		for _, e := range episodes {
			var existing int
			err := tx.QueryRowContext(ctx, `SELECT id FROM episodes WHERE tmdb_id = $1`, e.TMDBID).Scan(&existing)
			switch {
			case err == sql.ErrNoRows:
				created++
			case err != nil:
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO episodes (tmdb_id, season_id, show_id, episode_number, episode_type,
					season_number, title, overview, air_date, runtime, still_path)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				 ON CONFLICT (tmdb_id) DO UPDATE SET
					episode_number = EXCLUDED.episode_number,
					episode_type = EXCLUDED.episode_type,
					title = EXCLUDED.title,
					overview = EXCLUDED.overview,
					air_date = EXCLUDED.air_date,
					runtime = EXCLUDED.runtime,
					still_path = EXCLUDED.still_path,
					updated_at = CURRENT_TIMESTAMP`,
				e.TMDBID, seasonID, showID, e.EpisodeNumber, e.EpisodeType,
				e.SeasonNumber, e.Title, e.Overview, e.AirDate, e.Runtime, e.StillPath)
			if err != nil {
				return err
			}
		}
		for _, pid := range profileIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO episode_watch_status (profile_id, episode_id, status)
				 SELECT $1, id, $2 FROM episodes WHERE season_id = $3
				 ON CONFLICT DO NOTHING`,
				pid, models.NotWatched, seasonID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// UpsertMovie writes the movie row plus its references in one transaction.
func (s *Store) UpsertMovie(ctx context.Context, movie *models.Movie, genres []models.Genre, services []models.StreamingService) (int, error) {
	op := "store: upsert movie"
	var id int
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		if err := upsertGenresTx(ctx, tx, genres); err != nil {
			return err
		}
		if err := upsertServicesTx(ctx, tx, services); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO movies (tmdb_id, title, overview, release_date, poster_path, backdrop_path,
				user_rating, content_rating, runtime, raw_metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (tmdb_id) DO UPDATE SET
				title = EXCLUDED.title,
				overview = EXCLUDED.overview,
				release_date = EXCLUDED.release_date,
				poster_path = EXCLUDED.poster_path,
				backdrop_path = EXCLUDED.backdrop_path,
				user_rating = EXCLUDED.user_rating,
				content_rating = EXCLUDED.content_rating,
				runtime = EXCLUDED.runtime,
				raw_metadata = EXCLUDED.raw_metadata,
				updated_at = CURRENT_TIMESTAMP
			 RETURNING id`,
			movie.TMDBID, movie.Title, movie.Overview, movie.ReleaseDate, movie.PosterPath,
			movie.BackdropPath, movie.UserRating, movie.ContentRating, movie.Runtime,
			movie.RawMetadata).Scan(&id)
		if err != nil {
			return err
		}
		if err := rebuildJoinTx(ctx, tx, "movie_genres", "movie_id", "genre_id", id, movie.GenreIDs); err != nil {
			return err
		}
		return rebuildJoinTx(ctx, tx, "movie_services", "movie_id", "service_id", id, movie.ServiceIDs)
	})
	return id, err
}

// InProductionShows returns the batch working set for the show sync pass.
func (s *Store) InProductionShows(ctx context.Context) ([]models.Show, error) {
	op := "store: in-production shows"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tmdb_id, title FROM shows WHERE in_production = TRUE ORDER BY id`)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	defer rows.Close()
	var shows []models.Show
	for rows.Next() {
		var sh models.Show
		if err := rows.Scan(&sh.ID, &sh.TMDBID, &sh.Title); err != nil {
			return nil, errs.Persistence(op, err)
		}
		shows = append(shows, sh)
	}
	return shows, errs.Persistence(op, rows.Err())
}

// FavoritedMovies returns every movie at least one profile favorited.
func (s *Store) FavoritedMovies(ctx context.Context) ([]models.Movie, error) {
	op := "store: favorited movies"
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT m.id, m.tmdb_id, m.title
		 FROM movies m
		 JOIN movie_watch_status mws ON mws.movie_id = m.id
		 ORDER BY m.id`)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	defer rows.Close()
	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.TMDBID, &m.Title); err != nil {
			return nil, errs.Persistence(op, err)
		}
		movies = append(movies, m)
	}
	return movies, errs.Persistence(op, rows.Err())
}

// ProfilesFavoritingShow returns the profile ids holding a status row for
// the show, i.e. the profiles the cascade must extend to new content.
func (s *Store) ProfilesFavoritingShow(ctx context.Context, showID int) ([]int, error) {
	op := "store: profiles favoriting show"
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_id FROM show_watch_status WHERE show_id = $1 ORDER BY profile_id`, showID)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Persistence(op, err)
		}
		ids = append(ids, id)
	}
	return ids, errs.Persistence(op, rows.Err())
}

// FavoriteSeasonForProfiles creates NOT_WATCHED season rows for each profile.
// Existing rows keep their status.
func (s *Store) FavoriteSeasonForProfiles(ctx context.Context, seasonID int, profileIDs []int) error {
	op := "store: favorite season for profiles"
	for _, pid := range profileIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO season_watch_status (profile_id, season_id, status)
			 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			pid, seasonID, models.NotWatched)
		if err != nil {
			return errs.Persistence(op, err)
		}
	}
	return nil
}

// FavoriteShowRow creates the root NOT_WATCHED row marking the show as
// favorited by the profile.
func (s *Store) FavoriteShowRow(ctx context.Context, profileID, showID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO show_watch_status (profile_id, show_id, status)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		profileID, showID, models.NotWatched)
	return errs.Persistence("store: favorite show", err)
}

// UnfavoriteShow removes the profile's status rows for the show and its whole
// hierarchy in one transaction. Reports errs.ErrNotFavorited when there was
// no root row.
func (s *Store) UnfavoriteShow(ctx context.Context, profileID, showID int) error {
	op := "store: unfavorite show"
	return s.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM show_watch_status WHERE profile_id = $1 AND show_id = $2`,
			profileID, showID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errs.ErrNotFavorited
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM season_watch_status sws
			 USING seasons s
			 WHERE sws.season_id = s.id AND s.show_id = $1 AND sws.profile_id = $2`,
			showID, profileID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM episode_watch_status ews
			 USING episodes e
			 WHERE ews.episode_id = e.id AND e.show_id = $1 AND ews.profile_id = $2`,
			showID, profileID)
		return err
	})
}

// FavoriteMovieRow creates the NOT_WATCHED row marking the movie as favorited.
func (s *Store) FavoriteMovieRow(ctx context.Context, profileID, movieID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO movie_watch_status (profile_id, movie_id, status)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		profileID, movieID, models.NotWatched)
	return errs.Persistence("store: favorite movie", err)
}

// UnfavoriteMovie removes the profile's status row for the movie.
func (s *Store) UnfavoriteMovie(ctx context.Context, profileID, movieID int) error {
	op := "store: unfavorite movie"
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM movie_watch_status WHERE profile_id = $1 AND movie_id = $2`,
		profileID, movieID)
	if err != nil {
		return errs.Persistence(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFavorited
	}
	return nil
}

// AccountIDForProfile resolves the owning account, used to address
// completion notifications.
func (s *Store) AccountIDForProfile(ctx context.Context, profileID int) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id FROM profiles WHERE id = $1`, profileID).Scan(&id)
	if err != nil {
		return 0, errs.Persistence("store: account for profile", err)
	}
	return id, nil
}
